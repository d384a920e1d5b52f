package application

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSyncInterval is the period between two reconciliation ticks.
const DefaultSyncInterval = 60 * time.Second

// Reconciler periodically merges the remote document into a Store and falls back to
// the local cache when the remote endpoint is unconfigured or unreachable.
type Reconciler struct {
	store    *Store
	source   RemoteSource
	interval time.Duration
	logger   *slog.Logger

	// mu is read-held while a tick applies its result so Close waits for it.
	mu     sync.RWMutex
	active bool
	stop   chan struct{}
}

// NewReconciler constructs a reconciler. A nil source means no remote endpoint is
// configured and every tick reads the cache.
func NewReconciler(store *Store, source RemoteSource, interval time.Duration) *Reconciler {
	return NewReconcilerWithLogger(store, source, interval, nil)
}

// NewReconcilerWithLogger constructs a reconciler with a custom logger.
func NewReconcilerWithLogger(store *Store, source RemoteSource, interval time.Duration, logger *slog.Logger) *Reconciler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Reconciler{
		store:    store,
		source:   source,
		interval: interval,
		logger:   defaultLogger(logger),
		active:   true,
		stop:     make(chan struct{}),
	}
}

// Sync performs one reconciliation tick and reports where the data came from. Remote
// failures are logged and recovered from the cache; they are never returned. A tick
// that completes after Close is discarded and reports SyncSourceNone.
func (r *Reconciler) Sync(ctx context.Context) SyncSource {
	logger := serviceLogger(ctx, r.logger, "Reconciler", "Sync")

	if r.source == nil {
		if !r.applyIfActive(func() { r.store.applyCache(ctx) }) {
			return SyncSourceNone
		}
		logger.DebugContext(ctx, "remote endpoint not configured, loaded cache")
		return SyncSourceCache
	}

	payload, err := r.source.FetchAll(ctx)
	if err != nil {
		if !r.applyIfActive(func() { r.store.applyCache(ctx) }) {
			logger.DebugContext(ctx, "discarding tick completed after close")
			return SyncSourceNone
		}
		logger.WarnContext(ctx, "remote fetch failed, falling back to cache", "error", err, "error_kind", ErrorKind(err))
		return SyncSourceCache
	}

	if !r.applyIfActive(func() { r.store.applyRemote(ctx, payload) }) {
		logger.DebugContext(ctx, "discarding tick completed after close")
		return SyncSourceNone
	}
	logger.DebugContext(ctx, "applied remote document",
		"schedule_present", payload.Schedule != nil,
		"header_present", payload.Header != nil,
		"notifications_present", payload.Notifications != nil,
		"permissions_present", payload.Permissions != nil,
	)
	return SyncSourceRemote
}

// applyIfActive runs apply unless the reconciler has been closed. Close blocks until a
// running apply has finished.
func (r *Reconciler) applyIfActive(apply func()) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.active {
		return false
	}
	apply()
	return true
}

// Run syncs immediately and then on every interval until ctx is cancelled or Close is
// called. Ticks run on their own goroutines so a slow fetch does not delay the next
// one; results apply in completion order.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	tick := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Sync(ctx)
		}()
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Close stops the loop. In-flight fetches are left to finish and their results are
// discarded.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.active = false
	close(r.stop)
}

// applyRemote replaces every collection present in payload. The header falls back to
// the default when absent.
func (s *Store) applyRemote(ctx context.Context, payload RemotePayload) {
	s.mu.Lock()
	now := s.now()

	if payload.Schedule != nil {
		s.schedule = cloneSchedule(payload.Schedule)
		s.saveLocked(ctx, CacheKeySchedule, s.schedule)
	}

	header := s.headerDefaults.Header(now)
	if payload.Header != nil {
		header = NormalizeHeader(*payload.Header)
	}
	s.header = header
	s.saveLocked(ctx, CacheKeyHeader, header)

	if payload.Users != nil {
		s.registry = cloneUsers(payload.Users)
		s.saveLocked(ctx, CacheKeyRegistry, s.registry)
	}

	var fresh []AppNotification
	if payload.Notifications != nil {
		s.notifications = cloneNotifications(payload.Notifications)
		s.saveLocked(ctx, CacheKeyNotifications, s.notifications)
		fresh = s.detector.Observe(cloneNotifications(s.notifications))
	}

	if payload.Permissions != nil {
		s.permissions = clonePermissions(payload.Permissions)
		s.saveLocked(ctx, CacheKeyPermissions, s.permissions)
	}

	if payload.Ratings != nil {
		s.ratings = cloneRatings(payload.Ratings)
		s.saveLocked(ctx, CacheKeyRatings, s.ratings)
	}

	s.recomputeRoleLocked(ctx)
	s.loading = false
	s.lastSyncAt = now
	s.lastSyncFrom = SyncSourceRemote
	s.mu.Unlock()

	for _, n := range fresh {
		s.alerts.Notify(ctx, AlertTitleRemote, n.Message)
	}
}

// applyCache reloads every collection from the cache, leaving empty collections and
// the default header where nothing usable was cached.
func (s *Store) applyCache(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	var schedule []ClassSession
	if !s.loadLocked(ctx, CacheKeySchedule, &schedule) {
		schedule = nil
	}
	s.schedule = schedule

	header := s.headerDefaults.Header(now)
	var cached HeaderConfig
	if s.loadLocked(ctx, CacheKeyHeader, &cached) {
		header = NormalizeHeader(cached)
	}
	s.header = header

	var permissions []PermissionRecord
	if !s.loadLocked(ctx, CacheKeyPermissions, &permissions) {
		permissions = nil
	}
	s.permissions = permissions

	var ratings []Rating
	if !s.loadLocked(ctx, CacheKeyRatings, &ratings) {
		ratings = nil
	}
	s.ratings = ratings

	var notifications []AppNotification
	if !s.loadLocked(ctx, CacheKeyNotifications, &notifications) {
		notifications = nil
	}
	s.notifications = notifications

	var registry []User
	if !s.loadLocked(ctx, CacheKeyRegistry, &registry) {
		registry = nil
	}
	s.registry = registry

	s.recomputeRoleLocked(ctx)
	s.loading = false
	s.lastSyncAt = now
	s.lastSyncFrom = SyncSourceCache
}
