package application

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SystemSender signs notifications created without an active session.
const SystemSender = "Hệ thống"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Alert titles raised for locally created and remotely received notifications.
const (
	AlertTitleUrgent = "THÔNG BÁO KHẨN"
	AlertTitleUpdate = "CẬP NHẬT LỊCH"
	AlertTitleRemote = "THÔNG BÁO GX MỚI"
)

// StoreOptions wires the collaborators of a Store. Nil collaborators are replaced with
// no-op implementations.
type StoreOptions struct {
	Cache          CacheStore
	Sink           RemoteSink
	Alerter        Alerter
	Detector       NotificationDetector
	RootEmail      string
	HeaderDefaults HeaderDefaults
	IDGenerator    func() string
	Now            func() time.Time
	Logger         *slog.Logger
}

// Store is the authoritative in-memory board state. Every mutator replaces the
// affected collection, mirrors it to the cache and pushes it to the remote sink.
type Store struct {
	mu sync.Mutex

	cache          CacheStore
	sink           RemoteSink
	alerts         Alerter
	detector       NotificationDetector
	rootEmail      string
	headerDefaults HeaderDefaults
	idGenerator    func() string
	now            func() time.Time
	logger         *slog.Logger

	schedule      []ClassSession
	header        HeaderConfig
	permissions   []PermissionRecord
	notifications []AppNotification
	ratings       []Rating
	registry      []User
	currentUser   *User
	loading       bool
	adminView     bool
	lastSyncAt    time.Time
	lastSyncFrom  SyncSource
}

// NewStore constructs an empty store in the loading state.
func NewStore(opts StoreOptions) *Store {
	if opts.Cache == nil {
		opts.Cache = noopCache{}
	}
	if opts.Sink == nil {
		opts.Sink = noopSink{}
	}
	if opts.Alerter == nil {
		opts.Alerter = noopAlerter{}
	}
	if opts.Detector == nil {
		opts.Detector = NewNotificationDetector(DetectorCursor)
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = func() string { return "" }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HeaderDefaults == (HeaderDefaults{}) {
		opts.HeaderDefaults = StandardHeaderDefaults()
	}

	return &Store{
		cache:          opts.Cache,
		sink:           opts.Sink,
		alerts:         opts.Alerter,
		detector:       opts.Detector,
		rootEmail:      NormalizeEmail(opts.RootEmail),
		headerDefaults: opts.HeaderDefaults,
		idGenerator:    opts.IDGenerator,
		now:            opts.Now,
		logger:         defaultLogger(opts.Logger),
		header:         opts.HeaderDefaults.Header(opts.Now()),
		loading:        true,
	}
}

// RootEmail returns the normalized root identity.
func (s *Store) RootEmail() string {
	return s.rootEmail
}

// RestoreSession loads the persisted session, if any, and re-derives its role.
func (s *Store) RestoreSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user User
	if !s.loadLocked(ctx, CacheKeyCurrentUser, &user) || user.Email == "" {
		return
	}
	s.currentUser = &user
	s.recomputeRoleLocked(ctx)
}

// Snapshot returns a detached copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Schedule:      cloneSchedule(s.schedule),
		Header:        s.header,
		Permissions:   clonePermissions(s.permissions),
		Notifications: cloneNotifications(s.notifications),
		Ratings:       cloneRatings(s.ratings),
		Registry:      cloneUsers(s.registry),
		Loading:       s.loading,
		AdminViewOpen: s.adminView,
		LastSyncAt:    s.lastSyncAt,
		LastSyncFrom:  s.lastSyncFrom,
	}
	if s.currentUser != nil {
		user := *s.currentUser
		snap.CurrentUser = &user
	}
	return snap
}

// SetSchedule replaces the class schedule.
func (s *Store) SetSchedule(ctx context.Context, schedule []ClassSession) {
	next := cloneSchedule(schedule)
	_, _ = s.modifySchedule(ctx, func([]ClassSession) ([]ClassSession, error) {
		return next, nil
	})
}

// modifySchedule applies fn to a copy of the schedule under the container lock and
// stores its result. The schedule is left untouched when fn fails.
func (s *Store) modifySchedule(ctx context.Context, fn func([]ClassSession) ([]ClassSession, error)) ([]ClassSession, error) {
	s.mu.Lock()
	next, err := fn(cloneSchedule(s.schedule))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.schedule = next
	s.saveLocked(ctx, CacheKeySchedule, next)
	s.mu.Unlock()

	s.sink.Push(ctx, ActionUpdateSchedule, cloneSchedule(next))
	return cloneSchedule(next), nil
}

// SetHeaderConfig replaces the header document wholesale.
func (s *Store) SetHeaderConfig(ctx context.Context, header HeaderConfig) {
	s.mu.Lock()
	s.header = header
	s.saveLocked(ctx, CacheKeyHeader, header)
	s.mu.Unlock()

	s.sink.Push(ctx, ActionUpdateHeader, header)
}

// SetPermissions replaces the permission collection and re-derives the session role.
func (s *Store) SetPermissions(ctx context.Context, permissions []PermissionRecord) {
	next := clonePermissions(permissions)
	_, _ = s.modifyPermissions(ctx, func([]PermissionRecord) ([]PermissionRecord, error) {
		return next, nil
	})
}

// modifyPermissions applies fn to a copy of the permission collection under the
// container lock, stores its result and re-derives the session role.
func (s *Store) modifyPermissions(ctx context.Context, fn func([]PermissionRecord) ([]PermissionRecord, error)) ([]PermissionRecord, error) {
	s.mu.Lock()
	next, err := fn(clonePermissions(s.permissions))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.permissions = next
	s.saveLocked(ctx, CacheKeyPermissions, next)
	s.recomputeRoleLocked(ctx)
	s.mu.Unlock()

	s.sink.Push(ctx, ActionUpdatePermissions, clonePermissions(next))
	return clonePermissions(next), nil
}

// AddNotification stamps and prepends a broadcast notification, then raises a local
// alert for it.
func (s *Store) AddNotification(ctx context.Context, message string, kind NotificationType) AppNotification {
	if kind != NotificationAlert {
		kind = NotificationInfo
	}

	s.mu.Lock()
	sender := SystemSender
	if s.currentUser != nil && s.currentUser.Name != "" {
		sender = s.currentUser.Name
	}
	notification := AppNotification{
		ID:        s.idGenerator(),
		Message:   message,
		Timestamp: s.now().UTC().Format(timestampLayout),
		Type:      kind,
		Sender:    sender,
	}
	next := make([]AppNotification, 0, len(s.notifications)+1)
	next = append(next, notification)
	next = append(next, s.notifications...)
	s.notifications = next
	s.detector.Seen(notification)
	s.saveLocked(ctx, CacheKeyNotifications, next)
	s.mu.Unlock()

	s.sink.Push(ctx, ActionAddNotification, notification)

	title := AlertTitleUpdate
	if kind == NotificationAlert {
		title = AlertTitleUrgent
	}
	s.alerts.Notify(ctx, title, message)
	return notification
}

// AddRating prepends a rating. The referenced class is not required to exist.
func (s *Store) AddRating(ctx context.Context, rating Rating) {
	s.mu.Lock()
	next := make([]Rating, 0, len(s.ratings)+1)
	next = append(next, rating)
	next = append(next, s.ratings...)
	s.ratings = next
	s.saveLocked(ctx, CacheKeyRatings, next)
	s.mu.Unlock()

	s.sink.Push(ctx, ActionAddRating, rating)
}

// SetUserRegistry replaces the registry of everyone who has ever logged in.
func (s *Store) SetUserRegistry(ctx context.Context, users []User) {
	next := cloneUsers(users)

	s.mu.Lock()
	s.registry = next
	s.saveLocked(ctx, CacheKeyRegistry, next)
	s.mu.Unlock()
}

// SetCurrentUser replaces the session user and re-derives its role. A nil user clears
// the session.
func (s *Store) SetCurrentUser(ctx context.Context, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.clearSessionLocked(ctx)
		return
	}
	next := *user
	next.Email = NormalizeEmail(next.Email)
	s.currentUser = &next
	s.saveLocked(ctx, CacheKeyCurrentUser, next)
	s.recomputeRoleLocked(ctx)
}

// Login starts a session for an externally asserted identity. First-time emails are
// appended to the registry and announced to the remote endpoint.
func (s *Store) Login(ctx context.Context, assertion Assertion) (User, error) {
	email := NormalizeEmail(assertion.Email)
	if email == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required")
		return User{}, vErr
	}

	s.mu.Lock()
	user := User{
		ID:     UserID(email),
		Name:   assertion.Name,
		Email:  email,
		Role:   Resolve(email, s.permissions, s.rootEmail),
		Avatar: assertion.Photo,
	}
	s.currentUser = &user
	s.saveLocked(ctx, CacheKeyCurrentUser, user)
	if !user.Role.Elevated() {
		s.adminView = false
	}

	registered := false
	for _, existing := range s.registry {
		if NormalizeEmail(existing.Email) == email {
			registered = true
			break
		}
	}
	if !registered {
		next := make([]User, 0, len(s.registry)+1)
		next = append(next, s.registry...)
		next = append(next, user)
		s.registry = next
		s.saveLocked(ctx, CacheKeyRegistry, next)
	}
	s.mu.Unlock()

	serviceLogger(ctx, s.logger, "Store", "Login", "email", email, "role", user.Role).InfoContext(ctx, "session started", "first_login", !registered)
	if !registered {
		s.sink.Push(ctx, ActionLoginUser, user)
	}
	return user, nil
}

// Logout clears the session and closes elevated views. The registry is kept.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSessionLocked(ctx)
}

// OpenAdminView opens the elevated editing view for MANAGER and ADMIN sessions.
func (s *Store) OpenAdminView() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil || !s.currentUser.Role.Elevated() {
		return ErrUnauthorized
	}
	s.adminView = true
	return nil
}

// CloseAdminView closes the elevated editing view.
func (s *Store) CloseAdminView() {
	s.mu.Lock()
	s.adminView = false
	s.mu.Unlock()
}

// Principal returns the acting identity of the current session.
func (s *Store) Principal() Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return Principal{Role: RoleUser}
	}
	return Principal{Email: s.currentUser.Email, Name: s.currentUser.Name, Role: s.currentUser.Role, LoggedIn: true}
}

// UserID derives the stable user identifier from a lower-cased email.
func UserID(email string) string {
	return base64.StdEncoding.EncodeToString([]byte(NormalizeEmail(email)))
}

func (s *Store) clearSessionLocked(ctx context.Context) {
	s.currentUser = nil
	s.adminView = false
	if err := s.cache.Remove(ctx, CacheKeyCurrentUser); err != nil {
		serviceLogger(ctx, s.logger, "Store", "Logout").WarnContext(ctx, "failed to remove cached session", "error", err)
	}
}

// recomputeRoleLocked re-derives the session role after the permission collection or
// the session email changed.
func (s *Store) recomputeRoleLocked(ctx context.Context) {
	if s.currentUser == nil {
		return
	}
	role := Resolve(s.currentUser.Email, s.permissions, s.rootEmail)
	if role == s.currentUser.Role {
		return
	}

	updated := *s.currentUser
	previous := updated.Role
	updated.Role = role
	s.currentUser = &updated
	s.saveLocked(ctx, CacheKeyCurrentUser, updated)
	if role == RoleUser {
		s.adminView = false
	}
	serviceLogger(ctx, s.logger, "Store", "RecomputeRole", "email", updated.Email).InfoContext(ctx, "session role changed", "from", previous, "to", role)
}

func (s *Store) saveLocked(ctx context.Context, key CacheKey, value any) {
	if err := s.cache.Save(ctx, key, value); err != nil {
		serviceLogger(ctx, s.logger, "Store", "Mirror", "key", string(key)).WarnContext(ctx, "failed to mirror collection to cache", "error", err)
	}
}

func (s *Store) loadLocked(ctx context.Context, key CacheKey, dst any) bool {
	ok, err := s.cache.Load(ctx, key, dst)
	if err != nil {
		serviceLogger(ctx, s.logger, "Store", "LoadCache", "key", string(key)).WarnContext(ctx, "failed to read cached collection", "error", err)
		return false
	}
	return ok
}

func (s *Store) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf("Store{classes=%d permissions=%d notifications=%d ratings=%d users=%d}",
		len(snap.Schedule), len(snap.Permissions), len(snap.Notifications), len(snap.Ratings), len(snap.Registry))
}

func cloneSchedule(in []ClassSession) []ClassSession {
	if in == nil {
		return nil
	}
	out := make([]ClassSession, len(in))
	copy(out, in)
	return out
}

func cloneNotifications(in []AppNotification) []AppNotification {
	if in == nil {
		return nil
	}
	out := make([]AppNotification, len(in))
	copy(out, in)
	return out
}

func cloneRatings(in []Rating) []Rating {
	if in == nil {
		return nil
	}
	out := make([]Rating, len(in))
	copy(out, in)
	return out
}

func cloneUsers(in []User) []User {
	if in == nil {
		return nil
	}
	out := make([]User, len(in))
	copy(out, in)
	return out
}
