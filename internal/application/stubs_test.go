package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[CacheKey][]byte
	saveErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[CacheKey][]byte)}
}

func (c *memoryCache) Load(ctx context.Context, key CacheKey, dst any) (bool, error) {
	c.mu.Lock()
	raw, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *memoryCache) Save(ctx context.Context, key CacheKey, value any) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Remove(ctx context.Context, key CacheKey) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) put(key CacheKey, raw string) {
	c.mu.Lock()
	c.entries[key] = []byte(raw)
	c.mu.Unlock()
}

func (c *memoryCache) has(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type pushRecord struct {
	action Action
	data   any
}

type recordingSink struct {
	mu     sync.Mutex
	pushes []pushRecord
}

func (s *recordingSink) Push(ctx context.Context, action Action, data any) {
	s.mu.Lock()
	s.pushes = append(s.pushes, pushRecord{action: action, data: data})
	s.mu.Unlock()
}

func (s *recordingSink) actions() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Action, 0, len(s.pushes))
	for _, p := range s.pushes {
		out = append(out, p.action)
	}
	return out
}

type alertRecord struct {
	title string
	body  string
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []alertRecord
}

func (a *recordingAlerter) Notify(ctx context.Context, title, body string) {
	a.mu.Lock()
	a.alerts = append(a.alerts, alertRecord{title: title, body: body})
	a.mu.Unlock()
}

func (a *recordingAlerter) all() []alertRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]alertRecord, len(a.alerts))
	copy(out, a.alerts)
	return out
}

type sourceStub struct {
	mu       sync.Mutex
	payloads []RemotePayload
	err      error
	calls    int
	block    chan struct{}
}

func (s *sourceStub) FetchAll(ctx context.Context) (RemotePayload, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return RemotePayload{}, s.err
	}
	if len(s.payloads) == 0 {
		return RemotePayload{}, nil
	}
	payload := s.payloads[0]
	if len(s.payloads) > 1 {
		s.payloads = s.payloads[1:]
	}
	return payload, nil
}

func (s *sourceStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (s *sequence) id() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}

const testRoot = "root@club.vn"

var fixedNow = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)

type harness struct {
	store   *Store
	cache   *memoryCache
	sink    *recordingSink
	alerter *recordingAlerter
	ids     *sequence
}

func newHarness(mode DetectorMode) *harness {
	h := &harness{
		cache:   newMemoryCache(),
		sink:    &recordingSink{},
		alerter: &recordingAlerter{},
		ids:     &sequence{prefix: "id"},
	}
	h.store = NewStore(StoreOptions{
		Cache:       h.cache,
		Sink:        h.sink,
		Alerter:     h.alerter,
		Detector:    NewNotificationDetector(mode),
		RootEmail:   testRoot,
		IDGenerator: h.ids.id,
		Now:         func() time.Time { return fixedNow },
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}

func (h *harness) login(email string) {
	if _, err := h.store.Login(context.Background(), Assertion{Email: email, Name: "Tester"}); err != nil {
		panic(err)
	}
}
