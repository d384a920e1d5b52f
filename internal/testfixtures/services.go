package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/example/club-schedule-board/internal/application"
)

// RootEmail is the root identity used by factory-built stores.
const RootEmail = "root@club.vn"

// BoardFactory assists tests with constructing the board core using deterministic
// identifiers and clocks.
type BoardFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// BoardFactoryOption configures a BoardFactory.
type BoardFactoryOption func(*BoardFactory)

// NewBoardFactory constructs a BoardFactory with a fixed reference clock and a
// discarding logger.
func NewBoardFactory(opts ...BoardFactoryOption) *BoardFactory {
	factory := &BoardFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the factory clock.
func WithClock(clock *Clock) BoardFactoryOption {
	return func(factory *BoardFactory) { factory.Clock = clock }
}

// WithIDGenerator overrides the factory identifier generator.
func WithIDGenerator(generator *IDGenerator) BoardFactoryOption {
	return func(factory *BoardFactory) { factory.IDGenerator = generator }
}

// WithLogger overrides the factory logger.
func WithLogger(logger *slog.Logger) BoardFactoryOption {
	return func(factory *BoardFactory) { factory.Logger = logger }
}

// StoreDeps captures the collaborators of a factory-built store. Nil fields fall back
// to the store defaults.
type StoreDeps struct {
	Cache     application.CacheStore
	Sink      application.RemoteSink
	Alerter   application.Alerter
	Detector  application.NotificationDetector
	RootEmail string
}

// NewStore builds a state container. An empty RootEmail becomes RootEmail.
func (f *BoardFactory) NewStore(deps StoreDeps) *application.Store {
	root := deps.RootEmail
	if root == "" {
		root = RootEmail
	}
	return application.NewStore(application.StoreOptions{
		Cache:       deps.Cache,
		Sink:        deps.Sink,
		Alerter:     deps.Alerter,
		Detector:    deps.Detector,
		RootEmail:   root,
		IDGenerator: f.IDGenerator.NextFunc(),
		Now:         f.Clock.NowFunc(),
		Logger:      f.Logger,
	})
}

// NewBoard builds the role-gated operations over store.
func (f *BoardFactory) NewBoard(store *application.Store) *application.Board {
	return application.NewBoardWithLogger(store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// NewReconciler builds a reconciler for store with the default interval.
func (f *BoardFactory) NewReconciler(store *application.Store, source application.RemoteSource) *application.Reconciler {
	return application.NewReconcilerWithLogger(store, source, application.DefaultSyncInterval, f.Logger)
}

// PushRecord is one write captured by a RecordingSink.
type PushRecord struct {
	Action application.Action
	Data   any
}

// RecordingSink captures remote writes in memory.
type RecordingSink struct {
	mu     sync.Mutex
	pushes []PushRecord
}

// Push records the write.
func (s *RecordingSink) Push(_ context.Context, action application.Action, data any) {
	s.mu.Lock()
	s.pushes = append(s.pushes, PushRecord{Action: action, Data: data})
	s.mu.Unlock()
}

// Actions returns the recorded action names in order.
func (s *RecordingSink) Actions() []application.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]application.Action, 0, len(s.pushes))
	for _, p := range s.pushes {
		actions = append(actions, p.Action)
	}
	return actions
}

// Alert is one alert captured by a RecordingAlerter.
type Alert struct {
	Title string
	Body  string
}

// RecordingAlerter captures raised alerts in memory.
type RecordingAlerter struct {
	mu     sync.Mutex
	alerts []Alert
}

// Notify records the alert.
func (a *RecordingAlerter) Notify(_ context.Context, title, body string) {
	a.mu.Lock()
	a.alerts = append(a.alerts, Alert{Title: title, Body: body})
	a.mu.Unlock()
}

// Alerts returns the recorded alerts in order.
func (a *RecordingAlerter) Alerts() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Alert(nil), a.alerts...)
}

// StaticSource serves a fixed payload or error.
type StaticSource struct {
	Payload application.RemotePayload
	Err     error
}

// FetchAll returns the configured payload or error.
func (s StaticSource) FetchAll(context.Context) (application.RemotePayload, error) {
	return s.Payload, s.Err
}
