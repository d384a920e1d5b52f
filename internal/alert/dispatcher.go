// Package alert raises board notifications on a channel outside the board itself,
// subject to a one-time permission prompt.
package alert

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/club-schedule-board/internal/application"
)

// Permission is the user's answer to the alert permission prompt.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission accepts the three permission states case-insensitively.
func ParsePermission(value string) (Permission, bool) {
	switch Permission(strings.ToLower(strings.TrimSpace(value))) {
	case PermissionDefault:
		return PermissionDefault, true
	case PermissionGranted:
		return PermissionGranted, true
	case PermissionDenied:
		return PermissionDenied, true
	}
	return "", false
}

// Prompter asks the user whether alerts may be shown.
type Prompter interface {
	RequestPermission(ctx context.Context) Permission
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context) Permission

// RequestPermission calls f.
func (f PrompterFunc) RequestPermission(ctx context.Context) Permission {
	return f(ctx)
}

// Sink delivers an alert.
type Sink interface {
	Deliver(ctx context.Context, title, body string)
}

// LogSink delivers alerts as structured log records.
type LogSink struct {
	Logger *slog.Logger
}

// Deliver logs the alert at info level.
func (s LogSink) Deliver(ctx context.Context, title, body string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "board alert", "title", title, "body", body)
}

// Dispatcher gates alert delivery on the permission state. A granted state delivers,
// a denied state drops every alert, and the default state prompts once and then
// follows the answer.
type Dispatcher struct {
	prompter Prompter
	sink     Sink
	logger   *slog.Logger

	mu       sync.Mutex
	state    Permission
	prompted bool
}

// NewDispatcher constructs a dispatcher. A nil sink logs alerts; a nil prompter
// answers every prompt with the default state, which drops the alert.
func NewDispatcher(initial Permission, prompter Prompter, sink Sink, logger *slog.Logger) *Dispatcher {
	if _, ok := ParsePermission(string(initial)); !ok {
		initial = PermissionDefault
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	if prompter == nil {
		prompter = PrompterFunc(func(context.Context) Permission { return PermissionDefault })
	}
	return &Dispatcher{
		prompter: prompter,
		sink:     sink,
		logger:   logger.With("component", "alert"),
		state:    initial,
	}
}

var _ application.Alerter = (*Dispatcher)(nil)

// Notify delivers the alert when permitted.
func (d *Dispatcher) Notify(ctx context.Context, title, body string) {
	if !d.permitted(ctx) {
		d.logger.DebugContext(ctx, "alert dropped", "title", title, "permission", string(d.State()))
		return
	}
	d.sink.Deliver(ctx, title, body)
}

// State returns the current permission state.
func (d *Dispatcher) State() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dispatcher) permitted(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case PermissionGranted:
		return true
	case PermissionDenied:
		return false
	}
	if d.prompted {
		return false
	}

	d.prompted = true
	answer, ok := ParsePermission(string(d.prompter.RequestPermission(ctx)))
	if !ok {
		answer = PermissionDefault
	}
	d.state = answer
	d.logger.InfoContext(ctx, "alert permission answered", "permission", string(answer))
	return answer == PermissionGranted
}
