package testfixtures

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/club-schedule-board/internal/application"
)

// PushedAction is one write received by a FakeRemote.
type PushedAction struct {
	Action      application.Action
	Data        json.RawMessage
	ContentType string
}

// FakeRemote serves the spreadsheet endpoint protocol from memory.
type FakeRemote struct {
	server *httptest.Server

	mu      sync.Mutex
	payload application.RemotePayload
	raw     []byte
	status  int
	fetches int
	pushes  []PushedAction
	pushed  chan struct{}
}

// NewFakeRemote starts a fake endpoint answering getData with payload. The server is
// closed when the test finishes.
func NewFakeRemote(tb testing.TB, payload application.RemotePayload) *FakeRemote {
	tb.Helper()
	fake := &FakeRemote{payload: payload, status: http.StatusOK, pushed: make(chan struct{}, 64)}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serve))
	tb.Cleanup(fake.server.Close)
	return fake
}

// URL returns the endpoint address.
func (f *FakeRemote) URL() string {
	return f.server.URL
}

// SetPayload replaces the document served to getData.
func (f *FakeRemote) SetPayload(payload application.RemotePayload) {
	f.mu.Lock()
	f.payload = payload
	f.raw = nil
	f.mu.Unlock()
}

// SetRawResponse serves body verbatim to getData.
func (f *FakeRemote) SetRawResponse(body string) {
	f.mu.Lock()
	f.raw = []byte(body)
	f.mu.Unlock()
}

// SetStatus makes every request answer with status.
func (f *FakeRemote) SetStatus(status int) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

// Fetches reports how many getData requests were served.
func (f *FakeRemote) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// Pushes returns the writes received so far.
func (f *FakeRemote) Pushes() []PushedAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PushedAction(nil), f.pushes...)
}

// WaitForPushes blocks until at least n writes arrived and returns them.
func (f *FakeRemote) WaitForPushes(tb testing.TB, n int, timeout time.Duration) []PushedAction {
	tb.Helper()
	deadline := time.After(timeout)
	for {
		if pushes := f.Pushes(); len(pushes) >= n {
			return pushes
		}
		select {
		case <-f.pushed:
		case <-deadline:
			tb.Fatalf("expected %d pushes within %v, got %d", n, timeout, len(f.Pushes()))
			return nil
		}
	}
}

func (f *FakeRemote) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := f.status
	f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("action") != "getData" {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.fetches++
		body := f.raw
		payload := f.payload
		f.mu.Unlock()

		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if body != nil {
			_, _ = w.Write(body)
			return
		}
		_ = json.NewEncoder(w).Encode(payload)

	case http.MethodPost:
		var envelope struct {
			Action application.Action `json:"action"`
			Data   json.RawMessage    `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.pushes = append(f.pushes, PushedAction{Action: envelope.Action, Data: envelope.Data, ContentType: r.Header.Get("Content-Type")})
		f.mu.Unlock()
		select {
		case f.pushed <- struct{}{}:
		default:
		}

		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
