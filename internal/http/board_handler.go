package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/club-schedule-board/internal/application"
)

type boardState interface {
	Snapshot() application.Snapshot
}

type syncer interface {
	Sync(ctx context.Context) application.SyncSource
}

// BoardHandler serves the whole board document and manual synchronization.
type BoardHandler struct {
	state     boardState
	syncer    syncer
	responder responder
	logger    *slog.Logger
}

func NewBoardHandler(state boardState, syncer syncer, logger *slog.Logger) *BoardHandler {
	base := defaultLogger(logger)
	return &BoardHandler{state: state, syncer: syncer, responder: newResponder(base), logger: base}
}

func (h *BoardHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BoardHandler", operation, attrs...)
}

func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.state == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBoardResponse(h.state.Snapshot()))
}

func (h *BoardHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.state == nil || h.syncer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	source := h.syncer.Sync(r.Context())
	h.log(r.Context(), "Sync").InfoContext(r.Context(), "manual sync finished", "source", string(source))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, syncResponse{
		Source: string(source),
		Board:  toBoardResponse(h.state.Snapshot()),
	})
}

type boardResponse struct {
	Schedule      []application.ClassSession     `json:"schedule"`
	Header        application.HeaderConfig       `json:"header"`
	Permissions   []application.PermissionRecord `json:"permissions"`
	Notifications []application.AppNotification  `json:"notifications"`
	Ratings       []application.Rating           `json:"ratings"`
	Users         []application.User             `json:"users,omitempty"`
	CurrentUser   *application.User              `json:"currentUser"`
	Loading       bool                           `json:"loading"`
	AdminViewOpen bool                           `json:"adminViewOpen"`
	LastSyncAt    *time.Time                     `json:"lastSyncAt,omitempty"`
	LastSyncFrom  string                         `json:"lastSyncFrom,omitempty"`
}

type syncResponse struct {
	Source string        `json:"source"`
	Board  boardResponse `json:"board"`
}

// toBoardResponse renders a snapshot. The user registry is only shown to
// administrators.
func toBoardResponse(snap application.Snapshot) boardResponse {
	resp := boardResponse{
		Schedule:      nonNil(snap.Schedule),
		Header:        snap.Header,
		Permissions:   nonNil(snap.Permissions),
		Notifications: nonNil(snap.Notifications),
		Ratings:       nonNil(snap.Ratings),
		CurrentUser:   snap.CurrentUser,
		Loading:       snap.Loading,
		AdminViewOpen: snap.AdminViewOpen,
		LastSyncFrom:  string(snap.LastSyncFrom),
	}
	if !snap.LastSyncAt.IsZero() {
		at := snap.LastSyncAt.UTC()
		resp.LastSyncAt = &at
	}
	if snap.Principal().Role == application.RoleAdmin {
		resp.Users = nonNil(snap.Registry)
	}
	return resp
}
