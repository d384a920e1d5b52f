package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-schedule-board/internal/application"
	"github.com/example/club-schedule-board/internal/identity"
)

type sessionService interface {
	Login(ctx context.Context, assertion application.Assertion) (application.User, error)
	Logout(ctx context.Context)
	OpenAdminView() error
	CloseAdminView()
}

// SessionHandler starts and ends the board session and toggles the editing view.
type SessionHandler struct {
	sessions  sessionService
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(sessions sessionService, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{sessions: sessions, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assertion := application.Assertion{Email: req.Email, Name: strings.TrimSpace(req.Name), Photo: strings.TrimSpace(req.Photo)}
	if credential := strings.TrimSpace(req.Credential); credential != "" {
		decoded, err := identity.ParseCredential(credential)
		if err != nil {
			h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "rejected identity credential", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCredential)
			return
		}
		assertion = decoded.Assertion()
	}

	logger := h.log(r.Context(), "Login", "email", application.NormalizeEmail(assertion.Email))
	user, err := h.sessions.Login(r.Context(), assertion)
	if err != nil {
		logger.WarnContext(r.Context(), "login failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user logged in", "role", user.Role)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{User: user})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.sessions.Logout(r.Context())
	h.log(r.Context(), "Logout").InfoContext(r.Context(), "user logged out")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) OpenAdminView(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := h.sessions.OpenAdminView(); err != nil {
		h.log(r.Context(), "OpenAdminView").WarnContext(r.Context(), "admin view refused", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) CloseAdminView(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.sessions.CloseAdminView()
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// loginRequest carries either a provider credential or an explicit identity. The
// credential wins when both are present.
type loginRequest struct {
	Credential string `json:"credential"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Photo      string `json:"photo"`
}

type sessionResponse struct {
	User application.User `json:"user"`
}
