package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-schedule-board/internal/application"
)

type adminService interface {
	UpdateHeader(ctx context.Context, input application.HeaderConfig) (application.HeaderConfig, error)
	GrantRole(ctx context.Context, email string, role application.Role) ([]application.PermissionRecord, error)
	RevokeRole(ctx context.Context, email string) ([]application.PermissionRecord, error)
}

// AdminHandler serves the administrator-only header and permission endpoints.
type AdminHandler struct {
	service   adminService
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(service adminService, logger *slog.Logger) *AdminHandler {
	base := defaultLogger(logger)
	return &AdminHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AdminHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AdminHandler", operation, attrs...)
}

func (h *AdminHandler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req application.HeaderConfig
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "UpdateHeader", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode header", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	header, err := h.service.UpdateHeader(r.Context(), req)
	if err != nil {
		h.log(r.Context(), "UpdateHeader").WarnContext(r.Context(), "header update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, headerResponse{Header: header})
}

func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	email, ok := TargetEmailFromContext(r.Context())
	if !ok || !strings.Contains(email, "@") {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmail)
		return
	}

	var req grantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Grant", "target_email", email, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode grant", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	role := application.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	records, err := h.service.GrantRole(r.Context(), email, role)
	if err != nil {
		h.log(r.Context(), "Grant", "target_email", email).WarnContext(r.Context(), "grant failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, permissionsResponse{Permissions: nonNil(records)})
}

func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	email, ok := TargetEmailFromContext(r.Context())
	if !ok || strings.TrimSpace(email) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmail)
		return
	}

	records, err := h.service.RevokeRole(r.Context(), email)
	if err != nil {
		h.log(r.Context(), "Revoke", "target_email", email).WarnContext(r.Context(), "revoke failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, permissionsResponse{Permissions: nonNil(records)})
}

type grantRequest struct {
	Role string `json:"role"`
}

type headerResponse struct {
	Header application.HeaderConfig `json:"header"`
}

type permissionsResponse struct {
	Permissions []application.PermissionRecord `json:"permissions"`
}
