package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-schedule-board/internal/application"
)

type notificationService interface {
	Broadcast(ctx context.Context, message string, kind application.NotificationType) (application.AppNotification, error)
	Notifications() []application.AppNotification
}

// NotificationHandler serves the broadcast history and publishes new broadcasts.
type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationsResponse{Notifications: nonNil(h.service.Notifications())})
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req notificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Broadcast", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode notification", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	kind := application.NotificationType(strings.ToUpper(strings.TrimSpace(req.Type)))
	notification, err := h.service.Broadcast(r.Context(), req.Message, kind)
	if err != nil {
		h.log(r.Context(), "Broadcast").WarnContext(r.Context(), "broadcast failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, notificationResponse{Notification: notification})
}

type notificationRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type notificationResponse struct {
	Notification application.AppNotification `json:"notification"`
}

type notificationsResponse struct {
	Notifications []application.AppNotification `json:"notifications"`
}
