package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/club-schedule-board/internal/application"
)

type scheduleService interface {
	SaveClass(ctx context.Context, input application.ClassSession, notify bool) (application.ClassSession, error)
	UpdateClass(ctx context.Context, input application.ClassSession, notify bool) (application.ClassSession, error)
	DeleteClass(ctx context.Context, id string) error
	DaySchedule(day int) ([]application.ClassView, error)
}

// ScheduleHandler serves the weekly class schedule.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

// List returns one day when the day query parameter is set and the whole week
// otherwise.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("day")); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDay)
			return
		}
		classes, err := h.service.DaySchedule(day)
		if err != nil {
			h.log(r.Context(), "List", "day", raw).WarnContext(r.Context(), "day view rejected", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, toDayDTO(day, classes))
		return
	}

	week := weekResponse{Days: make([]dayDTO, 0, len(application.DayNames))}
	for day := range application.DayNames {
		classes, err := h.service.DaySchedule(day)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		week.Days = append(week.Days, toDayDTO(day, classes))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, week)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req classRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode class request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	req.ID = ""
	h.save(w, r, "Create", h.service.SaveClass, req, http.StatusCreated)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	var req classRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "class_id", classID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode class update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	req.ID = classID
	h.save(w, r, "Update", h.service.UpdateClass, req, http.StatusOK)
}

type saveFunc func(ctx context.Context, input application.ClassSession, notify bool) (application.ClassSession, error)

func (h *ScheduleHandler) save(w http.ResponseWriter, r *http.Request, operation string, store saveFunc, req classRequest, status int) {
	logger := h.log(r.Context(), operation, "class_id", req.ID, "notify", req.Notify)

	class, err := store(r.Context(), req.ClassSession, req.Notify)
	if err != nil {
		logger.WarnContext(r.Context(), "class save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("class_id", class.ID).InfoContext(r.Context(), "class saved")
	h.responder.writeJSON(r.Context(), w, status, classResponse{Class: class})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classID, ok := ClassIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidClassID)
		return
	}

	logger := h.log(r.Context(), "Delete", "class_id", classID)
	if err := h.service.DeleteClass(r.Context(), classID); err != nil {
		logger.WarnContext(r.Context(), "class delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "class deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
