package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/club-schedule-board/internal/application"
)

type ratingService interface {
	SubmitRating(ctx context.Context, classID string, stars int, comment string) (application.Rating, error)
	RatingFeed() []application.RatingEntry
}

// RatingHandler serves class feedback.
type RatingHandler struct {
	service   ratingService
	responder responder
	logger    *slog.Logger
}

func NewRatingHandler(service ratingService, logger *slog.Logger) *RatingHandler {
	base := defaultLogger(logger)
	return &RatingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RatingHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ratingFeedResponse{Ratings: nonNil(h.service.RatingFeed())})
}

func (h *RatingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "RatingHandler", "Submit")

	var req ratingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode rating", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	rating, err := h.service.SubmitRating(r.Context(), req.ClassID, req.Stars, req.Comment)
	if err != nil {
		logger.WarnContext(r.Context(), "rating rejected", "class_id", req.ClassID, "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, ratingResponse{Rating: rating})
}

type ratingRequest struct {
	ClassID string `json:"classId"`
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

type ratingResponse struct {
	Rating application.Rating `json:"rating"`
}

type ratingFeedResponse struct {
	Ratings []application.RatingEntry `json:"ratings"`
}
