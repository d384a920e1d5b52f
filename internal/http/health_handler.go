package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/club-schedule-board/internal/persistence"
)

type cacheInspector interface {
	Ping(ctx context.Context) error
	ListEntries(ctx context.Context) ([]persistence.Entry, error)
}

// HealthHandler reports whether the cache database answers and when each cached
// collection was last written.
type HealthHandler struct {
	cache     cacheInspector
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(cache cacheInspector, logger *slog.Logger) *HealthHandler {
	base := defaultLogger(logger)
	return &HealthHandler{cache: cache, responder: newResponder(base), logger: base}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.cache == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "HealthHandler", "Check")
	if err := h.cache.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "cache database unreachable", "error", err)
		h.responder.writeJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: healthUnavailable})
		return
	}

	entries, err := h.cache.ListEntries(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to list cache entries", "error", err)
		h.responder.writeJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: healthUnavailable})
		return
	}

	out := make([]cacheEntryStatus, 0, len(entries))
	for _, entry := range entries {
		out = append(out, cacheEntryStatus{Key: entry.Key, Bytes: len(entry.Value), UpdatedAt: entry.UpdatedAt})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, healthResponse{Status: healthOK, Cache: out})
}

const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
)

type healthResponse struct {
	Status string             `json:"status"`
	Cache  []cacheEntryStatus `json:"cache,omitempty"`
}

type cacheEntryStatus struct {
	Key       string    `json:"key"`
	Bytes     int       `json:"bytes"`
	UpdatedAt time.Time `json:"updatedAt"`
}
