package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/store"
)

type StatsHandler struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewStatsHandler(s *store.Store, log *zap.Logger) *StatsHandler {
	return &StatsHandler{Store: s, Log: log}
}

// PublicRoutes serves the landing-page counters.
func (h *StatsHandler) PublicRoutes(r chi.Router) {
	r.Get("/", h.get)
}

// Routes holds the authenticated repair tool.
func (h *StatsHandler) Routes(r chi.Router) {
	r.Post("/recompute", h.recompute)
}

func (h *StatsHandler) get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetStatistics(r.Context())
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	out := make(map[string]int64, len(stats))
	for _, s := range stats {
		out[s.Name] = s.Value
	}
	writeJSON(w, http.StatusOK, out)
}

// recompute rebuilds every counter from the source tables. Repair tool, not a
// hot path.
func (h *StatsHandler) recompute(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Store.RecomputeStatistics(r.Context())
	if err != nil {
		writeStoreError(h.Log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
