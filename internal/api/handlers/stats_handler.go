package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gorgio/shortlink-be/internal/services"
	"github.com/gorgio/shortlink-be/internal/validator"
)

// StatsHandler serves public click analytics.
type StatsHandler struct {
	clicks services.ClickServiceProvider
	links  services.LinkServiceProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(clicks services.ClickServiceProvider, links services.LinkServiceProvider) *StatsHandler {
	return &StatsHandler{clicks: clicks, links: links}
}

// Get returns the aggregates of one code. Intentionally unauthenticated:
// anyone holding a short link may inspect its counts.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Short code required", http.StatusBadRequest)
		return
	}
	if err := validator.ValidateShortCode(code); err != nil {
		http.Error(w, "Invalid short code", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	stats, err := h.clicks.StatsFor(ctx, code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// Top returns the most-clicked codes for a period (all, day, week, month).
func (h *StatsHandler) Top(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	top, err := h.links.Top(ctx, period, limit)
	if err != nil {
		log.Error().Err(err).Str("period", period).Msg("Failed to rank links")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"urls": top})
}
