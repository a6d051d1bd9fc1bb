package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gorgio/shortlink-be/internal/auth"
	"github.com/gorgio/shortlink-be/internal/models"
	"github.com/gorgio/shortlink-be/internal/services"
	"github.com/gorgio/shortlink-be/internal/validator"
)

// LinkHandler handles link creation, listing and redirects.
type LinkHandler struct {
	links   services.LinkServiceProvider
	clicks  services.ClickServiceProvider
	baseURL string
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(links services.LinkServiceProvider, clicks services.ClickServiceProvider, baseURL string) *LinkHandler {
	return &LinkHandler{links: links, clicks: clicks, baseURL: baseURL}
}

type shortenPayload struct {
	URL         string `json:"url"`
	CustomAlias string `json:"custom_alias,omitempty"`
}

type linkResponse struct {
	ShortURL    string `json:"short_url"`
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	CreatedAt   int64  `json:"created_at"`
	Clicks      int64  `json:"clicks"`
}

func (h *LinkHandler) toResponse(link models.Link) linkResponse {
	return linkResponse{
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, link.Code),
		ShortCode:   link.Code,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt.Unix(),
		Clicks:      link.Clicks,
	}
}

// Shorten creates a short link for the authenticated user.
func (h *LinkHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	var payload shortenPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	link, err := h.links.Shorten(ctx, claims.UserID, payload.URL, payload.CustomAlias)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to shorten URL")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(link))
}

// List returns the authenticated user's links, most recent first.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	links, err := h.links.ListByOwner(ctx, claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list links")
		writeError(w, err)
		return
	}

	urls := make([]linkResponse, 0, len(links))
	for _, link := range links {
		urls = append(urls, h.toResponse(link))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"urls": urls})
}

// Redirect resolves a code and sends the visitor to the destination. The
// click is recorded in the background so the redirect never waits on the
// click log.
func (h *LinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := validator.ValidateShortCode(code); err != nil {
		http.Error(w, "Invalid short code", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	destination, err := h.links.Resolve(ctx, code)
	if err != nil {
		writeError(w, err)
		return
	}

	fingerprint := h.clicks.Fingerprint(clientIP(r), r.UserAgent())
	referer := r.Referer()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := h.clicks.Record(ctx, code, fingerprint, referer); err != nil {
			log.Error().Err(err).Str("code", code).Msg("Failed to record click")
		}
	}()

	http.Redirect(w, r, destination, http.StatusMovedPermanently)
}
