package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gorgio/shortlink-be/internal/api/handlers"
	"github.com/gorgio/shortlink-be/internal/auth"
	"github.com/gorgio/shortlink-be/internal/cache"
	"github.com/gorgio/shortlink-be/internal/config"
	"github.com/gorgio/shortlink-be/internal/services"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter creates and configures a new Chi router.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	c *cache.Cache,
	tokens *auth.Manager,
	userService services.UserServiceProvider,
	linkService services.LinkServiceProvider,
	clickService services.ClickServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(requestSizeLimit(maxBodyBytes))
	r.Use(rateLimit(c, cfg.RateLimit))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	linkHandler := handlers.NewLinkHandler(linkService, clickService, cfg.BaseURL)
	statsHandler := handlers.NewStatsHandler(clickService, linkService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Public analytics: stats are readable by anyone holding a code.
		r.Get("/stats", statsHandler.Get)
		r.Get("/top", statsHandler.Top)

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Post("/shorten", linkHandler.Shorten)
			r.Get("/urls", linkHandler.List)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/{code}", linkHandler.Redirect)

	return r
}
