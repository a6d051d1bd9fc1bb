package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/gorgio/shortlink-be/internal/api"
	"github.com/gorgio/shortlink-be/internal/auth"
	"github.com/gorgio/shortlink-be/internal/cache"
	"github.com/gorgio/shortlink-be/internal/config"
	"github.com/gorgio/shortlink-be/internal/database"
	"github.com/gorgio/shortlink-be/internal/logger"
	"github.com/gorgio/shortlink-be/internal/monitoring"
	"github.com/gorgio/shortlink-be/internal/services"
)

func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file loaded")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the optional Redis cache
	c, err := cache.New(context.Background(), cfg.RedisAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	defer c.Close()
	if c.Enabled() {
		log.Info().Str("addr", cfg.RedisAddr).Msg("Redis connected")
	}

	// Set up services
	tokens := auth.NewManager(cfg.JWTSecret)
	userService := services.NewUserService(db)
	linkService := services.NewLinkService(db, c)
	clickService := services.NewClickService(db, c, cfg.FingerprintSalt)

	// Set up and run the background stats warmer
	statUpdater := monitoring.NewStatUpdater(clickService, c)
	go statUpdater.Run()

	// Set up router
	router := api.NewRouter(cfg, db, c, tokens, userService, linkService, clickService)

	// Set up server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
