package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/food-ordering/internal/config"
	"github.com/vasiliy-maslov/food-ordering/internal/db"
	appHttp "github.com/vasiliy-maslov/food-ordering/internal/handler/http"
	"github.com/vasiliy-maslov/food-ordering/internal/transport"
	"github.com/vasiliy-maslov/food-ordering/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "food-ordering").Logger()

	log.Info().Msg("Food ordering service starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	pg, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := pg.Migrate(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	sessions := appHttp.NewSessions(cfg.App.SessionKey)
	router, userSvc := transport.NewRouter(pg.Pool, sessions)

	// Bootstrap admin account, mirroring the seeded menu data.
	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	err = userSvc.EnsureAdmin(bootstrapCtx, user.RegisterInput{
		Username: "admin",
		Email:    "admin@restaurant.com",
		Password: getEnv("ADMIN_PASSWORD", "admin123"),
		Phone:    "1234567890",
		Address:  "123 Restaurant St",
	})
	cancelBootstrap()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure admin user")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
