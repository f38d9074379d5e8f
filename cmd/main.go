package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/troopvault/tv-backend/internal/config"
	"github.com/troopvault/tv-backend/internal/container"
	"github.com/troopvault/tv-backend/internal/logging"
	"github.com/troopvault/tv-backend/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	c, err := container.New(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	if err := c.Database.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	r := chi.NewMux()
	r.Use(middleware.NewCORSHandler(&cfg.CORS))
	r.Use(c.Authenticator.Middleware)
	r.Use(middleware.RequestContext)
	r.Use(middleware.LoggingMiddleware)
	r.Mount("/", c.Server.Routes())

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port)
	s := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logging.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server shutdown failed", "error", err)
		}
		c.Cleanup()
		os.Exit(0)
	}()

	logging.Info("Server starting", "addr", addr)
	log.Fatal(s.ListenAndServe())
}
