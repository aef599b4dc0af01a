package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/config"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/gateway"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/handlers"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/logger"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/mailer"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/middleware"
	"github.com/MiloZah/Resume-Portfolio-Starter-pack/internal/ratelimit"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewProductionLogger(cfg.ServerDebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors on stderr
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.String("server_port", cfg.ServerPort),
		zap.Bool("debug_mode", cfg.ServerDebugMode),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
	)
	if missing := cfg.MissingMailKeys(); len(missing) > 0 {
		// The gateway answers 500 per request until these are set; warn once
		// at startup so the operator sees it immediately.
		zapLogger.Warn("smtp_config_incomplete", zap.Strings("missing_keys", missing))
	}

	limiter := ratelimit.New(ratelimit.DefaultWindow, ratelimit.DefaultMax)
	provider := mailer.NewSMTPProvider(cfg)
	gw := gateway.New(cfg, limiter, provider, zapLogger)
	contactHandler := handlers.NewContactHandler(gw, zapLogger)

	r := mux.NewRouter()
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(corsMiddleware(cfg).Handler)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", handlers.HealthCheck).Methods("GET")
	// No .Methods restriction: the gateway owns the 405 response shape
	r.HandleFunc("/api/contact", contactHandler.Contact)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// corsMiddleware answers browser preflights from the same allow-list the
// gateway enforces. An empty list keeps the open policy.
func corsMiddleware(cfg *config.Config) *cors.Cors {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	})
}
