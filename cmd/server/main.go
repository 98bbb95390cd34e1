package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mailroomhq/mailroom/internal/auditlog"
	"github.com/mailroomhq/mailroom/internal/auth"
	"github.com/mailroomhq/mailroom/internal/config"
	"github.com/mailroomhq/mailroom/internal/health"
	"github.com/mailroomhq/mailroom/internal/logger"
	"github.com/mailroomhq/mailroom/internal/mailer"
	"github.com/mailroomhq/mailroom/internal/metrics"
	"github.com/mailroomhq/mailroom/internal/middleware"
	"github.com/mailroomhq/mailroom/internal/properties"
	"github.com/mailroomhq/mailroom/internal/storage"
	"github.com/mailroomhq/mailroom/internal/template"
	"github.com/mailroomhq/mailroom/internal/transport"
	"github.com/mailroomhq/mailroom/internal/upload"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments inject the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	appLogger := logger.New(logger.DefaultConfig())

	if cfg.JWT.AccessSecret == "" {
		log.Fatal("JWT_ACCESS_SECRET environment variable is required")
	}
	if cfg.Mail.Sender == "" {
		log.Fatal("MAIL_SENDER environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	props, err := properties.New(ctx, &cfg.Properties)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to properties store: %v", err)
	}
	defer props.Close()

	storageService := storage.NewService(&cfg.Storage)

	sender, err := transport.NewSESSender(context.Background(), &cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to initialize mail transport: %v", err)
	}

	// The sent-mailbox reader is optional; without IMAP credentials the
	// recent-emails endpoint serves from the send log instead.
	var sentReader transport.SentReader
	if cfg.Mail.IMAPAddress != "" {
		sentReader = transport.NewIMAPSentReader(&cfg.Mail)
	}

	auditStore := auditlog.New(props, appLogger)
	templateStore := template.New(props, appLogger)

	resolver := mailer.NewResolver(storageService, appLogger)
	mailerService := mailer.NewService(sender, sentReader, resolver, auditStore, appLogger)
	uploadService := upload.NewService(storageService, appLogger)

	tokenService := auth.NewTokenService(auth.TokenServiceConfig{
		AccessSecret:      cfg.JWT.AccessSecret,
		AccessTokenExpiry: cfg.JWT.AccessTokenExpiry,
		Issuer:            cfg.JWT.Issuer,
	})

	mailerHandler := mailer.NewHandler(mailerService, appLogger)
	templateHandler := template.NewHandler(templateStore, appLogger)
	uploadHandler := upload.NewHandler(uploadService, appLogger)
	statusHandler := auth.NewStatusHandler(storageService, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	loggingMiddleware := middleware.NewLoggingMiddleware(appLogger)
	uploadLimiter := middleware.NewUploadRateLimiter(60)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware.Handler)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := health.NewHandler(health.Config{
		Properties: props,
		Storage:    storageService,
		Version:    version,
	})
	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/health/live", healthHandler.Liveness)

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		mailer.RegisterRoutes(r, mailerHandler, authMiddleware.Authenticate)
		template.RegisterRoutes(r, templateHandler, authMiddleware.Authenticate)
		upload.RegisterRoutes(r, uploadHandler, authMiddleware.Authenticate, uploadLimiter.RateLimitUpload)
		auth.RegisterRoutes(r, statusHandler, authMiddleware.Authenticate)
	})

	var cleanupJob *storage.CleanupJob
	if cfg.Cleanup.Enabled {
		cleanupJob = storage.NewCleanupJob(storageService, cfg.Cleanup.Interval, cfg.Cleanup.MaxAge, appLogger)
		if err := cleanupJob.Start(); err != nil {
			log.Fatalf("Failed to start cleanup job: %v", err)
		}
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	healthHandler.SetReady(false)

	if cleanupJob != nil {
		cleanupJob.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("server exited")
}
