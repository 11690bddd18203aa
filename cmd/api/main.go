//	@title			Blob Provider API
//	@version		1.0
//	@description	File upload service backed by Azure Blob Storage, with optional public/private containers and CDN URLs.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/radif/blobprovider/internal/config"
	"github.com/radif/blobprovider/internal/db"
	"github.com/radif/blobprovider/internal/file"
	"github.com/radif/blobprovider/internal/logging"
	appMiddleware "github.com/radif/blobprovider/internal/middleware"
	"github.com/radif/blobprovider/internal/storage"

	_ "github.com/radif/blobprovider/docs/swagger"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := db.Connect(startCtx, cfg.DatabaseURL)
	cancelStart()
	if err != nil {
		fatal(logger, "database connection failed", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		fatal(logger, "database migration failed", err)
	}

	opts := cfg.StorageOptions()
	provider, err := storage.New(opts, logger)
	if err != nil {
		fatal(logger, "storage provider init failed", err)
	}
	observer, err := storage.NewPrometheusObserver("", prometheus.DefaultRegisterer)
	if err != nil {
		fatal(logger, "storage metrics init failed", err)
	}
	provider = storage.Instrument(provider, observer)

	// Wire dependencies: repository → service → handler
	fileRepo := file.NewRepository(pool)
	fileSvc := file.NewService(fileRepo, provider, logger)
	fileHandler := file.NewHandler(fileSvc, cfg.MaxUploadBytes(), opts.Backend, storage.Fields(opts.Dual()))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/provider", fileHandler.Provider)

		r.Route("/files", func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
			fileHandler.Routes(r)
		})
	})

	// Uploads may run up to storage.UploadTimeout, so the write deadline is
	// left to the provider instead of the server.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv, "backend", opts.Backend, "dual", opts.Dual())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(logger, "server error", err)
		}
	}()

	<-quit
	logger.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
