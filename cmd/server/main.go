// Package main initializes and starts the Stoneworks site server,
// setting up configuration, logging, storage, sessions, services,
// handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/config"
	"github.com/atinyakov/stoneworks/internal/db"
	"github.com/atinyakov/stoneworks/internal/logger"
	"github.com/atinyakov/stoneworks/internal/metrics"
	"github.com/atinyakov/stoneworks/internal/middleware"
	"github.com/atinyakov/stoneworks/internal/objectstore"
	"github.com/atinyakov/stoneworks/internal/repository"
	"github.com/atinyakov/stoneworks/internal/server/handler/http"
	"github.com/atinyakov/stoneworks/internal/service"
	"github.com/atinyakov/stoneworks/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel, options.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Select the storage backend once for the process lifetime.
	var (
		store        repository.Storage
		sessionStore scs.Store
	)
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		store = repository.NewPostgresStorage(postgresDB)
		sessionStore = session.NewStore(postgresDB)

		// Purge expired sessions
		db.StartSessionCleaner(ctx, postgresDB, 5*time.Minute, zapLogger)
		zapLogger.Info("storage selected", zap.String("backend", "postgres"))
	} else {
		store = repository.NewMemoryStorage()
		sessionStore = session.NewStore(nil)
		zapLogger.Warn("no database configured, using in-memory storage; data is lost on restart",
			zap.String("backend", "memory"))
	}
	defer func() { _ = store.Close() }()

	// Initialize business-logic services.
	authService := service.NewAuthService(store)
	created, err := authService.Seed(ctx, options.AdminUsername, options.AdminPassword)
	if err != nil {
		zapLogger.Fatal("failed to seed admin user", zap.Error(err))
	}
	if created {
		zapLogger.Info("seeded admin user", zap.String("username", options.AdminUsername))
	}
	if options.UsesDefaultAdminPassword() && !options.IsDevelopment() {
		zapLogger.Warn("admin user uses the default password; change it after first login")
	}

	healthChecks := map[string]http.Pinger{}
	uploadService := service.NewUploadService(nil)
	if options.ObjectStoreEnabled() {
		minio, err := objectstore.New(ctx, objectstore.Options{
			Endpoint:  options.S3.Endpoint,
			AccessKey: options.S3.AccessKey,
			SecretKey: options.S3.SecretKey,
			Bucket:    options.S3.Bucket,
			UseSSL:    options.S3.UseSSL,
			PublicURL: options.S3.PublicURL,
		})
		if err != nil {
			zapLogger.Fatal("cannot init object store", zap.Error(err))
		}
		uploadService = service.NewUploadService(minio)
		healthChecks["objectstore"] = minio
		zapLogger.Info("uploads go to object storage",
			zap.String("endpoint", minio.Host()),
			zap.String("bucket", options.S3.Bucket))
	} else {
		zapLogger.Info("no object store configured, uploads are echoed back")
	}

	sessions := session.New(sessionStore, options.SessionLifetime, options.IsDevelopment())

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Storage:        store,
		Auth:           authService,
		Uploads:        uploadService,
		Sessions:       sessions,
		Logger:         zapLogger,
		Metrics:        metrics.New(),
		LoginLimiter:   middleware.NewRateLimiter(options.LoginRate, options.LoginBurst),
		HealthChecks:   healthChecks,
		TrustedOrigins: options.TrustedOrigins,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
