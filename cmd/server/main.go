// Package main initializes and starts the gophauth HTTP server,
// setting up configuration, logging, the database connection, the
// repository, services, session handling and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/gophauth/internal/config"
	"github.com/atinyakov/gophauth/internal/db"
	"github.com/atinyakov/gophauth/internal/logger"
	"github.com/atinyakov/gophauth/internal/password"
	"github.com/atinyakov/gophauth/internal/repository"
	"github.com/atinyakov/gophauth/internal/server/handler/http"
	"github.com/atinyakov/gophauth/internal/service"
	"github.com/atinyakov/gophauth/internal/session"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, .env, config file and environment configuration.
	options := config.Parse()
	addr := options.Port

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		// zap is still a no-op here.
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	zapLogger := log.Log

	if options.SecretKey == config.DefaultSecretKey {
		zapLogger.Warn("using the development secret key; set SECRET_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Initialize the credential store and the auth service.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	authService := service.NewAuthService(authRepo, password.NewBcryptHasher(options.BcryptCost))

	// Initialize signed-cookie sessions.
	sessions, err := session.NewManager(options.Secrets(), session.Options{
		MaxAge: options.SessionMaxAge,
		Secure: options.SecureCookie,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init sessions", zap.Error(err))
	}

	views, err := http.NewViews()
	if err != nil {
		zapLogger.Fatal("cannot parse templates", zap.Error(err))
	}

	// Create HTTP handlers for auth and page endpoints.
	authHandler := &http.AuthHandler{
		AuthService: authService,
		Sessions:    sessions,
		Views:       views,
		Logger:      zapLogger,
	}
	pageHandler := &http.PageHandler{Views: views, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, pageHandler, sessions, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", addr))
		err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", addr))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
