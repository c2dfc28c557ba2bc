// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires the application together and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/okrause/notable/internal/config"
	"github.com/okrause/notable/internal/database"
	"github.com/okrause/notable/internal/handlers"
	"github.com/okrause/notable/internal/i18n"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/auth"
	"github.com/okrause/notable/internal/services/federated"
	"github.com/okrause/notable/internal/services/mailer"
	"github.com/okrause/notable/internal/services/token"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"google_mode", cfg.Google.Mode,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository
	repo := repository.New(db)

	// Services
	var sender mailer.Sender
	if cfg.SMTP.Host == "" {
		slog.Warn("no SMTP host configured, logging outgoing mail instead")
		sender = mailer.NewLogSender()
	} else {
		sender, err = mailer.NewSMTPSender(&cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to create mail sender: %w", err)
		}
	}

	tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	authService := auth.NewService(repo, sender, &cfg.Auth)

	verifier, err := newVerifier(&cfg.Google)
	if err != nil {
		return fmt.Errorf("failed to create identity verifier: %w", err)
	}
	federatedService := federated.NewService(repo, verifier)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)

	h := handlers.New(repo, authService, tokens, federatedService)
	setupRoutes(e, h, tokens, repo)

	return startWithGracefulShutdown(ctx, e, cfg)
}

// newVerifier selects the federated identity verifier from configuration.
// The unsigned development verifier is only ever picked by an explicit
// "static" mode, never implied by a broader environment switch.
func newVerifier(cfg *config.GoogleConfig) (federated.Verifier, error) {
	switch cfg.Mode {
	case "tokeninfo":
		return federated.NewGoogleVerifier(cfg.ClientID)
	case "static":
		slog.Warn("using unsigned identity assertions, do not use in production")
		return federated.NewStaticVerifier(), nil
	case "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown google mode %q", cfg.Mode)
	}
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("server running", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
