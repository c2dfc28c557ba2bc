// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	authctx "github.com/okrause/notable/internal/auth"
	"github.com/okrause/notable/internal/config"
	"github.com/okrause/notable/internal/handlers"
	"github.com/okrause/notable/internal/i18n"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/token"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(i18nMiddleware())
}

// RequireAuth is the per-request authorization gate for protected routes. It
// extracts the bearer token, verifies it, resolves the account through the
// public projection and attaches it to the request context. Nothing is
// mutated; every failure is a 401 regardless of its branch.
func RequireAuth(tokens *token.Service, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const prefix = "Bearer "

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, prefix) {
				return handlers.JSONError(c, http.StatusUnauthorized, "unauthenticated")
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, prefix))
			if err != nil {
				slog.Debug("token_rejected", "error", err)
				return handlers.JSONError(c, http.StatusUnauthorized, "unauthenticated")
			}

			// A valid token may outlive its account.
			user, err := repo.GetPublicUserByID(c.Request().Context(), claims.UserID)
			if err != nil {
				slog.Debug("token_account_missing", "user_id", claims.UserID)
				return handlers.JSONError(c, http.StatusUnauthorized, "unauthenticated")
			}

			ctx := authctx.WithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
