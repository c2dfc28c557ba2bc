// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains all HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/auth"
	"github.com/okrause/notable/internal/services/federated"
	"github.com/okrause/notable/internal/services/token"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo      *repository.Repository
	auth      *auth.Service
	tokens    *token.Service
	federated *federated.Service
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, authService *auth.Service, tokens *token.Service, federatedService *federated.Service) *Handlers {
	return &Handlers{
		repo:      repo,
		auth:      authService,
		tokens:    tokens,
		federated: federatedService,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
