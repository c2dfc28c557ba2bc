// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"github.com/labstack/echo/v4"
	"github.com/okrause/notable/internal/handlers"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/token"
)

func setupRoutes(e *echo.Echo, h *handlers.Handlers, tokens *token.Service, repo *repository.Repository) {
	e.GET("/health", h.Health)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/verify-otp", h.VerifyOTP)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/google", h.GoogleLogin)
	authGroup.POST("/resend-otp", h.ResendOTP)
	authGroup.GET("/me", h.Me, RequireAuth(tokens, repo))

	notes := api.Group("/notes", RequireAuth(tokens, repo))
	notes.POST("", h.CreateNote)
	notes.GET("", h.ListNotes)
	notes.GET("/stats", h.NoteStats)
	notes.GET("/:id", h.GetNote)
	notes.PUT("/:id", h.UpdateNote)
	notes.DELETE("/:id", h.DeleteNote)
}
