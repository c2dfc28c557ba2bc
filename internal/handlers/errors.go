// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONError writes the error envelope used by every endpoint.
func JSONError(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"error": message})
}

// internalError logs the cause and returns a generic 500 without leaking
// internal detail to the client.
func internalError(c echo.Context, event string, err error) error {
	slog.Error(event, "error", err)
	return JSONError(c, http.StatusInternalServerError, "internal server error")
}
