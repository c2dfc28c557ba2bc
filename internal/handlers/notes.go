// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	authctx "github.com/okrause/notable/internal/auth"
	"github.com/okrause/notable/internal/models"
	"github.com/okrause/notable/internal/repository"
)

const maxTitleLength = 200

type noteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Pinned   bool   `json:"pinned"`
	Archived bool   `json:"archived"`
}

func (r *noteRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if len(r.Title) > maxTitleLength {
		return "title is too long"
	}
	return ""
}

// CreateNote creates a note owned by the authenticated account.
func (h *Handlers) CreateNote(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return JSONError(c, http.StatusBadRequest, msg)
	}

	note := &models.Note{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Title:    req.Title,
		Content:  req.Content,
		Pinned:   req.Pinned,
		Archived: req.Archived,
	}
	if err := h.repo.CreateNote(c.Request().Context(), note); err != nil {
		return internalError(c, "note_create_failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"note": note})
}

// ListNotes returns a page of the account's notes, optionally filtered by a
// search query.
func (h *Handlers) ListNotes(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())

	query := c.QueryParam("q")
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notes, err := h.repo.ListNotes(c.Request().Context(), user.ID, query, limit, (page-1)*limit)
	if err != nil {
		return internalError(c, "note_list_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notes": notes,
		"page":  page,
		"limit": limit,
	})
}

// GetNote returns a single note owned by the authenticated account.
func (h *Handlers) GetNote(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())

	note, err := h.repo.GetNote(c.Request().Context(), user.ID, c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return JSONError(c, http.StatusNotFound, "note not found")
	case err != nil:
		return internalError(c, "note_get_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"note": note})
}

// UpdateNote replaces the content of a note owned by the authenticated
// account.
func (h *Handlers) UpdateNote(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())

	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return JSONError(c, http.StatusBadRequest, msg)
	}

	note, err := h.repo.GetNote(c.Request().Context(), user.ID, c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return JSONError(c, http.StatusNotFound, "note not found")
	case err != nil:
		return internalError(c, "note_update_failed", err)
	}

	note.Title = req.Title
	note.Content = req.Content
	note.Pinned = req.Pinned
	note.Archived = req.Archived

	if err := h.repo.UpdateNote(c.Request().Context(), note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return JSONError(c, http.StatusNotFound, "note not found")
		}
		return internalError(c, "note_update_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"note": note})
}

// DeleteNote removes a note owned by the authenticated account.
func (h *Handlers) DeleteNote(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())

	err := h.repo.DeleteNote(c.Request().Context(), user.ID, c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return JSONError(c, http.StatusNotFound, "note not found")
	case err != nil:
		return internalError(c, "note_delete_failed", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// NoteStats returns note counts for the authenticated account.
func (h *Handlers) NoteStats(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())

	stats, err := h.repo.NoteStats(c.Request().Context(), user.ID)
	if err != nil {
		return internalError(c, "note_stats_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
