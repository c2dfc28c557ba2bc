// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/okrause/notable/internal/models"
)

// CreateNote inserts a new note for a user.
func (r *Repository) CreateNote(ctx context.Context, note *models.Note) error {
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, pinned, archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, note.Content, note.Pinned, note.Archived,
		note.CreatedAt, note.UpdatedAt)
	return wrapError(err)
}

// GetNote retrieves a single note owned by the given user. Notes owned by
// other users are indistinguishable from missing ones.
func (r *Repository) GetNote(ctx context.Context, userID, noteID string) (*models.Note, error) {
	var note models.Note
	err := r.db.GetContext(ctx, &note,
		`SELECT * FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &note, nil
}

// ListNotes returns a page of the user's notes, pinned first, newest first.
// When query is non-empty it restricts results to notes whose title or
// content contains it.
func (r *Repository) ListNotes(ctx context.Context, userID, query string, limit, offset int) ([]models.Note, error) {
	notes := []models.Note{}

	if query != "" {
		pattern := "%" + query + "%"
		err := r.db.SelectContext(ctx, &notes,
			`SELECT * FROM notes
			 WHERE user_id = ? AND (title LIKE ? OR content LIKE ?)
			 ORDER BY pinned DESC, updated_at DESC
			 LIMIT ? OFFSET ?`,
			userID, pattern, pattern, limit, offset)
		return notes, wrapError(err)
	}

	err := r.db.SelectContext(ctx, &notes,
		`SELECT * FROM notes
		 WHERE user_id = ?
		 ORDER BY pinned DESC, updated_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset)
	return notes, wrapError(err)
}

// UpdateNote updates a note owned by the given user. Returns ErrNotFound if
// the note does not exist or belongs to someone else.
func (r *Repository) UpdateNote(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes
		 SET title = ?, content = ?, pinned = ?, archived = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		note.Title, note.Content, note.Pinned, note.Archived, note.UpdatedAt,
		note.ID, note.UserID)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNote deletes a note owned by the given user. Returns ErrNotFound if
// nothing was deleted.
func (r *Repository) DeleteNote(ctx context.Context, userID, noteID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, noteID, userID)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NoteStats returns note counts for a user.
func (r *Repository) NoteStats(ctx context.Context, userID string) (*models.NoteStats, error) {
	var stats models.NoteStats
	err := r.db.GetContext(ctx, &stats,
		`SELECT COUNT(*) AS total,
		        COALESCE(SUM(pinned), 0) AS pinned,
		        COALESCE(SUM(archived), 0) AS archived
		 FROM notes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &stats, nil
}
