// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Note belongs to exactly one user; every query against notes is scoped by
// UserID so accounts can only ever see their own records.
type Note struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Pinned    bool      `db:"pinned" json:"pinned"`
	Archived  bool      `db:"archived" json:"archived"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NoteStats summarizes a user's notes for the stats endpoint.
type NoteStats struct {
	Total    int64 `db:"total" json:"total"`
	Pinned   int64 `db:"pinned" json:"pinned"`
	Archived int64 `db:"archived" json:"archived"`
}
