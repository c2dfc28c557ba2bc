// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/okrause/notable/internal/config"
	"github.com/okrause/notable/internal/database"
	"github.com/okrause/notable/internal/models"
	"github.com/okrause/notable/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewAuthConfig returns auth settings tuned for fast tests.
func NewAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		OTPTTL:     10 * time.Minute,
	}
}

// NewTestUser creates a verified test user with the given password.
func NewTestUser(t *testing.T, repo *repository.Repository, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:              uuid.NewString(),
		Email:           email,
		FirstName:       "Test",
		LastName:        "User",
		IsEmailVerified: true,
	}
	user.PasswordHash.String = string(hash)
	user.PasswordHash.Valid = true

	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

// NewUnverifiedUser creates an unverified user with a pending OTP.
func NewUnverifiedUser(t *testing.T, repo *repository.Repository, email, code string, expiry time.Time) *models.User {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
	}
	user.OTPCode.String = code
	user.OTPCode.Valid = true
	user.OTPExpiry.Time = expiry
	user.OTPExpiry.Valid = true

	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

// NewTestNote creates a note for a user.
func NewTestNote(t *testing.T, repo *repository.Repository, userID, title string) *models.Note {
	t.Helper()
	ctx := context.Background()

	note := &models.Note{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	}
	require.NoError(t, repo.CreateNote(ctx, note))
	return note
}

// SentMail is a message captured by RecordingSender.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// RecordingSender captures outgoing mail for assertions. Setting Err makes
// every Send fail with it.
type RecordingSender struct {
	mu    sync.Mutex
	Mails []SentMail
	Err   error
}

// Send records the message or fails with the configured error.
func (s *RecordingSender) Send(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Mails = append(s.Mails, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// Last returns the most recently recorded message, or nil.
func (s *RecordingSender) Last() *SentMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Mails) == 0 {
		return nil
	}
	return &s.Mails[len(s.Mails)-1]
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
