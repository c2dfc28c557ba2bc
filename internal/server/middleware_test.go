// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	authctx "github.com/okrause/notable/internal/auth"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/server"
	"github.com/okrause/notable/internal/services/token"
	"github.com/okrause/notable/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGate(t *testing.T) (*echo.Echo, *repository.Repository, *token.Service) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	tokens, err := token.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		user := authctx.GetUser(c.Request().Context())
		require.NotNil(t, user)
		return c.JSON(http.StatusOK, echo.Map{"user_id": user.ID})
	}, server.RequireAuth(tokens, repo))

	return e, repo, tokens
}

func request(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	e, repo, tokens := newGate(t)

	user := testutil.NewTestUser(t, repo, "a@example.com", "secret1")
	tok, err := tokens.Issue(user)
	require.NoError(t, err)

	rec := request(e, "Bearer "+tok)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	e, _, _ := newGate(t)

	rec := request(e, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	e, repo, tokens := newGate(t)

	user := testutil.NewTestUser(t, repo, "a@example.com", "secret1")
	tok, err := tokens.Issue(user)
	require.NoError(t, err)

	rec := request(e, "Token "+tok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	e, _, _ := newGate(t)

	rec := request(e, "Bearer not-a-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	e, repo, _ := newGate(t)

	shortLived, err := token.NewService("test-secret", time.Nanosecond)
	require.NoError(t, err)
	user := testutil.NewTestUser(t, repo, "a@example.com", "secret1")
	tok, err := shortLived.Issue(user)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	rec := request(e, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_DeletedAccount(t *testing.T) {
	e, repo, tokens := newGate(t)

	user := testutil.NewTestUser(t, repo, "a@example.com", "secret1")
	tok, err := tokens.Issue(user)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(context.Background(), user.ID))

	rec := request(e, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
