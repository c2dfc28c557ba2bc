// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okrause/notable/internal/models"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     "a@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	err := repo.CreateUser(ctx, user)

	require.NoError(t, err)
	assert.NotZero(t, user.CreatedAt)
	assert.False(t, user.IsEmailVerified)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestUser(t, repo, "a@example.com", "secret1")

	err := repo.CreateUser(context.Background(), &models.User{
		ID:    uuid.NewString(),
		Email: "a@example.com",
	})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCreateUser_DuplicateGoogleID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	first := &models.User{ID: uuid.NewString(), Email: "a@example.com"}
	first.GoogleID.String = "google-123"
	first.GoogleID.Valid = true
	require.NoError(t, repo.CreateUser(ctx, first))

	second := &models.User{ID: uuid.NewString(), Email: "b@example.com"}
	second.GoogleID.String = "google-123"
	second.GoogleID.Valid = true

	assert.ErrorIs(t, repo.CreateUser(ctx, second), repository.ErrDuplicate)
}

func TestGetUserByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	created := testutil.NewTestUser(t, repo, "a@example.com", "secret1")

	retrieved, err := repo.GetUserByEmail(context.Background(), "a@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.True(t, retrieved.PasswordHash.Valid)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetPublicUserByID_ExcludesSensitiveFields(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	created := testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456",
		time.Now().UTC().Add(10*time.Minute))

	public, err := repo.GetPublicUserByID(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, public.ID)
	assert.Equal(t, "a@example.com", public.Email)
	// The projection type has no password or OTP fields at all; the query
	// must also succeed without selecting them.
	assert.False(t, public.IsEmailVerified)
}

func TestConsumeOTP(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456", now.Add(10*time.Minute))

	ok, err := repo.ConsumeOTP(ctx, "a@example.com", "123456", now)

	require.NoError(t, err)
	assert.True(t, ok)

	user, err := repo.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	assert.False(t, user.OTPCode.Valid)
	assert.False(t, user.OTPExpiry.Valid)
}

func TestConsumeOTP_SecondAttemptFails(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456", now.Add(10*time.Minute))

	ok, err := repo.ConsumeOTP(ctx, "a@example.com", "123456", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ConsumeOTP(ctx, "a@example.com", "123456", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeOTP_WrongCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	now := time.Now().UTC()

	testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456", now.Add(10*time.Minute))

	ok, err := repo.ConsumeOTP(context.Background(), "a@example.com", "654321", now)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeOTP_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	now := time.Now().UTC()

	testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456", now.Add(-time.Minute))

	ok, err := repo.ConsumeOTP(context.Background(), "a@example.com", "123456", now)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeOTP_UnknownEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	ok, err := repo.ConsumeOTP(context.Background(), "nobody@example.com", "123456", time.Now().UTC())

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetOTP_OverwritesPendingCode(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	user := testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456", now.Add(10*time.Minute))

	require.NoError(t, repo.SetOTP(ctx, user.ID, "777777", now.Add(10*time.Minute)))

	reloaded, err := repo.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "777777", reloaded.OTPCode.String)

	// The old code no longer matches.
	ok, err := repo.ConsumeOTP(ctx, "a@example.com", "123456", now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkGoogleID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456",
		time.Now().UTC().Add(10*time.Minute))

	require.NoError(t, repo.LinkGoogleID(ctx, user.ID, "google-123", "https://example.com/p.png"))

	linked, err := repo.GetUserByGoogleID(ctx, "google-123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, linked.ID)
	assert.True(t, linked.IsEmailVerified)
	assert.Equal(t, "https://example.com/p.png", linked.ProfilePicture)
}

func TestDeleteUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "a@example.com", "secret1")

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	_, err := repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
