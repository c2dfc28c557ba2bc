// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package federated_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/federated"
	"github.com/okrause/notable/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsignedAssertion builds an assertion for the static development verifier.
func unsignedAssertion(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return signed
}

func googleClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":         "google-123",
		"email":       "a@example.com",
		"given_name":  "Ada",
		"family_name": "Lovelace",
		"picture":     "https://example.com/p.png",
	}
}

func TestStaticVerifier(t *testing.T) {
	v := federated.NewStaticVerifier()

	profile, err := v.Verify(context.Background(), unsignedAssertion(t, googleClaims()))

	require.NoError(t, err)
	assert.Equal(t, "google-123", profile.Subject)
	assert.Equal(t, "a@example.com", profile.Email)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
}

func TestStaticVerifier_MissingProfileFields(t *testing.T) {
	v := federated.NewStaticVerifier()

	claims := googleClaims()
	delete(claims, "given_name")

	_, err := v.Verify(context.Background(), unsignedAssertion(t, claims))

	assert.ErrorIs(t, err, federated.ErrIncompleteProfile)
}

func TestStaticVerifier_Garbage(t *testing.T) {
	v := federated.NewStaticVerifier()

	_, err := v.Verify(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, federated.ErrInvalidAssertion)
}

func tokeninfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleVerifier(t *testing.T) {
	srv := tokeninfoServer(t, http.StatusOK, `{
		"aud": "client-id",
		"sub": "google-123",
		"email": "a@example.com",
		"email_verified": "true",
		"given_name": "Ada",
		"family_name": "Lovelace",
		"picture": "https://example.com/p.png"
	}`)

	v, err := federated.NewGoogleVerifier("client-id")
	require.NoError(t, err)
	v = v.WithEndpoint(srv.URL)

	profile, err := v.Verify(context.Background(), "some-id-token")

	require.NoError(t, err)
	assert.Equal(t, "google-123", profile.Subject)
	assert.Equal(t, "Ada", profile.FirstName)
}

func TestGoogleVerifier_AudienceMismatch(t *testing.T) {
	srv := tokeninfoServer(t, http.StatusOK, `{
		"aud": "someone-else",
		"sub": "google-123",
		"email": "a@example.com",
		"email_verified": "true",
		"given_name": "Ada",
		"family_name": "Lovelace"
	}`)

	v, err := federated.NewGoogleVerifier("client-id")
	require.NoError(t, err)
	v = v.WithEndpoint(srv.URL)

	_, err = v.Verify(context.Background(), "some-id-token")

	assert.ErrorIs(t, err, federated.ErrInvalidAssertion)
}

func TestGoogleVerifier_RejectedToken(t *testing.T) {
	srv := tokeninfoServer(t, http.StatusBadRequest, `{"error": "invalid_token"}`)

	v, err := federated.NewGoogleVerifier("client-id")
	require.NoError(t, err)
	v = v.WithEndpoint(srv.URL)

	_, err = v.Verify(context.Background(), "some-id-token")

	assert.ErrorIs(t, err, federated.ErrInvalidAssertion)
}

func TestGoogleVerifier_IncompleteProfile(t *testing.T) {
	srv := tokeninfoServer(t, http.StatusOK, `{
		"aud": "client-id",
		"sub": "google-123",
		"email": "a@example.com",
		"email_verified": "true"
	}`)

	v, err := federated.NewGoogleVerifier("client-id")
	require.NoError(t, err)
	v = v.WithEndpoint(srv.URL)

	_, err = v.Verify(context.Background(), "some-id-token")

	assert.ErrorIs(t, err, federated.ErrIncompleteProfile)
}

func TestGoogleVerifier_ProviderUnreachable(t *testing.T) {
	srv := tokeninfoServer(t, http.StatusOK, "{}")
	url := srv.URL
	srv.Close()

	v, err := federated.NewGoogleVerifier("client-id")
	require.NoError(t, err)
	v = v.WithEndpoint(url)

	_, err = v.Verify(context.Background(), "some-id-token")

	assert.ErrorIs(t, err, federated.ErrProviderUnreachable)
}

func newBridge(t *testing.T) (*federated.Service, *repository.Repository) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return federated.NewService(repo, federated.NewStaticVerifier()), repo
}

func TestLogin_CreatesVerifiedAccountWithoutPassword(t *testing.T) {
	svc, _ := newBridge(t)

	user, err := svc.Login(context.Background(), unsignedAssertion(t, googleClaims()))

	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	assert.False(t, user.PasswordHash.Valid)
	assert.Equal(t, "google-123", user.GoogleID.String)
	assert.Equal(t, "https://example.com/p.png", user.ProfilePicture)
}

func TestLogin_IsIdempotent(t *testing.T) {
	svc, _ := newBridge(t)
	ctx := context.Background()
	assertion := unsignedAssertion(t, googleClaims())

	first, err := svc.Login(ctx, assertion)
	require.NoError(t, err)

	second, err := svc.Login(ctx, assertion)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestLogin_LinksExistingPasswordAccount(t *testing.T) {
	svc, repo := newBridge(t)
	ctx := context.Background()

	existing := testutil.NewUnverifiedUser(t, repo, "a@example.com", "123456",
		time.Now().UTC().Add(10*time.Minute))

	user, err := svc.Login(ctx, unsignedAssertion(t, googleClaims()))

	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	assert.True(t, user.IsEmailVerified)
	assert.Equal(t, "google-123", user.GoogleID.String)
}

func TestLogin_NoVerifierConfigured(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := federated.NewService(repo, nil)

	_, err := svc.Login(context.Background(), "anything")

	assert.ErrorIs(t, err, federated.ErrInvalidAssertion)
}
