// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package federated

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultTokeninfoEndpoint is Google's ID-token introspection endpoint.
const DefaultTokeninfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
// Google performs the signature check; this verifier checks the audience and
// extracts the profile.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

// NewGoogleVerifier creates a verifier for the given OAuth client id.
func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: DefaultTokeninfoEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// WithEndpoint overrides the tokeninfo endpoint, used by tests.
func (v *GoogleVerifier) WithEndpoint(endpoint string) *GoogleVerifier {
	v.endpoint = endpoint
	return v
}

type tokeninfoResponse struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Verify checks an ID token with Google and extracts the asserted profile.
func (v *GoogleVerifier) Verify(ctx context.Context, assertion string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.endpoint+"?id_token="+url.QueryEscape(assertion), nil)
	if err != nil {
		return nil, fmt.Errorf("building tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidAssertion
	}

	var info tokeninfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decoding tokeninfo response: %w", ErrProviderUnreachable, err)
	}

	if info.Aud != v.clientID {
		return nil, ErrInvalidAssertion
	}
	if info.EmailVerified != "true" {
		return nil, ErrInvalidAssertion
	}
	if info.Sub == "" || info.Email == "" || info.GivenName == "" || info.FamilyName == "" {
		return nil, ErrIncompleteProfile
	}

	return &Profile{
		Subject:   info.Sub,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Picture:   info.Picture,
	}, nil
}
