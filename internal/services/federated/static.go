// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package federated

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// StaticVerifier decodes assertions without checking their signature. It is
// meant for local development against fabricated tokens and must only be
// selected through explicit configuration, never by a broad environment flag.
type StaticVerifier struct{}

// NewStaticVerifier creates the development verifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

// Verify extracts the profile claims from the assertion without signature
// verification.
func (v *StaticVerifier) Verify(_ context.Context, assertion string) (*Profile, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(assertion, claims); err != nil {
		return nil, ErrInvalidAssertion
	}

	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}

	profile := &Profile{
		Subject:   str("sub"),
		Email:     str("email"),
		FirstName: str("given_name"),
		LastName:  str("family_name"),
		Picture:   str("picture"),
	}
	if profile.Subject == "" {
		return nil, ErrInvalidAssertion
	}
	if profile.Email == "" || profile.FirstName == "" || profile.LastName == "" {
		return nil, ErrIncompleteProfile
	}

	return profile, nil
}
