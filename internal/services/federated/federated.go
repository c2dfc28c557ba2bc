// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package federated verifies external identity assertions and maps them to
// local accounts.
package federated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/okrause/notable/internal/models"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/auth"
)

var (
	// ErrInvalidAssertion is returned when the assertion fails verification.
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	// ErrIncompleteProfile is returned when a verified assertion lacks
	// required profile fields.
	ErrIncompleteProfile = errors.New("incomplete identity profile")
	// ErrProviderUnreachable is returned when the identity provider cannot
	// be reached.
	ErrProviderUnreachable = errors.New("identity provider unreachable")
)

// Profile is the identity extracted from a verified assertion.
type Profile struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// Verifier checks an identity assertion and extracts the asserted profile.
// The implementation is selected by configuration at startup.
type Verifier interface {
	Verify(ctx context.Context, assertion string) (*Profile, error)
}

// Service maps verified federated profiles to local accounts.
type Service struct {
	repo     *repository.Repository
	verifier Verifier
}

func NewService(repo *repository.Repository, verifier Verifier) *Service {
	return &Service{repo: repo, verifier: verifier}
}

// Login verifies an assertion and returns the linked-or-created account.
func (s *Service) Login(ctx context.Context, assertion string) (*models.User, error) {
	if s.verifier == nil {
		return nil, ErrInvalidAssertion
	}
	profile, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		return nil, err
	}
	return s.linkOrCreate(ctx, profile)
}

// linkOrCreate resolves a profile to an account. An existing account is found
// by federated id first, then by email; a password-signup account gets the
// federated id stamped on and is marked verified. The operation is idempotent:
// the unique indexes on email and google_id make a concurrent duplicate
// create fail, after which the winner's row is returned.
func (s *Service) linkOrCreate(ctx context.Context, profile *Profile) (*models.User, error) {
	email, err := auth.NormalizeEmail(profile.Email)
	if err != nil {
		return nil, ErrIncompleteProfile
	}

	user, err := s.repo.GetUserByGoogleID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up federated id: %w", err)
	}

	user, err = s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		if err := s.repo.LinkGoogleID(ctx, user.ID, profile.Subject, profile.Picture); err != nil {
			return nil, fmt.Errorf("failed to link federated id: %w", err)
		}
		slog.Info("federated_link", "user_id", user.ID)
		return s.repo.GetUserByID(ctx, user.ID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &models.User{
		ID:              uuid.NewString(),
		Email:           email,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		IsEmailVerified: true,
		ProfilePicture:  profile.Picture,
	}
	user.GoogleID.String = profile.Subject
	user.GoogleID.Valid = true

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent login for the same profile won the insert.
			if existing, lookupErr := s.repo.GetUserByGoogleID(ctx, profile.Subject); lookupErr == nil {
				return existing, nil
			}
			return s.repo.GetUserByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("federated_signup", "user_id", user.ID)
	return user, nil
}
