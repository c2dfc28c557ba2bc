// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the password and OTP account flows.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okrause/notable/internal/config"
	"github.com/okrause/notable/internal/models"
	"github.com/okrause/notable/internal/repository"
	"github.com/okrause/notable/internal/services/mailer"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid or expired verification code")
	ErrUnknownEmail       = errors.New("no pending verification for email")
	ErrMailDispatch       = errors.New("could not send verification email")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidName        = errors.New("name exceeds maximum length")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

const maxNameLength = 100

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

type Service struct {
	repo   *repository.Repository
	sender mailer.Sender
	cfg    *config.AuthConfig
}

func NewService(repo *repository.Repository, sender mailer.Sender, cfg *config.AuthConfig) *Service {
	return &Service{
		repo:   repo,
		sender: sender,
		cfg:    cfg,
	}
}

// SignupParams holds the parameters for account creation.
type SignupParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Signup creates a new unverified account, stores a fresh verification code
// and mails it to the user. A mail outage does not fail the signup; the code
// can be requested again via ResendOTP.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	email, err := NormalizeEmail(params.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	if len(params.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(params.FirstName) > maxNameLength || len(params.LastName) > maxNameLength {
		return nil, ErrInvalidName
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.TrimSpace(params.FirstName),
		LastName:  strings.TrimSpace(params.LastName),
	}
	user.PasswordHash.String = string(passwordHash)
	user.PasswordHash.Valid = true
	user.OTPCode.String = code
	user.OTPCode.Valid = true
	user.OTPExpiry.Time = time.Now().UTC().Add(s.cfg.OTPTTL)
	user.OTPExpiry.Valid = true

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// A transient mail outage must not undo the signup.
	if err := s.sendOTP(ctx, user, code); err != nil {
		slog.Error("otp_mail_failed", "user_id", user.ID, "error", err)
	}

	slog.Info("signup_success", "user_id", user.ID, "email", email)
	return user, nil
}

// VerifyOTP validates a pending verification code and marks the account as
// verified. Wrong code, expired code, unknown email and already-verified
// accounts all collapse into ErrInvalidOTP so callers cannot probe account
// state.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*models.User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidOTP
	}

	ok, err := s.repo.ConsumeOTP(ctx, normalized, code, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		slog.Warn("otp_verify_failed", "email", normalized)
		return nil, ErrInvalidOTP
	}

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	slog.Info("otp_verify_success", "user_id", user.ID)
	return user, nil
}

// ResendOTP issues a fresh verification code, overwriting any still-pending
// one. Unlike signup, a mail failure here is surfaced to the caller.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return ErrUnknownEmail
	}

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownEmail
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsEmailVerified {
		return ErrUnknownEmail
	}

	code, err := GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.repo.SetOTP(ctx, user.ID, code, time.Now().UTC().Add(s.cfg.OTPTTL)); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.sendOTP(ctx, user, code); err != nil {
		slog.Error("otp_mail_failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrMailDispatch, err)
	}

	slog.Info("otp_resent", "user_id", user.ID)
	return nil
}

// Login authenticates a verified account by password. Unknown email, wrong
// password, an unverified account and a federated-only account are all
// reported as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", normalized, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.PasswordHash.Valid {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		slog.Warn("login_failed", "user_id", user.ID, "reason", "no_password")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)); err != nil {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "email_not_verified")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, nil
}

// NormalizeEmail validates and case-normalizes an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}
