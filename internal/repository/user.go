// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/okrause/notable/internal/models"
)

const publicUserColumns = `id, email, first_name, last_name, is_email_verified, profile_picture, created_at, updated_at`

// CreateUser inserts a new user. Returns ErrDuplicate if the email or the
// google id is already taken.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, is_email_verified,
		                    google_id, profile_picture, otp_code, otp_expiry, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.IsEmailVerified,
		user.GoogleID, user.ProfilePicture, user.OTPCode, user.OTPExpiry, user.CreatedAt, user.UpdatedAt)
	return wrapError(err)
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByGoogleID retrieves a user by their federated google id.
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE google_id = ?`, googleID); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetPublicUserByID loads the client-safe projection of a user. The password
// hash and OTP columns are excluded from the query itself, not filtered after
// the fact.
func (r *Repository) GetPublicUserByID(ctx context.Context, id string) (*models.PublicUser, error) {
	var user models.PublicUser
	err := r.db.GetContext(ctx, &user, `SELECT `+publicUserColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// SetOTP stores a fresh verification code and its expiry, overwriting any
// still-pending code.
func (r *Repository) SetOTP(ctx context.Context, userID, code string, expiry time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_code = ?, otp_expiry = ?, updated_at = ? WHERE id = ?`,
		code, expiry, time.Now().UTC(), userID)
	return wrapError(err)
}

// ConsumeOTP atomically marks a user as verified and clears the pending code,
// but only when the email exists, the code matches, the code has not expired
// and the user is still unverified. Returns true when exactly this call won
// the update; a concurrent second attempt observes false.
func (r *Repository) ConsumeOTP(ctx context.Context, email, code string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET is_email_verified = 1, otp_code = NULL, otp_expiry = NULL, updated_at = ?
		 WHERE email = ? AND otp_code = ? AND is_email_verified = 0 AND otp_expiry > ?`,
		now, email, code, now)
	if err != nil {
		return false, wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LinkGoogleID stamps a federated id onto an existing account and marks it
// verified. Returns ErrDuplicate if the google id is already linked elsewhere.
func (r *Repository) LinkGoogleID(ctx context.Context, userID, googleID, profilePicture string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET google_id = ?, is_email_verified = 1, profile_picture = ?, updated_at = ?
		 WHERE id = ?`,
		googleID, profilePicture, time.Now().UTC(), userID)
	return wrapError(err)
}

// DeleteUser deletes a user by their ID.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return wrapError(err)
}
