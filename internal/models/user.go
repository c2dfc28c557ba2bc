// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// User is the persisted account record. PasswordHash is null for accounts
// created through federated login only; OTPCode and OTPExpiry are set together
// while an email verification is pending and cleared together on success.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID              string         `db:"id" json:"id"`
	Email           string         `db:"email" json:"email"`
	PasswordHash    sql.NullString `db:"password_hash" json:"-"`
	FirstName       string         `db:"first_name" json:"first_name"`
	LastName        string         `db:"last_name" json:"last_name"`
	IsEmailVerified bool           `db:"is_email_verified" json:"is_email_verified"`
	GoogleID        sql.NullString `db:"google_id" json:"-"`
	ProfilePicture  string         `db:"profile_picture" json:"profile_picture,omitempty"`
	OTPCode         sql.NullString `db:"otp_code" json:"-"`
	OTPExpiry       sql.NullTime   `db:"otp_expiry" json:"-"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// PublicUser is the projection of a User that is safe to return to clients
// and to attach to request contexts. It never carries the password hash or
// the pending OTP fields.
type PublicUser struct { //nolint:govet // fieldalignment: readability over optimization
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	IsEmailVerified bool      `db:"is_email_verified" json:"is_email_verified"`
	ProfilePicture  string    `db:"profile_picture" json:"profile_picture,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsEmailVerified: u.IsEmailVerified,
		ProfilePicture:  u.ProfilePicture,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
