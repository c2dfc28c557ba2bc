// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/okrause/notable/internal/i18n"
	"github.com/okrause/notable/internal/models"
)

// otpRange covers the six-digit codes 100000 through 999999.
const otpRange = 900000

// GenerateOTP returns a uniformly random six-digit verification code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// sendOTP mails a verification code to the user, localized via the context.
func (s *Service) sendOTP(ctx context.Context, user *models.User, code string) error {
	subject := i18n.T(ctx, "otp_email_subject")
	body := i18n.TData(ctx, "otp_email_body", map[string]any{
		"FirstName": user.FirstName,
		"Code":      code,
		"Minutes":   int(s.cfg.OTPTTL.Minutes()),
	})

	return s.sender.Send(ctx, user.Email, subject, body)
}
