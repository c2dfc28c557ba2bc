// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	authctx "github.com/okrause/notable/internal/auth"
	"github.com/okrause/notable/internal/models"
	"github.com/okrause/notable/internal/services/auth"
	"github.com/okrause/notable/internal/services/federated"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

// Signup creates a new unverified account and mails a verification code.
func (h *Handlers) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.Signup(c.Request().Context(), auth.SignupParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		return JSONError(c, http.StatusBadRequest, "invalid email address")
	case errors.Is(err, auth.ErrInvalidName):
		return JSONError(c, http.StatusBadRequest, "name is too long")
	case errors.Is(err, auth.ErrWeakPassword):
		return JSONError(c, http.StatusBadRequest, "password must be at least 6 characters")
	case errors.Is(err, auth.ErrUserExists):
		return JSONError(c, http.StatusBadRequest, "email already registered")
	case err != nil:
		return internalError(c, "signup_failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"user": user.Public()})
}

// VerifyOTP validates a pending verification code and starts a session.
func (h *Handlers) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	switch {
	case errors.Is(err, auth.ErrInvalidOTP):
		return JSONError(c, http.StatusBadRequest, "invalid or expired verification code")
	case err != nil:
		return internalError(c, "otp_verify_failed", err)
	}

	return h.startSession(c, user)
}

// Login authenticates a verified account by password.
func (h *Handlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return JSONError(c, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		return internalError(c, "login_failed", err)
	}

	return h.startSession(c, user)
}

// GoogleLogin verifies a Google assertion and starts a session for the
// linked-or-created account.
func (h *Handlers) GoogleLogin(c echo.Context) error {
	var req googleLoginRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.federated.Login(c.Request().Context(), req.Credential)
	switch {
	case errors.Is(err, federated.ErrInvalidAssertion):
		return JSONError(c, http.StatusUnauthorized, "invalid identity assertion")
	case errors.Is(err, federated.ErrIncompleteProfile):
		return JSONError(c, http.StatusBadRequest, "identity profile is incomplete")
	case errors.Is(err, federated.ErrProviderUnreachable):
		return JSONError(c, http.StatusBadGateway, "identity provider unavailable")
	case err != nil:
		return internalError(c, "federated_login_failed", err)
	}

	return h.startSession(c, user)
}

// ResendOTP issues a fresh verification code for an unverified account.
func (h *Handlers) ResendOTP(c echo.Context) error {
	var req resendOTPRequest
	if err := c.Bind(&req); err != nil {
		return JSONError(c, http.StatusBadRequest, "invalid request body")
	}

	err := h.auth.ResendOTP(c.Request().Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrUnknownEmail):
		return JSONError(c, http.StatusNotFound, "no pending verification for this email")
	case errors.Is(err, auth.ErrMailDispatch):
		return JSONError(c, http.StatusBadGateway, "could not send verification email")
	case err != nil:
		return internalError(c, "otp_resend_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// Me returns the profile of the authenticated account.
func (h *Handlers) Me(c echo.Context) error {
	user := authctx.GetUser(c.Request().Context())
	if user == nil {
		return JSONError(c, http.StatusUnauthorized, "unauthenticated")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *Handlers) startSession(c echo.Context, user *models.User) error {
	tok, err := h.tokens.Issue(user)
	if err != nil {
		return internalError(c, "token_issue_failed", err)
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: tok, User: user.Public()})
}
