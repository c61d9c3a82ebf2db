// Package common defines shared constants and sentinel errors used across
// authflow components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Onboarding state-machine errors.
	ErrAlreadyCreated   = errors.New("account already created")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailNotVerified = errors.New("email not verified")

	// OTP lifecycle errors.
	ErrOtpNotRequested = errors.New("otp not requested")
	ErrOtpNotGenerated = errors.New("otp not generated")
	ErrOtpExpired      = errors.New("otp expired")
	ErrInvalidOtp      = errors.New("invalid otp")
	ErrOtpSendFailed   = errors.New("otp send failed")

	// Credential and token errors.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
