package httpapi

import (
	"errors"
	"net/http"

	"github.com/dkotenko/authflow/internal/common"
)

// statusForError maps service errors to HTTP outcomes. Everything in the
// onboarding taxonomy is client-correctable (400); credential and token
// failures are 401; a failed OTP send is the one dependency failure surfaced
// as 5xx. Anything unrecognized stays opaque.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrAlreadyCreated):
		return http.StatusBadRequest, common.MsgAlreadyCreated
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusBadRequest, common.MsgUserNotFound
	case errors.Is(err, common.ErrEmailNotVerified):
		return http.StatusBadRequest, common.MsgEmailUnverified
	case errors.Is(err, common.ErrOtpNotRequested):
		return http.StatusBadRequest, common.MsgOtpNotRequested
	case errors.Is(err, common.ErrOtpNotGenerated):
		return http.StatusBadRequest, common.MsgOtpNotGenerated
	case errors.Is(err, common.ErrOtpExpired):
		return http.StatusBadRequest, common.MsgOtpExpired
	case errors.Is(err, common.ErrInvalidOtp):
		return http.StatusBadRequest, common.MsgInvalidOtp
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, common.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "Invalid refresh token."
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized."
	case errors.Is(err, common.ErrOtpSendFailed):
		return http.StatusInternalServerError, common.MsgOtpSendFailed
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}
