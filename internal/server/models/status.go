package models

import "github.com/dkotenko/authflow/internal/common"

// Status is the onboarding state of an account. The progression is strictly
// PENDING → VERIFIED → CREATED; no transition moves backward. Re-requesting an
// OTP while PENDING re-issues the code without changing state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusCreated  Status = "CREATED"
)

// CanRequestOtp reports whether an OTP may be (re-)issued in this state.
func (s Status) CanRequestOtp() error {
	if s == StatusCreated {
		return common.ErrAlreadyCreated
	}
	return nil
}

// CanVerifyOtp reports whether an outstanding OTP may be verified in this state.
func (s Status) CanVerifyOtp() error {
	if s == StatusCreated {
		return common.ErrAlreadyCreated
	}
	if s != StatusPending {
		return common.ErrOtpNotRequested
	}
	return nil
}

// CanCreateAccount reports whether credentials may be attached in this state.
func (s Status) CanCreateAccount() error {
	if s == StatusCreated {
		return common.ErrAlreadyCreated
	}
	if s != StatusVerified {
		return common.ErrEmailNotVerified
	}
	return nil
}
