package models

import "time"

// Account is the central onboarding entity. OtpCode/OtpExpiry are present only
// while an OTP is outstanding (always both or neither); RefreshTokenHash is
// present only while a session is active.
type Account struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	PasswordHash     string
	OtpCode          *string
	OtpExpiry        *time.Time
	RefreshTokenHash *string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AccountPatch describes a partial update. Nil pointer fields are left
// untouched by the store; the Clear flags set the corresponding nullable
// columns to NULL. OtpCode and OtpExpiry must be set (or cleared) together.
type AccountPatch struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
	Status       *Status

	OtpCode   *string
	OtpExpiry *time.Time
	ClearOtp  bool

	RefreshTokenHash  *string
	ClearRefreshToken bool
}

// Apply copies the patch onto a, in the same way the Postgres store applies it
// to a row. Used by the in-memory store and by tests.
func (p AccountPatch) Apply(a *Account) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.ClearOtp {
		a.OtpCode = nil
		a.OtpExpiry = nil
	} else if p.OtpCode != nil {
		a.OtpCode = p.OtpCode
		a.OtpExpiry = p.OtpExpiry
	}
	if p.ClearRefreshToken {
		a.RefreshTokenHash = nil
	} else if p.RefreshTokenHash != nil {
		a.RefreshTokenHash = p.RefreshTokenHash
	}
}
