package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dkotenko/authflow/internal/common"
	"github.com/dkotenko/authflow/internal/server/config"
	"github.com/dkotenko/authflow/internal/server/mail"
	"github.com/dkotenko/authflow/internal/server/models"
	"github.com/dkotenko/authflow/internal/server/repositories/accounts"
)

// OtpService issues and verifies time-bounded one-time passcodes, driving the
// PENDING → VERIFIED half of the onboarding state machine.
type OtpService struct {
	repo     accounts.Repository
	notifier mail.Notifier
	cfg      *config.Config
	locks    *KeyedMutex
	now      func() time.Time
}

// NewOtpService constructs an OtpService. The locks instance must be shared
// with the SessionService operating on the same store.
func NewOtpService(repo accounts.Repository, notifier mail.Notifier, cfg *config.Config, locks *KeyedMutex) *OtpService {
	return &OtpService{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		locks:    locks,
		now:      time.Now,
	}
}

// RequestOtp creates the account on first contact and (re-)issues a fresh
// code otherwise. The code is emailed before any state is persisted, so a
// failed send never leaves an undelivered code as the account's live OTP.
func (s *OtpService) RequestOtp(ctx context.Context, email, firstName, lastName string) (*Confirmation, error) {
	email = NormalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := existing.Status.CanRequestOtp(); err != nil {
			return nil, err
		}
	}

	code, err := generateOtpCode(s.cfg.OtpLength)
	if err != nil {
		return nil, fmt.Errorf("generating otp: %w", err)
	}
	expiry := s.now().Add(s.cfg.OtpValidity)

	subject := fmt.Sprintf("%s - OTP Verification", s.cfg.Application)
	data := map[string]any{
		"FirstName":     firstName,
		"LastName":      lastName,
		"Otp":           code,
		"Application":   s.cfg.Application,
		"ExpiryMinutes": int(s.cfg.OtpValidity.Minutes()),
	}
	if err := s.notifier.Send(ctx, email, subject, mail.TemplateOtp, data); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOtpSendFailed, err)
	}

	unlock := s.locks.Lock(email)
	defer unlock()

	// Re-fetch under the lock: a concurrent request may have advanced the
	// account past PENDING/VERIFIED while the mail was in flight.
	existing, err = s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		_, err = s.repo.Create(ctx, &models.Account{
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			OtpCode:   &code,
			OtpExpiry: &expiry,
			Status:    models.StatusPending,
		})
	} else {
		if guardErr := existing.Status.CanRequestOtp(); guardErr != nil {
			return nil, guardErr
		}
		pending := models.StatusPending
		_, err = s.repo.Update(ctx, existing.ID, models.AccountPatch{
			FirstName: &firstName,
			LastName:  &lastName,
			OtpCode:   &code,
			OtpExpiry: &expiry,
			Status:    &pending,
		})
	}
	if err != nil {
		return nil, err
	}

	return &Confirmation{Email: email, Message: common.MsgOtpSent}, nil
}

// VerifyOtp checks the presented code against the outstanding one and, on
// success, transitions the account to VERIFIED and clears the code. Expired
// or mismatched codes never mutate state.
func (s *OtpService) VerifyOtp(ctx context.Context, email, code string) (*Confirmation, error) {
	email = NormalizeEmail(email)

	unlock := s.locks.Lock(email)
	defer unlock()

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	if err := account.Status.CanVerifyOtp(); err != nil {
		return nil, err
	}
	if account.OtpCode == nil || account.OtpExpiry == nil {
		return nil, common.ErrOtpNotGenerated
	}
	if account.OtpExpiry.Before(s.now()) {
		return nil, common.ErrOtpExpired
	}
	if subtle.ConstantTimeCompare([]byte(*account.OtpCode), []byte(code)) != 1 {
		return nil, common.ErrInvalidOtp
	}

	verified := models.StatusVerified
	if _, err := s.repo.Update(ctx, account.ID, models.AccountPatch{
		Status:   &verified,
		ClearOtp: true,
	}); err != nil {
		return nil, err
	}

	return &Confirmation{Email: email, Message: common.MsgEmailVerified}, nil
}

// generateOtpCode draws each digit independently from crypto/rand, so the
// encoded length is always exactly length digits (leading zeros included).
func generateOtpCode(length int) (string, error) {
	ten := big.NewInt(10)
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
