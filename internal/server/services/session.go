package services

import (
	"context"
	"errors"

	"github.com/dkotenko/authflow/internal/common"
	"github.com/dkotenko/authflow/internal/cryptox"
	"github.com/dkotenko/authflow/internal/server/auth"
	"github.com/dkotenko/authflow/internal/server/config"
	"github.com/dkotenko/authflow/internal/server/models"
	"github.com/dkotenko/authflow/internal/server/repositories/accounts"
)

// SessionService finishes onboarding (VERIFIED → CREATED) and runs the
// two-token session protocol: login, rotation-on-refresh, logout. An account
// holds at most one active refresh token; persisting a new hash invalidates
// the previous one.
type SessionService struct {
	repo    accounts.Repository
	hasher  *cryptox.Hasher
	access  *auth.Signer
	refresh *auth.Signer
	locks   *KeyedMutex
}

// NewSessionService constructs a SessionService. The locks instance must be
// shared with the OtpService operating on the same store.
func NewSessionService(repo accounts.Repository, hasher *cryptox.Hasher, cfg *config.Config, locks *KeyedMutex) *SessionService {
	return &SessionService{
		repo:    repo,
		hasher:  hasher,
		access:  auth.NewSigner(cfg.AccessTokenSecret, cfg.AccessTokenValidity),
		refresh: auth.NewSigner(cfg.RefreshTokenSecret, cfg.RefreshTokenValidity),
		locks:   locks,
	}
}

// CreateAccount attaches hashed credentials to a VERIFIED account and moves
// it to the terminal CREATED state.
func (s *SessionService) CreateAccount(ctx context.Context, email, firstName, lastName, password string) (*Confirmation, error) {
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
	if err := account.Status.CanCreateAccount(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	created := models.StatusCreated
	if _, err := s.repo.Update(ctx, account.ID, models.AccountPatch{
		FirstName:    &firstName,
		LastName:     &lastName,
		PasswordHash: &hash,
		Status:       &created,
	}); err != nil {
		return nil, err
	}

	return &Confirmation{Email: email, Message: common.MsgAccountCreated}, nil
}

// ValidateCredentials checks an email/password pair and returns the account.
// Unknown email, incomplete onboarding, and wrong password all yield
// ErrInvalidCredentials without distinguishing which.
func (s *SessionService) ValidateCredentials(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if account.Status != models.StatusCreated || account.PasswordHash == "" {
		return nil, common.ErrInvalidCredentials
	}
	if !s.hasher.CheckPassword(password, account.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return account, nil
}

// Login mints a fresh access/refresh pair and persists the refresh-token
// hash, overwriting any prior session for the account.
func (s *SessionService) Login(ctx context.Context, account *models.Account) (*TokenPair, error) {
	unlock := s.locks.Lock(account.ID)
	defer unlock()

	return s.issueTokens(ctx, account)
}

// Refresh validates the presented refresh token against the stored hash and
// rotates the session: a brand-new pair is minted and persisted, making the
// presented token immediately unusable.
func (s *SessionService) Refresh(ctx context.Context, accountID, presented string) (*TokenPair, error) {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if account.RefreshTokenHash == nil {
		return nil, common.ErrInvalidRefreshToken
	}
	if !s.hasher.CheckToken(presented, *account.RefreshTokenHash) {
		return nil, common.ErrInvalidRefreshToken
	}

	return s.issueTokens(ctx, account)
}

// Logout clears the stored refresh-token hash. It is idempotent: logging out
// an already logged-out (or unknown) account succeeds.
func (s *SessionService) Logout(ctx context.Context, accountID string) error {
	unlock := s.locks.Lock(accountID)
	defer unlock()

	if _, err := s.repo.Update(ctx, accountID, models.AccountPatch{ClearRefreshToken: true}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// ValidateAccessToken verifies signature and expiry against the access-token
// secret and returns the claims carrying the request identity.
func (s *SessionService) ValidateAccessToken(token string) (*auth.Claims, error) {
	return s.access.Verify(token)
}

// ValidateRefreshToken verifies signature and expiry of a refresh token. The
// stored-hash check happens separately in Refresh.
func (s *SessionService) ValidateRefreshToken(token string) (*auth.Claims, error) {
	return s.refresh.Verify(token)
}

// GetProfile returns the account for the authenticated subject.
func (s *SessionService) GetProfile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return account, nil
}

// issueTokens signs both tokens and persists the new refresh hash in a single
// store write. Callers must hold the account lock; the rotation is atomic in
// the sense that the caller only sees success after the hash is durable.
func (s *SessionService) issueTokens(ctx context.Context, account *models.Account) (*TokenPair, error) {
	accessToken, err := s.access.Sign(account.ID, account.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refresh.Sign(account.ID, account.Email)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Update(ctx, account.ID, models.AccountPatch{RefreshTokenHash: &hash}); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
