package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/authflow/internal/common"
	"github.com/dkotenko/authflow/internal/server/models"
)

// MemoryRepository is an in-memory Account Store with the same semantics as
// the Postgres one. It backs service tests and local development without a
// database. All methods return copies, never the stored struct itself.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Account
	byEmail map[string]string
}

// NewMemoryRepository constructs an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneAccount(account)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = models.StatusPending
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID

	return cloneAccount(stored), nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneAccount(r.byID[id]), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneAccount(account), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch models.AccountPatch) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	patch.Apply(account)
	account.UpdatedAt = time.Now()

	return cloneAccount(account), nil
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	if a.OtpCode != nil {
		code := *a.OtpCode
		c.OtpCode = &code
	}
	if a.OtpExpiry != nil {
		expiry := *a.OtpExpiry
		c.OtpExpiry = &expiry
	}
	if a.RefreshTokenHash != nil {
		hash := *a.RefreshTokenHash
		c.RefreshTokenHash = &hash
	}
	return &c
}
