// Package accounts declares the Account Store contract: lookups by natural
// and surrogate key, creation, and partial updates that never clobber
// unspecified fields.
package accounts

import (
	"context"

	"github.com/dkotenko/authflow/internal/server/models"
)

// Repository is the persistence boundary for accounts. Implementations must
// return common.ErrNotFound when a lookup or update misses.
type Repository interface {
	// Create inserts a new account and returns it with its generated ID and
	// timestamps populated.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByEmail returns the account with the given normalized email.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByID returns the account with the given ID.
	FindByID(ctx context.Context, id string) (*models.Account, error)

	// Update applies the patch to the account and returns the updated row.
	// Fields the patch leaves nil keep their stored values.
	Update(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error)
}
