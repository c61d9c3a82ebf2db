// Package accounts provides a PostgreSQL-backed Account Store used by the
// onboarding and session flows.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dkotenko/authflow/internal/common"
	"github.com/dkotenko/authflow/internal/dbx"
	"github.com/dkotenko/authflow/internal/server/models"
)

const accountColumns = `id, email, first_name, last_name, password_hash,
	       otp_code, otp_expiry, refresh_token_hash, status, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account. The ID is generated here; status defaults to
// PENDING unless the caller set one.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Status == "" {
		account.Status = models.StatusPending
	}

	query := `
		INSERT INTO accounts (id, email, first_name, last_name, password_hash, otp_code, otp_expiry, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.FirstName, account.LastName,
		account.PasswordHash, account.OtpCode, account.OtpExpiry, account.Status,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// FindByEmail returns the account with the given normalized email,
// or common.ErrNotFound.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// FindByID returns the account with the given ID, or common.ErrNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// Update applies the patch as a single UPDATE so concurrent writers never see
// a half-applied change. Unset patch fields are not mentioned in the SET list.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error) {
	sets := []string{"updated_at = now()"}
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.PasswordHash != nil {
		set("password_hash", *patch.PasswordHash)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.ClearOtp {
		sets = append(sets, "otp_code = NULL", "otp_expiry = NULL")
	} else if patch.OtpCode != nil {
		set("otp_code", *patch.OtpCode)
		set("otp_expiry", patch.OtpExpiry)
	}
	if patch.ClearRefreshToken {
		sets = append(sets, "refresh_token_hash = NULL")
	} else if patch.RefreshTokenHash != nil {
		set("refresh_token_hash", *patch.RefreshTokenHash)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE accounts SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), accountColumns,
	)

	return r.scanAccount(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.FirstName, &account.LastName,
		&account.PasswordHash, &account.OtpCode, &account.OtpExpiry,
		&account.RefreshTokenHash, &account.Status,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}
