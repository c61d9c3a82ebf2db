// Package repomanager wires repositories to a database handle and runs
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkotenko/authflow/internal/dbx"
	"github.com/dkotenko/authflow/internal/server/repositories/accounts"
)

// RepositoryManager hands out repositories bound to a DBTX (plain handle or
// transaction) and knows how to migrate the schema.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
