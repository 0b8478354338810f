package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/skinkeeper/internal/dbx"
	"github.com/dmitrijs2005/skinkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/skinkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// services work against a *sql.DB or inside a *sql.Tx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
