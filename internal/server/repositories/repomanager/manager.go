// Package repomanager vends repositories for the configured storage backend
// and runs multi-step operations transactionally.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/categories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a DBTX. Pass Conn() for standalone
// calls or the handle given to a WithTx callback for transactional ones.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Memories(db dbx.DBTX) memories.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	Close() error
}

// New returns the PostgreSQL manager when dsn is set and the in-memory one
// otherwise.
func New(dsn string) (RepositoryManager, error) {
	if dsn == "" {
		return NewMemoryRepositoryManager(), nil
	}
	m, err := OpenPostgresRepositoryManager(dsn)
	if err != nil {
		return nil, err
	}
	return m, nil
}
