package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/categories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memstore"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in one memstore.Store for the
// lifetime of the process. The db arguments are ignored.
type MemoryRepositoryManager struct {
	// txMu serializes WithTx callbacks. It is separate from the store lock
	// because the callbacks call back into the repositories.
	txMu  sync.Mutex
	store *memstore.Store

	users         *users.MemoryRepository
	categories    *categories.MemoryRepository
	memories      *memories.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return NewMemoryRepositoryManagerWithStore(memstore.New())
}

func NewMemoryRepositoryManagerWithStore(store *memstore.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		store:         store,
		users:         users.NewMemoryRepository(store),
		categories:    categories.NewMemoryRepository(store),
		memories:      memories.NewMemoryRepository(store),
		refreshTokens: refreshtokens.NewMemoryRepository(store),
	}
}

func (m *MemoryRepositoryManager) Store() *memstore.Store {
	return m.store
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

// WithTx runs fn while no other WithTx callback runs. There is no rollback:
// writes made before fn fails stay applied.
func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Categories(dbx.DBTX) categories.Repository {
	return m.categories
}

func (m *MemoryRepositoryManager) Memories(dbx.DBTX) memories.Repository {
	return m.memories
}

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
