package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memstore"
)

type MemoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) *MemoryRepository {
	return &MemoryRepository{store: store}
}

func (r *MemoryRepository) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	return r.store.Write(func(tx *memstore.Tx) error {
		if _, ok := tx.RefreshTokens()[token]; ok {
			return common.ErrorAlreadyExists
		}

		now := tx.Now()
		tx.RefreshTokens()[token] = &models.RefreshToken{
			ID:        tx.NextTokenID(),
			UserID:    userID,
			Token:     token,
			Expires:   now.Add(validity),
			CreatedAt: now,
		}
		return nil
	})
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	var found *models.RefreshToken

	r.store.Read(func(tx *memstore.Tx) {
		if t, ok := tx.RefreshTokens()[token]; ok {
			cp := *t
			found = &cp
		}
	})

	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	return r.store.Write(func(tx *memstore.Tx) error {
		delete(tx.RefreshTokens(), token)
		return nil
	})
}
