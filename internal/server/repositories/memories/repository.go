// Package memories declares the memory repository contract and its in-memory
// and PostgreSQL implementations.
package memories

import (
	"context"

	"github.com/dmitrijs2005/memoir/internal/server/models"
)

// Repository stores memories. Listings are ordered newest first.
type Repository interface {
	Create(ctx context.Context, memory *models.Memory) (*models.Memory, error)
	GetByID(ctx context.Context, id int64) (*models.Memory, error)
	ListByUser(ctx context.Context, userID int64, filter models.MemoryFilter) ([]*models.Memory, error)
	ListPublic(ctx context.Context) ([]*models.Memory, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*models.Memory, error)

	// Update merges patch into the stored memory and refreshes UpdatedAt.
	Update(ctx context.Context, id int64, patch models.MemoryPatch) (*models.Memory, error)
	Delete(ctx context.Context, id int64) error

	// ClearCategory unsets the category on every memory referencing it.
	ClearCategory(ctx context.Context, categoryID int64) (int64, error)
}
