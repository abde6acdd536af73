// Package categories declares the category repository contract and its
// in-memory and PostgreSQL implementations.
package categories

import (
	"context"

	"github.com/dmitrijs2005/memoir/internal/server/models"
)

// Repository stores categories. Default categories are seeded by the
// implementation and refused by Update and Delete with
// common.ErrorDefaultCategory.
type Repository interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)

	// ListForUser returns every default category followed by userID's own
	// categories, each group in id order.
	ListForUser(ctx context.Context, userID int64) ([]*models.Category, error)

	Update(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error)

	// Delete removes the category. Memories that pointed at it keep existing
	// with no category; callers clear them first with
	// memories.Repository.ClearCategory in the same transaction.
	Delete(ctx context.Context, id int64) error
}
