package categories

import (
	"context"
	"sort"

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

// Create stores a user category. IsDefault is forced off: defaults only come
// from seeding.
func (r *MemoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	var created models.Category

	_ = r.store.Write(func(tx *memstore.Tx) error {
		created = *category
		created.ID = tx.NextCategoryID()
		created.IsDefault = false
		created.CreatedAt = tx.Now()

		stored := created
		tx.Categories()[created.ID] = &stored
		return nil
	})

	return &created, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var found *models.Category

	r.store.Read(func(tx *memstore.Tx) {
		if c, ok := tx.Categories()[id]; ok {
			cp := *c
			found = &cp
		}
	})

	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Category, error) {
	var defaults, own []*models.Category

	r.store.Read(func(tx *memstore.Tx) {
		for _, c := range tx.Categories() {
			cp := *c
			switch {
			case c.IsDefault:
				defaults = append(defaults, &cp)
			case c.OwnedBy(userID):
				own = append(own, &cp)
			}
		}
	})

	byID := func(s []*models.Category) {
		sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	}
	byID(defaults)
	byID(own)

	result := make([]*models.Category, 0, len(defaults)+len(own))
	result = append(result, defaults...)
	return append(result, own...), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	var updated models.Category

	err := r.store.Write(func(tx *memstore.Tx) error {
		c, ok := tx.Categories()[id]
		if !ok {
			return common.ErrorNotFound
		}
		if c.IsDefault {
			return common.ErrorDefaultCategory
		}

		patch.Apply(c)
		updated = *c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Write(func(tx *memstore.Tx) error {
		c, ok := tx.Categories()[id]
		if !ok {
			return common.ErrorNotFound
		}
		if c.IsDefault {
			return common.ErrorDefaultCategory
		}

		// no foreign keys here, so do what ON DELETE SET NULL does in SQL
		tx.ClearCategory(id)
		delete(tx.Categories(), id)
		return nil
	})
}
