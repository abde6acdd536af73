package memories

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

func (r *MemoryRepository) Create(ctx context.Context, memory *models.Memory) (*models.Memory, error) {
	var created models.Memory

	_ = r.store.Write(func(tx *memstore.Tx) error {
		created = *memory
		created.ID = tx.NextMemoryID()
		if created.Visibility == "" {
			created.Visibility = models.VisibilityPrivate
		}
		created.CreatedAt = tx.Now()
		created.UpdatedAt = created.CreatedAt

		stored := created
		tx.Memories()[created.ID] = &stored
		return nil
	})

	return &created, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.Memory, error) {
	var found *models.Memory

	r.store.Read(func(tx *memstore.Tx) {
		if m, ok := tx.Memories()[id]; ok {
			cp := *m
			found = &cp
		}
	})

	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) list(match func(m *models.Memory) bool) []*models.Memory {
	result := make([]*models.Memory, 0)

	r.store.Read(func(tx *memstore.Tx) {
		for _, m := range tx.Memories() {
			if match(m) {
				cp := *m
				result = append(result, &cp)
			}
		}
	})

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID int64, filter models.MemoryFilter) ([]*models.Memory, error) {
	return r.list(func(m *models.Memory) bool {
		return m.UserID == userID && filter.Matches(m)
	}), nil
}

func (r *MemoryRepository) ListPublic(ctx context.Context) ([]*models.Memory, error) {
	return r.list(func(m *models.Memory) bool { return m.IsPublic() }), nil
}

func (r *MemoryRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Memory, error) {
	return r.list(func(m *models.Memory) bool {
		return m.CategoryID != nil && *m.CategoryID == categoryID
	}), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, patch models.MemoryPatch) (*models.Memory, error) {
	var updated models.Memory

	err := r.store.Write(func(tx *memstore.Tx) error {
		m, ok := tx.Memories()[id]
		if !ok {
			return common.ErrorNotFound
		}

		patch.Apply(m)
		m.UpdatedAt = tx.Now()
		updated = *m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Write(func(tx *memstore.Tx) error {
		if _, ok := tx.Memories()[id]; !ok {
			return common.ErrorNotFound
		}
		delete(tx.Memories(), id)
		return nil
	})
}

func (r *MemoryRepository) ClearCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	_ = r.store.Write(func(tx *memstore.Tx) error {
		n = tx.ClearCategory(categoryID)
		return nil
	})
	return n, nil
}
