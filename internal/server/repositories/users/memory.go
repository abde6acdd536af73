package users

import (
	"context"
	"sort"
	"strings"

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

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var created models.User

	err := r.store.Write(func(tx *memstore.Tx) error {
		for _, u := range tx.Users() {
			if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
				return common.ErrorAlreadyExists
			}
		}

		created = *user
		created.ID = tx.NextUserID()
		created.CreatedAt = tx.Now()
		if created.Role == "" {
			created.Role = models.RoleUser
		}

		stored := created
		tx.Users()[created.ID] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *MemoryRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.VerificationToken != nil && *u.VerificationToken == token })
}

func (r *MemoryRepository) find(match func(u *models.User) bool) (*models.User, error) {
	var found *models.User

	r.store.Read(func(tx *memstore.Tx) {
		for _, u := range tx.Users() {
			if match(u) {
				c := *u
				found = &c
				return
			}
		}
	})

	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	result := make([]*models.User, 0)

	r.store.Read(func(tx *memstore.Tx) {
		for _, u := range tx.Users() {
			c := *u
			result = append(result, &c)
		}
	})

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var updated models.User

	err := r.store.Write(func(tx *memstore.Tx) error {
		u, ok := tx.Users()[id]
		if !ok {
			return common.ErrorNotFound
		}

		if patch.Email != nil {
			for _, other := range tx.Users() {
				if other.ID != id && strings.EqualFold(other.Email, *patch.Email) {
					return common.ErrorAlreadyExists
				}
			}
		}

		patch.Apply(u)
		updated = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Write(func(tx *memstore.Tx) error {
		if _, ok := tx.Users()[id]; !ok {
			return common.ErrorNotFound
		}

		for cid, c := range tx.Categories() {
			if c.OwnedBy(id) {
				tx.ClearCategory(cid)
				delete(tx.Categories(), cid)
			}
		}
		for mid, m := range tx.Memories() {
			if m.UserID == id {
				delete(tx.Memories(), mid)
			}
		}
		for token, rt := range tx.RefreshTokens() {
			if rt.UserID == id {
				delete(tx.RefreshTokens(), token)
			}
		}

		delete(tx.Users(), id)
		return nil
	})
}
