package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/access"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/categories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
)

// CategoryInput is a category creation request. The owner is the acting user
// and IsDefault is always false.
type CategoryInput struct {
	Name        string
	Description *string
}

type CategoryService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: m.Conn(), repomanager: m}
}

// ListMine returns every default category followed by the actor's own.
func (s *CategoryService) ListMine(ctx context.Context, actor *access.Actor) ([]*models.Category, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.repomanager.Categories(s.db).ListForUser(ctx, actor.UserID)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.repomanager.Categories(s.db).GetByID(ctx, id)
}

// Create stores a category owned by the actor.
func (s *CategoryService) Create(ctx context.Context, actor *access.Actor, in CategoryInput) (*models.Category, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	ownerID := actor.UserID
	return s.repomanager.Categories(s.db).Create(ctx, &models.Category{
		Name:        in.Name,
		Description: in.Description,
		UserID:      &ownerID,
	})
}

// Editable loads the category and checks the actor may change it, so callers
// can reject a request before looking at its body.
func (s *CategoryService) Editable(ctx context.Context, actor *access.Actor, id int64) (*models.Category, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	c, err := s.repomanager.Categories(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModifyCategory(actor, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, actor *access.Actor, id int64, patch models.CategoryPatch) (*models.Category, error) {
	if _, err := s.Editable(ctx, actor, id); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", common.ErrorValidation)
	}

	return s.repomanager.Categories(s.db).Update(ctx, id, patch)
}

// Delete detaches the category's memories and removes it in one transaction.
func (s *CategoryService) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if _, err := s.Editable(ctx, actor, id); err != nil {
		return err
	}

	return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Memories(tx).ClearCategory(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Categories(tx).Delete(ctx, id)
	})
}

// resolveCategory loads the category a memory owned by ownerID wants to
// reference and checks it may be used.
func resolveCategory(ctx context.Context, repo categories.Repository, id int64, ownerID int64) error {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return access.CanUseCategory(nil, ownerID)
		}
		return err
	}
	return access.CanUseCategory(c, ownerID)
}
