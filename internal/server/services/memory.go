package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/access"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/memoir/internal/timex"
)

// MemoryInput is a memory creation request. The owner is always the actor.
type MemoryInput struct {
	Title      string
	Content    string
	ImageURL   *string
	CategoryID *int64
	Visibility models.Visibility
}

// MemoryQuery narrows ListMine. Since accepts RFC 3339, a plain date or a
// phrase such as "last week".
type MemoryQuery struct {
	CategoryID *int64
	Since      string
}

type MemoryService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	since       *timex.SinceParser
	now         func() time.Time
}

func NewMemoryService(m repomanager.RepositoryManager) *MemoryService {
	return &MemoryService{
		db:          m.Conn(),
		repomanager: m,
		since:       timex.NewSinceParser(),
		now:         time.Now,
	}
}

func (s *MemoryService) ListMine(ctx context.Context, actor *access.Actor, q MemoryQuery) ([]*models.Memory, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	filter := models.MemoryFilter{CategoryID: q.CategoryID}
	if strings.TrimSpace(q.Since) != "" {
		t, err := s.since.Parse(q.Since, s.now())
		if err != nil {
			return nil, fmt.Errorf("%w: since: %v", common.ErrorValidation, err)
		}
		filter.Since = &t
	}

	return s.repomanager.Memories(s.db).ListByUser(ctx, actor.UserID, filter)
}

func (s *MemoryService) ListPublic(ctx context.Context) ([]*models.Memory, error) {
	return s.repomanager.Memories(s.db).ListPublic(ctx)
}

// Get looks the memory up first and then applies the visibility rule, so
// missing ids are 404 for everyone.
func (s *MemoryService) Get(ctx context.Context, actor *access.Actor, id int64) (*models.Memory, error) {
	m, err := s.repomanager.Memories(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadMemory(actor, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MemoryService) Create(ctx context.Context, actor *access.Actor, in MemoryInput) (*models.Memory, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := validateMemory(in.Title, in.Content, in.Visibility); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := resolveCategory(ctx, s.repomanager.Categories(s.db), *in.CategoryID, actor.UserID); err != nil {
			return nil, err
		}
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	return s.repomanager.Memories(s.db).Create(ctx, &models.Memory{
		Title:      in.Title,
		Content:    in.Content,
		ImageURL:   in.ImageURL,
		UserID:     actor.UserID,
		CategoryID: in.CategoryID,
		Visibility: visibility,
	})
}

// Editable loads the memory and checks the actor may change it: 401, then
// 404, then 403.
func (s *MemoryService) Editable(ctx context.Context, actor *access.Actor, id int64) (*models.Memory, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	m, err := s.repomanager.Memories(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanModifyMemory(actor, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update merges patch into the memory. A category being set must be usable by
// the memory's owner, which differs from the actor when an admin edits.
func (s *MemoryService) Update(ctx context.Context, actor *access.Actor, id int64, patch models.MemoryPatch) (*models.Memory, error) {
	m, err := s.Editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	title, content, visibility := m.Title, m.Content, m.Visibility
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Content != nil {
		content = *patch.Content
	}
	if patch.Visibility != nil {
		visibility = *patch.Visibility
	}
	if err := validateMemory(title, content, visibility); err != nil {
		return nil, err
	}

	if patch.CategoryID != nil && *patch.CategoryID != nil {
		if err := resolveCategory(ctx, s.repomanager.Categories(s.db), **patch.CategoryID, m.UserID); err != nil {
			return nil, err
		}
	}

	return s.repomanager.Memories(s.db).Update(ctx, id, patch)
}

func (s *MemoryService) Delete(ctx context.Context, actor *access.Actor, id int64) error {
	if _, err := s.Editable(ctx, actor, id); err != nil {
		return err
	}
	return s.repomanager.Memories(s.db).Delete(ctx, id)
}

func validateMemory(title, content string, visibility models.Visibility) error {
	switch {
	case strings.TrimSpace(title) == "":
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("%w: content is required", common.ErrorValidation)
	case visibility != "" && !visibility.Valid():
		return fmt.Errorf("%w: visibility must be one of public, private", common.ErrorValidation)
	}
	return nil
}
