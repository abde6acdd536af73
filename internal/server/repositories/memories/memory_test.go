package memories

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newRepo(t *testing.T) (*MemoryRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)}
	store := memstore.New()
	store.SetClock(clock.Now)
	return NewMemoryRepository(store), clock
}

func int64Ptr(v int64) *int64 { return &v }

func TestMemoryRepository_CreateDefaults(t *testing.T) {
	repo, clock := newRepo(t)

	m, err := repo.Create(context.Background(), &models.Memory{Title: "t", Content: "c", UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.Equal(t, models.VisibilityPrivate, m.Visibility)
	assert.Equal(t, clock.now, m.CreatedAt)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)

	got, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMemoryRepository_GetByIDReturnsCopy(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	m, err := repo.Create(ctx, &models.Memory{Title: "t", Content: "c", UserID: 7})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", again.Title)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ListByUser(t *testing.T) {
	repo, clock := newRepo(t)
	ctx := context.Background()

	first, _ := repo.Create(ctx, &models.Memory{Title: "a", UserID: 1, CategoryID: int64Ptr(1)})
	clock.Advance(time.Hour)
	second, _ := repo.Create(ctx, &models.Memory{Title: "b", UserID: 1})
	clock.Advance(time.Hour)
	_, _ = repo.Create(ctx, &models.Memory{Title: "c", UserID: 2, CategoryID: int64Ptr(1)})

	all, err := repo.ListByUser(ctx, 1, models.MemoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)

	byCat, err := repo.ListByUser(ctx, 1, models.MemoryFilter{CategoryID: int64Ptr(1)})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, first.ID, byCat[0].ID)

	since := first.CreatedAt.Add(30 * time.Minute)
	recent, err := repo.ListByUser(ctx, 1, models.MemoryFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, second.ID, recent[0].ID)
}

func TestMemoryRepository_ListPublicAndByCategory(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	pub, _ := repo.Create(ctx, &models.Memory{Title: "pub", UserID: 1, Visibility: models.VisibilityPublic, CategoryID: int64Ptr(2)})
	_, _ = repo.Create(ctx, &models.Memory{Title: "priv", UserID: 1, CategoryID: int64Ptr(2)})

	public, err := repo.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, pub.ID, public[0].ID)

	inCat, err := repo.ListByCategory(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, inCat, 2)

	none, err := repo.ListByCategory(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryRepository_UpdateRefreshesUpdatedAt(t *testing.T) {
	repo, clock := newRepo(t)
	ctx := context.Background()

	m, err := repo.Create(ctx, &models.Memory{Title: "t", Content: "c", UserID: 1, CategoryID: int64Ptr(1)})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	title := "new"
	var noCategory *int64
	updated, err := repo.Update(ctx, m.ID, models.MemoryPatch{Title: &title, CategoryID: &noCategory})
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "c", updated.Content, "fields absent from the patch are kept")
	assert.Nil(t, updated.CategoryID)
	assert.Equal(t, m.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(m.UpdatedAt))

	_, err = repo.Update(ctx, 99, models.MemoryPatch{Title: &title})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteAndClearCategory(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a, _ := repo.Create(ctx, &models.Memory{Title: "a", UserID: 1, CategoryID: int64Ptr(5)})
	b, _ := repo.Create(ctx, &models.Memory{Title: "b", UserID: 1, CategoryID: int64Ptr(5)})

	n, err := repo.ClearCategory(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), common.ErrorNotFound)
}
