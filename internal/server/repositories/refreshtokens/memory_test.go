package refreshtokens

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	now := time.Date(2024, time.February, 2, 8, 0, 0, 0, time.UTC)
	store := memstore.New()
	store.SetClock(func() time.Time { return now })
	repo := NewMemoryRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, 4, "tok", time.Hour))
	assert.ErrorIs(t, repo.Create(ctx, 4, "tok", time.Hour), common.ErrorAlreadyExists)

	got, err := repo.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.UserID)
	assert.Equal(t, now.Add(time.Hour), got.Expires)

	require.NoError(t, repo.Delete(ctx, "tok"))
	require.NoError(t, repo.Delete(ctx, "tok"), "delete is idempotent")

	_, err = repo.Find(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
