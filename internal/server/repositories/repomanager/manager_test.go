package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/categories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/memories"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestNew_SelectsBackend(t *testing.T) {
	m, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryManager{}, m)

	db, mock := newDB(t)
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		assert.Equal(t, "postgres://x", dsn)
		return db, nil
	}
	defer func() { sqlOpen = orig }()

	m, err = New("postgres://x")
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)
	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_OpenError(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	defer func() { sqlOpen = orig }()

	m, err := New("postgres://x")
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestPostgresFactories(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(db)

	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &categories.PostgresRepository{}, m.Categories(db))
	assert.IsType(t, &memories.PostgresRepository{}, m.Memories(db))
	assert.IsType(t, &refreshtokens.PostgresRepository{}, m.RefreshTokens(db))
	assert.Equal(t, dbx.DBTX(db), m.Conn())
}

func TestPostgresWithTx(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()
	m := NewPostgresRepositoryManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		assert.NotNil(t, tx)
		return nil
	}))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := m.WithTx(context.Background(), func(ctx context.Context, tx dbx.DBTX) error {
		return errors.New("fail")
	})
	assert.EqualError(t, err, "fail")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	require.NoError(t, NewPostgresRepositoryManager(db).RunMigrations(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := NewPostgresRepositoryManager(db).RunMigrations(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestMemoryManager_SharesOneStore(t *testing.T) {
	m := NewMemoryRepositoryManager()
	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx))
	assert.Nil(t, m.Conn())

	u, err := m.Users(nil).Create(ctx, &models.User{Username: "ann", Email: "ann@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	c, err := m.Categories(nil).Create(ctx, &models.Category{Name: "Mine", UserID: &u.ID})
	require.NoError(t, err)

	_, err = m.Memories(nil).Create(ctx, &models.Memory{Title: "t", Content: "c", UserID: u.ID, CategoryID: &c.ID})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return m.Users(tx).Delete(ctx, u.ID)
	})
	require.NoError(t, err)

	list, err := m.Memories(nil).ListByUser(ctx, u.ID, models.MemoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "user deletion cascades to memories")

	_, err = m.Categories(nil).GetByID(ctx, c.ID)
	require.Error(t, err)
	require.NoError(t, m.Close())
}
