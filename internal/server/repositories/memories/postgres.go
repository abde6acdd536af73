package memories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/models"
)

const memoryColumns = `id, title, content, image_url, user_id, category_id, visibility, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*models.Memory, error) {
	m := &models.Memory{}
	err := row.Scan(&m.ID, &m.Title, &m.Content, &m.ImageURL, &m.UserID, &m.CategoryID, &m.Visibility,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, memory *models.Memory) (*models.Memory, error) {
	query :=
		`INSERT INTO memories (title, content, image_url, user_id, category_id, visibility)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at
		 `

	created := *memory
	if created.Visibility == "" {
		created.Visibility = models.VisibilityPrivate
	}

	err := r.db.QueryRowContext(ctx, query, created.Title, created.Content, created.ImageURL,
		created.UserID, created.CategoryID, created.Visibility).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE id = $1`

	m, err := scanMemory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) selectMany(ctx context.Context, where string, args ...any) ([]*models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE ` + where + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select memories: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Memory, 0)
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, filter models.MemoryFilter) ([]*models.Memory, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, "category_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}

	return r.selectMany(ctx, strings.Join(conds, " AND "), args...)
}

func (r *PostgresRepository) ListPublic(ctx context.Context) ([]*models.Memory, error) {
	return r.selectMany(ctx, "visibility = $1", models.VisibilityPublic)
}

func (r *PostgresRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*models.Memory, error) {
	return r.selectMany(ctx, "category_id = $1", categoryID)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.MemoryPatch) (*models.Memory, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(m)

	query :=
		`UPDATE memories
		 SET title = $2, content = $3, image_url = $4, category_id = $5, visibility = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err = r.db.QueryRowContext(ctx, query, id, m.Title, m.Content, m.ImageURL, m.CategoryID, m.Visibility).
		Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ClearCategory(ctx context.Context, categoryID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memories SET category_id = NULL, updated_at = now() WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
