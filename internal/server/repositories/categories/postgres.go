package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/models"
)

const categoryColumns = `id, name, description, user_id, is_default, created_at`

// PostgresRepository stores categories in PostgreSQL. Memories still
// referencing a deleted category are cleared by ON DELETE SET NULL.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	c := &models.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.UserID, &c.IsDefault, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (name, description, user_id, is_default)
		 VALUES ($1, $2, $3, FALSE)
		 RETURNING id, created_at
		 `

	created := *category
	created.IsDefault = false

	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description, category.UserID).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Category, error) {
	query :=
		`SELECT ` + categoryColumns + ` FROM categories
		 WHERE is_default OR user_id = $1
		 ORDER BY is_default DESC, id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.CategoryPatch) (*models.Category, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDefault {
		return nil, common.ErrorDefaultCategory
	}

	patch.Apply(c)

	query :=
		`UPDATE categories SET name = $2, description = $3
		 WHERE id = $1 AND NOT is_default
		 `

	res, err := r.db.ExecContext(ctx, query, id, c.Name, c.Description)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return common.ErrorDefaultCategory
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND NOT is_default`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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
