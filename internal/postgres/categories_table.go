package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.CategoryTable = (*categoriesTable)(nil)

type categoriesTable struct {
	backend *Backend
}

func (ct *categoriesTable) Get(ctx context.Context, id string) (*types.Category, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	row := pool.QueryRow(ctx, "SELECT category_id, name FROM categories WHERE category_id = $1", id)
	c, err := hydrateCategory(row)
	if err != nil {
		return nil, mapError(err, "getting category %s", id)
	}
	return c, nil
}

// Set upserts the category. The UNIQUE constraint on name surfaces as
// ErrDuplicateName.
func (ct *categoriesTable) Set(ctx context.Context, id string, c *types.Category) (string, error) {
	if c == nil {
		return "", types.ErrInvalidData
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return "", err
	}
	if id == "" {
		id = generateID()
	}
	c.CategoryID = id

	_, err = pool.Exec(ctx,
		`INSERT INTO categories (category_id, name) VALUES ($1, $2)
		 ON CONFLICT (category_id) DO UPDATE SET name = EXCLUDED.name`,
		id, c.Name,
	)
	if err != nil {
		return "", mapError(err, "persisting category")
	}
	return id, nil
}

// Delete removes the category only; products keep their category_id.
func (ct *categoriesTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM categories WHERE category_id = $1", id)
	if err != nil {
		return mapError(err, "deleting category")
	}
	return requireAffected(tag)
}

func (ct *categoriesTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Category, error) {
	query := "SELECT category_id, name FROM categories"
	var args []any
	if v, ok := filter["name"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE name = $1"
		args = append(args, s)
	}
	query += ` ORDER BY name COLLATE "C" ASC`

	pool, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "fetching categories")
	}
	defer rows.Close()

	results := []*types.Category{}
	for rows.Next() {
		c, err := hydrateCategory(rows)
		if err != nil {
			return nil, mapError(err, "hydrating category")
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterating categories")
	}
	return results, nil
}

func hydrateCategory(row pgx.Row) (*types.Category, error) {
	var c types.Category
	if err := row.Scan(&c.CategoryID, &c.Name); err != nil {
		return nil, err
	}
	return &c, nil
}
