package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.CategoryTable = (*categoriesTable)(nil)

type categoriesTable struct {
	backend *Backend
}

// Get retrieves a category by ID.
func (ct *categoriesTable) Get(ctx context.Context, id string) (*types.Category, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT category_id, name FROM categories WHERE category_id = ?", id)
	cat, err := hydrateCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return cat, nil
}

// Set persists a category. If id is empty, generates a UUID v7 and creates
// the category; otherwise writes it under id. Names are unique.
func (ct *categoriesTable) Set(ctx context.Context, id string, cat *types.Category) (string, error) {
	if cat == nil {
		return "", types.ErrInvalidData
	}
	if err := cat.Validate(); err != nil {
		return "", err
	}
	if id == "" {
		id = generateID()
	}
	cat.CategoryID = id

	err := ct.backend.mutate(ctx, tableCategories, func(tx *sql.Tx) error {
		var dupID string
		err := tx.QueryRowContext(ctx,
			"SELECT category_id FROM categories WHERE name = ? AND category_id != ?",
			cat.Name, id,
		).Scan(&dupID)
		if err == nil {
			return types.ErrDuplicateName
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking category name uniqueness: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories (category_id, name) VALUES (?, ?)
			 ON CONFLICT (category_id) DO UPDATE SET name = excluded.name`,
			id, cat.Name,
		)
		if err != nil {
			return fmt.Errorf("persisting category: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a category by ID. Products referencing it are left as is.
func (ct *categoriesTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ct.backend.mutate(ctx, tableCategories, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE category_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting category: %w", err)
		}
		return requireAffected(res)
	})
}

// Fetch queries categories matching the filter, ordered by name ASC.
func (ct *categoriesTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Category, error) {
	query := "SELECT category_id, name FROM categories"
	var args []any
	if v, ok := filter["name"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE name = ?"
		args = append(args, s)
	}
	query += " ORDER BY name ASC"

	db, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	defer rows.Close()

	results := []*types.Category{}
	for rows.Next() {
		cat, err := hydrateCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating category: %w", err)
		}
		results = append(results, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return results, nil
}

func hydrateCategory(s scanner) (*types.Category, error) {
	var c types.Category
	if err := s.Scan(&c.CategoryID, &c.Name); err != nil {
		return nil, err
	}
	return &c, nil
}
