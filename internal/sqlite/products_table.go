package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.ProductTable = (*productsTable)(nil)

type productsTable struct {
	backend *Backend
}

const productColumns = "product_id, name, description, price_cents, weight, category_id, image_url, created_at, updated_at"

// Get retrieves a product by ID.
func (pt *productsTable) Get(ctx context.Context, id string) (*types.Product, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE product_id = ?", id)
	p, err := hydrateProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}
	return p, nil
}

// Set creates the product when id is empty, generating a UUID v7, and
// otherwise writes the product under id, keeping its original created_at.
func (pt *productsTable) Set(ctx context.Context, id string, p *types.Product) (string, error) {
	if p == nil {
		return "", types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	now := pt.backend.now().UTC()
	if id == "" {
		id = generateID()
		p.CreatedAt = now
	}
	p.ProductID = id
	p.UpdatedAt = now

	err := pt.backend.mutate(ctx, tableProducts, func(tx *sql.Tx) error {
		var created string
		err := tx.QueryRowContext(ctx, "SELECT created_at FROM products WHERE product_id = ?", id).Scan(&created)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				id, p.Name, p.Description, p.Price.Cents(), p.Weight, p.CategoryID, p.ImageURL,
				formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
			)
		case err != nil:
			return fmt.Errorf("checking product existence: %w", err)
		default:
			p.CreatedAt = parseTime(created)
			_, err = tx.ExecContext(ctx,
				`UPDATE products SET name = ?, description = ?, price_cents = ?, weight = ?, category_id = ?,
				 image_url = ?, updated_at = ? WHERE product_id = ?`,
				p.Name, p.Description, p.Price.Cents(), p.Weight, p.CategoryID, p.ImageURL,
				formatTime(p.UpdatedAt), id,
			)
		}
		if err != nil {
			return fmt.Errorf("persisting product: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a product by ID.
func (pt *productsTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return pt.backend.mutate(ctx, tableProducts, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM products WHERE product_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting product: %w", err)
		}
		return requireAffected(res)
	})
}

// Fetch returns products matching the filter ordered by product_id ASC.
func (pt *productsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	var conditions []string
	var args []any

	if v, ok := filter["category_id"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, "category_id = ?")
		args = append(args, s)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY product_id ASC"

	limitSQL, err := limitClause(filter)
	if err != nil {
		return nil, err
	}
	query += limitSQL

	db, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	defer rows.Close()

	results := []*types.Product{}
	for rows.Next() {
		p, err := hydrateProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating product: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return results, nil
}

func hydrateProduct(s scanner) (*types.Product, error) {
	var p types.Product
	var cents int64
	var created, updated string
	if err := s.Scan(&p.ProductID, &p.Name, &p.Description, &cents, &p.Weight, &p.CategoryID, &p.ImageURL, &created, &updated); err != nil {
		return nil, err
	}
	p.Price = types.Price(cents)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

// limitClause renders the optional "limit" filter key.
func limitClause(filter types.Filter) (string, error) {
	v, ok := filter["limit"]
	if !ok {
		return "", nil
	}
	limit, ok := v.(int)
	if !ok {
		return "", types.ErrInvalidFilter
	}
	if limit <= 0 {
		return "", nil
	}
	return fmt.Sprintf(" LIMIT %d", limit), nil
}
