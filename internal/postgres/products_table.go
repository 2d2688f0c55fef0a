package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.ProductTable = (*productsTable)(nil)

type productsTable struct {
	backend *Backend
}

const productColumns = "product_id, name, description, price_cents, weight, category_id, image_url, created_at, updated_at"

func (pt *productsTable) Get(ctx context.Context, id string) (*types.Product, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	pool, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	row := pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE product_id = $1", id)
	p, err := hydrateProduct(row)
	if err != nil {
		return nil, mapError(err, "getting product %s", id)
	}
	return p, nil
}

// Set upserts the product in one statement. created_at is only written on
// insert; the stored value is returned into p.
func (pt *productsTable) Set(ctx context.Context, id string, p *types.Product) (string, error) {
	if p == nil {
		return "", types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	pool, err := pt.backend.conn()
	if err != nil {
		return "", err
	}

	now := pt.backend.timestamp()
	if id == "" {
		id = generateID()
	}
	p.ProductID = id
	p.UpdatedAt = now

	var created time.Time
	err = pool.QueryRow(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 ON CONFLICT (product_id) DO UPDATE SET
		   name = EXCLUDED.name, description = EXCLUDED.description, price_cents = EXCLUDED.price_cents,
		   weight = EXCLUDED.weight, category_id = EXCLUDED.category_id, image_url = EXCLUDED.image_url,
		   updated_at = EXCLUDED.updated_at
		 RETURNING created_at`,
		id, p.Name, p.Description, p.Price.Cents(), p.Weight, p.CategoryID, p.ImageURL, now,
	).Scan(&created)
	if err != nil {
		return "", mapError(err, "persisting product")
	}
	p.CreatedAt = created.UTC()
	return id, nil
}

func (pt *productsTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	pool, err := pt.backend.conn()
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM products WHERE product_id = $1", id)
	if err != nil {
		return mapError(err, "deleting product")
	}
	return requireAffected(tag)
}

// Fetch returns products ordered by product_id. Byte order keeps UUID v7
// ids in creation order regardless of the database collation.
func (pt *productsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	var args []any
	if v, ok := filter["category_id"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		args = append(args, s)
		query += " WHERE category_id = $1"
	}
	query += ` ORDER BY product_id COLLATE "C" ASC`

	limitSQL, args, err := limitClause(filter, args)
	if err != nil {
		return nil, err
	}
	query += limitSQL

	pool, err := pt.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "fetching products")
	}
	defer rows.Close()

	results := []*types.Product{}
	for rows.Next() {
		p, err := hydrateProduct(rows)
		if err != nil {
			return nil, mapError(err, "hydrating product")
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterating products")
	}
	return results, nil
}

func hydrateProduct(row pgx.Row) (*types.Product, error) {
	var p types.Product
	var cents int64
	var created, updated time.Time
	if err := row.Scan(&p.ProductID, &p.Name, &p.Description, &cents, &p.Weight, &p.CategoryID, &p.ImageURL, &created, &updated); err != nil {
		return nil, err
	}
	p.Price = types.Price(cents)
	p.CreatedAt = created.UTC()
	p.UpdatedAt = updated.UTC()
	return &p, nil
}

// limitClause appends the optional "limit" filter as the next positional
// parameter.
func limitClause(filter types.Filter, args []any) (string, []any, error) {
	v, ok := filter["limit"]
	if !ok {
		return "", args, nil
	}
	limit, ok := v.(int)
	if !ok {
		return "", args, types.ErrInvalidFilter
	}
	if limit <= 0 {
		return "", args, nil
	}
	args = append(args, limit)
	return fmt.Sprintf(" LIMIT $%d", len(args)), args, nil
}
