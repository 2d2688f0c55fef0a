package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.ImageTable = (*imagesTable)(nil)

type imagesTable struct {
	backend *Backend
}

func (it *imagesTable) Get(ctx context.Context, name string) (*types.Image, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	pool, err := it.backend.conn()
	if err != nil {
		return nil, err
	}
	row := pool.QueryRow(ctx, "SELECT name, section, url, alt_text FROM images WHERE name = $1", name)
	img, err := hydrateImage(row)
	if err != nil {
		return nil, mapError(err, "getting image %s", name)
	}
	return img, nil
}

func (it *imagesTable) Fetch(ctx context.Context, section string) ([]*types.Image, error) {
	pool, err := it.backend.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT name, section, url, alt_text FROM images"
	var args []any
	if section != "" {
		query += " WHERE section = $1"
		args = append(args, section)
	}
	query += ` ORDER BY name COLLATE "C" ASC`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "fetching images")
	}
	defer rows.Close()

	results := []*types.Image{}
	for rows.Next() {
		img, err := hydrateImage(rows)
		if err != nil {
			return nil, mapError(err, "hydrating image")
		}
		results = append(results, img)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterating images")
	}
	return results, nil
}

func (it *imagesTable) Upsert(ctx context.Context, img *types.Image) error {
	if img == nil {
		return types.ErrInvalidData
	}
	if err := img.Validate(); err != nil {
		return err
	}
	pool, err := it.backend.conn()
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO images (name, section, url, alt_text) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET section = EXCLUDED.section, url = EXCLUDED.url, alt_text = EXCLUDED.alt_text`,
		img.Name, img.Section, img.URL, img.AltText,
	)
	return mapError(err, "upserting image %s", img.Name)
}

func (it *imagesTable) Delete(ctx context.Context, name string) error {
	if name == "" {
		return types.ErrInvalidName
	}
	pool, err := it.backend.conn()
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM images WHERE name = $1", name)
	if err != nil {
		return mapError(err, "deleting image %s", name)
	}
	return requireAffected(tag)
}

func hydrateImage(row pgx.Row) (*types.Image, error) {
	var img types.Image
	if err := row.Scan(&img.Name, &img.Section, &img.URL, &img.AltText); err != nil {
		return nil, err
	}
	return &img, nil
}
