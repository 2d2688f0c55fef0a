package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.ImageTable = (*imagesTable)(nil)

type imagesTable struct {
	backend *Backend
}

// Get retrieves an image row by its object name.
func (it *imagesTable) Get(ctx context.Context, name string) (*types.Image, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	db, err := it.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT name, section, url, alt_text FROM images WHERE name = ?", name)
	img, err := hydrateImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image %s: %w", name, err)
	}
	return img, nil
}

// Fetch returns images ordered by name, optionally scoped to a section.
func (it *imagesTable) Fetch(ctx context.Context, section string) ([]*types.Image, error) {
	db, err := it.backend.conn()
	if err != nil {
		return nil, err
	}

	query := "SELECT name, section, url, alt_text FROM images"
	var args []any
	if section != "" {
		query += " WHERE section = ?"
		args = append(args, section)
	}
	query += " ORDER BY name ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching images: %w", err)
	}
	defer rows.Close()

	results := []*types.Image{}
	for rows.Next() {
		img, err := hydrateImage(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating image: %w", err)
		}
		results = append(results, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}
	return results, nil
}

// Upsert inserts the row or overwrites the row with the same name.
func (it *imagesTable) Upsert(ctx context.Context, img *types.Image) error {
	if img == nil {
		return types.ErrInvalidData
	}
	if err := img.Validate(); err != nil {
		return err
	}
	return it.backend.mutate(ctx, tableImages, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO images (name, section, url, alt_text) VALUES (?, ?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET section = excluded.section, url = excluded.url, alt_text = excluded.alt_text`,
			img.Name, img.Section, img.URL, img.AltText,
		)
		if err != nil {
			return fmt.Errorf("persisting image %s: %w", img.Name, err)
		}
		return nil
	})
}

// Delete removes the row with the given name.
func (it *imagesTable) Delete(ctx context.Context, name string) error {
	if name == "" {
		return types.ErrInvalidName
	}
	return it.backend.mutate(ctx, tableImages, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM images WHERE name = ?", name)
		if err != nil {
			return fmt.Errorf("deleting image %s: %w", name, err)
		}
		return requireAffected(res)
	})
}

func hydrateImage(s scanner) (*types.Image, error) {
	var img types.Image
	if err := s.Scan(&img.Name, &img.Section, &img.URL, &img.AltText); err != nil {
		return nil, err
	}
	return &img, nil
}
