package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.ContentTable = (*contentTable)(nil)

type contentTable struct {
	backend *Backend
}

func (ct *contentTable) Get(ctx context.Context, section, element string) (*types.ContentEntry, error) {
	if section == "" {
		return nil, types.ErrInvalidSection
	}
	if element == "" {
		return nil, types.ErrInvalidElement
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	row := pool.QueryRow(ctx,
		"SELECT section, element, kind, content, updated_at FROM site_content WHERE section = $1 AND element = $2",
		section, element)
	e, err := hydrateContent(row)
	if err != nil {
		return nil, mapError(err, "getting content %s.%s", section, element)
	}
	return e, nil
}

func (ct *contentTable) Section(ctx context.Context, section string) ([]*types.ContentEntry, error) {
	if section == "" {
		return nil, types.ErrInvalidSection
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx,
		"SELECT section, element, kind, content, updated_at FROM site_content WHERE section = $1 ORDER BY element COLLATE \"C\" ASC",
		section)
	if err != nil {
		return nil, mapError(err, "reading section %s", section)
	}
	return collectContent(rows)
}

func (ct *contentTable) All(ctx context.Context) ([]*types.ContentEntry, error) {
	pool, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx,
		`SELECT section, element, kind, content, updated_at FROM site_content
		 ORDER BY section COLLATE "C", element COLLATE "C"`)
	if err != nil {
		return nil, mapError(err, "reading content")
	}
	return collectContent(rows)
}

func collectContent(rows pgx.Rows) ([]*types.ContentEntry, error) {
	defer rows.Close()
	results := []*types.ContentEntry{}
	for rows.Next() {
		e, err := hydrateContent(rows)
		if err != nil {
			return nil, mapError(err, "hydrating content")
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterating content")
	}
	return results, nil
}

func (ct *contentTable) Upsert(ctx context.Context, entry *types.ContentEntry) error {
	if entry == nil {
		return types.ErrInvalidData
	}
	entry.Normalize()
	if err := entry.Validate(); err != nil {
		return err
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return err
	}
	entry.UpdatedAt = ct.backend.timestamp()
	_, err = pool.Exec(ctx,
		`INSERT INTO site_content (section, element, kind, content, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (section, element) DO UPDATE SET kind = EXCLUDED.kind, content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`,
		entry.Section, entry.Element, string(entry.Kind), entry.Value, entry.UpdatedAt,
	)
	return mapError(err, "upserting content %s.%s", entry.Section, entry.Element)
}

func (ct *contentTable) Delete(ctx context.Context, section, element string) error {
	if section == "" {
		return types.ErrInvalidSection
	}
	if element == "" {
		return types.ErrInvalidElement
	}
	pool, err := ct.backend.conn()
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM site_content WHERE section = $1 AND element = $2", section, element)
	if err != nil {
		return mapError(err, "deleting content %s.%s", section, element)
	}
	return requireAffected(tag)
}

func hydrateContent(row pgx.Row) (*types.ContentEntry, error) {
	var e types.ContentEntry
	var kind string
	var updated time.Time
	if err := row.Scan(&e.Section, &e.Element, &kind, &e.Value, &updated); err != nil {
		return nil, err
	}
	e.Kind = types.ContentKind(kind)
	e.Normalize()
	e.UpdatedAt = updated.UTC()
	return &e, nil
}
