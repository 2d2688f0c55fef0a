package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.ContentTable = (*contentTable)(nil)

type contentTable struct {
	backend *Backend
}

const contentColumns = "section, element, kind, content, updated_at"

// Get retrieves a single (section, element) entry.
func (ct *contentTable) Get(ctx context.Context, section, element string) (*types.ContentEntry, error) {
	if section == "" {
		return nil, types.ErrInvalidSection
	}
	if element == "" {
		return nil, types.ErrInvalidElement
	}
	db, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT "+contentColumns+" FROM site_content WHERE section = ? AND element = ?",
		section, element,
	)
	e, err := hydrateContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting content %s.%s: %w", section, element, err)
	}
	return e, nil
}

// Section returns all entries of a section ordered by element.
func (ct *contentTable) Section(ctx context.Context, section string) ([]*types.ContentEntry, error) {
	if section == "" {
		return nil, types.ErrInvalidSection
	}
	db, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+contentColumns+" FROM site_content WHERE section = ? ORDER BY element ASC",
		section,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching section %s: %w", section, err)
	}
	return collectContent(rows)
}

// All returns the whole content table.
func (ct *contentTable) All(ctx context.Context) ([]*types.ContentEntry, error) {
	db, err := ct.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT "+contentColumns+" FROM site_content ORDER BY section ASC, element ASC")
	if err != nil {
		return nil, fmt.Errorf("fetching content: %w", err)
	}
	return collectContent(rows)
}

func collectContent(rows *sql.Rows) ([]*types.ContentEntry, error) {
	defer rows.Close()
	results := []*types.ContentEntry{}
	for rows.Next() {
		e, err := hydrateContent(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating content: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content: %w", err)
	}
	return results, nil
}

// Upsert writes the entry, replacing any existing value for the pair.
func (ct *contentTable) Upsert(ctx context.Context, entry *types.ContentEntry) error {
	if entry == nil {
		return types.ErrInvalidData
	}
	entry.Normalize()
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.UpdatedAt = ct.backend.now().UTC()

	return ct.backend.mutate(ctx, tableSiteContent, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO site_content (section, element, kind, content, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (section, element) DO UPDATE SET kind = excluded.kind, content = excluded.content, updated_at = excluded.updated_at`,
			entry.Section, entry.Element, string(entry.Kind), entry.Value, formatTime(entry.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("persisting content %s.%s: %w", entry.Section, entry.Element, err)
		}
		return nil
	})
}

// Delete removes a single entry.
func (ct *contentTable) Delete(ctx context.Context, section, element string) error {
	if section == "" {
		return types.ErrInvalidSection
	}
	if element == "" {
		return types.ErrInvalidElement
	}
	return ct.backend.mutate(ctx, tableSiteContent, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM site_content WHERE section = ? AND element = ?",
			section, element,
		)
		if err != nil {
			return fmt.Errorf("deleting content %s.%s: %w", section, element, err)
		}
		return requireAffected(res)
	})
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydrateContent(s scanner) (*types.ContentEntry, error) {
	var e types.ContentEntry
	var kind, updated string
	if err := s.Scan(&e.Section, &e.Element, &kind, &e.Value, &updated); err != nil {
		return nil, err
	}
	e.Kind = types.ContentKind(kind)
	e.Normalize()
	e.UpdatedAt = parseTime(updated)
	return &e, nil
}

// requireAffected maps a zero-row UPDATE or DELETE to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}
