package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.FAQTable = (*faqsTable)(nil)

type faqsTable struct {
	backend *Backend
}

// Get retrieves a FAQ by ID.
func (ft *faqsTable) Get(ctx context.Context, id string) (*types.FAQ, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := ft.backend.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT faq_id, question, answer, created_at FROM faqs WHERE faq_id = ?", id)
	f, err := hydrateFAQ(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting faq %s: %w", id, err)
	}
	return f, nil
}

// Set creates the FAQ when id is empty and overwrites it otherwise.
func (ft *faqsTable) Set(ctx context.Context, id string, f *types.FAQ) (string, error) {
	if f == nil {
		return "", types.ErrInvalidData
	}
	if err := f.Validate(); err != nil {
		return "", err
	}
	if id == "" {
		id = generateID()
	}
	f.FAQID = id
	if f.CreatedAt.IsZero() {
		f.CreatedAt = ft.backend.now().UTC()
	}

	err := ft.backend.mutate(ctx, tableFAQs, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO faqs (faq_id, question, answer, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (faq_id) DO UPDATE SET question = excluded.question, answer = excluded.answer`,
			id, f.Question, f.Answer, formatTime(f.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("persisting faq: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a FAQ by ID.
func (ft *faqsTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ft.backend.mutate(ctx, tableFAQs, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM faqs WHERE faq_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting faq: %w", err)
		}
		return requireAffected(res)
	})
}

// Fetch returns FAQs ordered by faq_id ASC.
func (ft *faqsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.FAQ, error) {
	limitSQL, err := limitClause(filter)
	if err != nil {
		return nil, err
	}
	db, err := ft.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT faq_id, question, answer, created_at FROM faqs ORDER BY faq_id ASC"+limitSQL)
	if err != nil {
		return nil, fmt.Errorf("fetching faqs: %w", err)
	}
	defer rows.Close()

	results := []*types.FAQ{}
	for rows.Next() {
		f, err := hydrateFAQ(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating faq: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating faqs: %w", err)
	}
	return results, nil
}

func hydrateFAQ(s scanner) (*types.FAQ, error) {
	var f types.FAQ
	var created string
	if err := s.Scan(&f.FAQID, &f.Question, &f.Answer, &created); err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(created)
	return &f, nil
}
