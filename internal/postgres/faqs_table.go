package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.FAQTable = (*faqsTable)(nil)

type faqsTable struct {
	backend *Backend
}

func (ft *faqsTable) Get(ctx context.Context, id string) (*types.FAQ, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	pool, err := ft.backend.conn()
	if err != nil {
		return nil, err
	}
	row := pool.QueryRow(ctx, "SELECT faq_id, question, answer, created_at FROM faqs WHERE faq_id = $1", id)
	f, err := hydrateFAQ(row)
	if err != nil {
		return nil, mapError(err, "getting faq %s", id)
	}
	return f, nil
}

func (ft *faqsTable) Set(ctx context.Context, id string, f *types.FAQ) (string, error) {
	if f == nil {
		return "", types.ErrInvalidData
	}
	if err := f.Validate(); err != nil {
		return "", err
	}
	pool, err := ft.backend.conn()
	if err != nil {
		return "", err
	}
	if id == "" {
		id = generateID()
	}
	f.FAQID = id

	var created time.Time
	err = pool.QueryRow(ctx,
		`INSERT INTO faqs (faq_id, question, answer, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (faq_id) DO UPDATE SET question = EXCLUDED.question, answer = EXCLUDED.answer
		 RETURNING created_at`,
		id, f.Question, f.Answer, ft.backend.timestamp(),
	).Scan(&created)
	if err != nil {
		return "", mapError(err, "persisting faq")
	}
	f.CreatedAt = created.UTC()
	return id, nil
}

func (ft *faqsTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	pool, err := ft.backend.conn()
	if err != nil {
		return err
	}
	tag, err := pool.Exec(ctx, "DELETE FROM faqs WHERE faq_id = $1", id)
	if err != nil {
		return mapError(err, "deleting faq")
	}
	return requireAffected(tag)
}

func (ft *faqsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.FAQ, error) {
	limitSQL, args, err := limitClause(filter, nil)
	if err != nil {
		return nil, err
	}
	pool, err := ft.backend.conn()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx,
		`SELECT faq_id, question, answer, created_at FROM faqs ORDER BY faq_id COLLATE "C" ASC`+limitSQL, args...)
	if err != nil {
		return nil, mapError(err, "fetching faqs")
	}
	defer rows.Close()

	results := []*types.FAQ{}
	for rows.Next() {
		f, err := hydrateFAQ(rows)
		if err != nil {
			return nil, mapError(err, "hydrating faq")
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterating faqs")
	}
	return results, nil
}

func hydrateFAQ(row pgx.Row) (*types.FAQ, error) {
	var f types.FAQ
	var created time.Time
	if err := row.Scan(&f.FAQID, &f.Question, &f.Answer, &created); err != nil {
		return nil, err
	}
	f.CreatedAt = created.UTC()
	return &f, nil
}
