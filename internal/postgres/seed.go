package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesh-intelligence/storefront/internal/seed"
)

// seedMarker is the storefront_meta key recording that defaults were seeded.
const seedMarker = "seeded_at"

// seedDefaults inserts the default site content and categories the first
// time a database is attached. A database that already has content when
// the marker is first written is left as it is.
func seedDefaults(ctx context.Context, pool *pgxpool.Pool, now time.Time) error {
	batch := &pgx.Batch{}
	for _, e := range seed.Content() {
		batch.Queue(
			`INSERT INTO site_content (section, element, kind, content, updated_at) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (section, element) DO NOTHING`,
			e.Section, e.Element, string(e.Kind), e.Value, now,
		)
	}
	for _, c := range seed.Categories() {
		batch.Queue("INSERT INTO categories (category_id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING", c.CategoryID, c.Name)
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"INSERT INTO storefront_meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING",
			seedMarker, now.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("writing seed marker: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		var count int
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM site_content").Scan(&count); err != nil {
			return fmt.Errorf("counting site content: %w", err)
		}
		if count > 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
