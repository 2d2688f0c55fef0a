package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/storefront/internal/seed"
)

// seedDefaults writes the default site content and categories, then
// snapshots both tables to JSONL. Attach calls it for a new store only.
func seedDefaults(ctx context.Context, db *sql.DB, dataDir, now string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range seed.Content() {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO site_content (section, element, kind, content, updated_at) VALUES (?, ?, ?, ?, ?)",
			e.Section, e.Element, string(e.Kind), e.Value, now,
		)
		if err != nil {
			return fmt.Errorf("seeding content %s.%s: %w", e.Section, e.Element, err)
		}
	}

	// Categories may already exist when only the content file was removed.
	for _, c := range seed.Categories() {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO categories (category_id, name) VALUES (?, ?)",
			c.CategoryID, c.Name,
		)
		if err != nil {
			return fmt.Errorf("seeding category %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	for _, table := range []string{tableSiteContent, tableCategories} {
		if err := persistTable(ctx, db, dataDir, table); err != nil {
			return fmt.Errorf("persisting seeded %s: %w", table, err)
		}
	}
	return nil
}
