package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Export writes every table of store into dir as the JSONL files this
// backend loads on Attach. Any backend can be exported, so the result works
// both as a backup and as a migration into a SQLite data directory.
// Existing files in dir are replaced.
func Export(ctx context.Context, store types.Store, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	tables := []struct {
		table string
		rows  func(context.Context, types.Store) ([]map[string]any, error)
	}{
		{tableSiteContent, contentRows},
		{tableImages, imageRows},
		{tableProducts, productRows},
		{tableCategories, categoryRows},
		{tableFAQs, faqRows},
	}
	for _, t := range tables {
		rows, err := t.rows(ctx, store)
		if err != nil {
			return fmt.Errorf("exporting %s: %w", t.table, err)
		}
		records := make([]json.RawMessage, 0, len(rows))
		for _, r := range rows {
			b, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encoding %s row: %w", t.table, err)
			}
			records = append(records, b)
		}
		if err := writeJSONL(filepath.Join(dir, mappingFor(t.table).file), records); err != nil {
			return fmt.Errorf("writing %s: %w", t.table, err)
		}
	}
	return nil
}

func contentRows(ctx context.Context, s types.Store) ([]map[string]any, error) {
	entries, err := s.Content().All(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]any{
			"section": e.Section, "element": e.Element, "kind": string(e.Kind),
			"content": e.Value, "updated_at": formatTime(e.UpdatedAt),
		})
	}
	return rows, nil
}

func imageRows(ctx context.Context, s types.Store) ([]map[string]any, error) {
	imgs, err := s.Images().Fetch(ctx, "")
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(imgs))
	for _, i := range imgs {
		rows = append(rows, map[string]any{"name": i.Name, "section": i.Section, "url": i.URL, "alt_text": i.AltText})
	}
	return rows, nil
}

func productRows(ctx context.Context, s types.Store) ([]map[string]any, error) {
	products, err := s.Products().Fetch(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, map[string]any{
			"product_id": p.ProductID, "name": p.Name, "description": p.Description,
			"price_cents": p.Price.Cents(), "weight": p.Weight, "category_id": p.CategoryID,
			"image_url": p.ImageURL, "created_at": formatTime(p.CreatedAt), "updated_at": formatTime(p.UpdatedAt),
		})
	}
	return rows, nil
}

func categoryRows(ctx context.Context, s types.Store) ([]map[string]any, error) {
	cats, err := s.Categories().Fetch(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, map[string]any{"category_id": c.CategoryID, "name": c.Name})
	}
	return rows, nil
}

func faqRows(ctx context.Context, s types.Store) ([]map[string]any, error) {
	faqs, err := s.FAQs().Fetch(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(faqs))
	for _, f := range faqs {
		rows = append(rows, map[string]any{
			"faq_id": f.FAQID, "question": f.Question, "answer": f.Answer, "created_at": formatTime(f.CreatedAt),
		})
	}
	return rows, nil
}
