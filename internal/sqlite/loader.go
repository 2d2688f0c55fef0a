package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// tableMapping ties a SQLite table to its JSONL file.
type tableMapping struct {
	file     string
	table    string
	columns  []string
	orderBy  string
	defaults map[string]any
}

// Table names.
const (
	tableSiteContent = "site_content"
	tableImages      = "images"
	tableProducts    = "products"
	tableCategories  = "categories"
	tableFAQs        = "faqs"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Defaults fill columns missing from older records, such as the
// content kind of rows written before values were tagged.
var jsonlTableMapping = []tableMapping{
	{
		file:     "site_content.jsonl",
		table:    tableSiteContent,
		columns:  []string{"section", "element", "kind", "content", "updated_at"},
		orderBy:  "section, element",
		defaults: map[string]any{"kind": "text", "updated_at": ""},
	},
	{
		file:     "images.jsonl",
		table:    tableImages,
		columns:  []string{"name", "section", "url", "alt_text"},
		orderBy:  "name",
		defaults: map[string]any{"alt_text": ""},
	},
	{
		file:    "products.jsonl",
		table:   tableProducts,
		columns: []string{"product_id", "name", "description", "price_cents", "weight", "category_id", "image_url", "created_at", "updated_at"},
		orderBy: "product_id",
		defaults: map[string]any{
			"description": "", "weight": "", "category_id": "", "image_url": "",
			"created_at": "", "updated_at": "",
		},
	},
	{
		file:    "categories.jsonl",
		table:   tableCategories,
		columns: []string{"category_id", "name"},
		orderBy: "name",
	},
	{
		file:     "faqs.jsonl",
		table:    tableFAQs,
		columns:  []string{"faq_id", "question", "answer", "created_at"},
		orderBy:  "faq_id",
		defaults: map[string]any{"created_at": ""},
	},
}

func mappingFor(table string) tableMapping {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return m
		}
	}
	panic("sqlite: no JSONL mapping for table " + table)
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching table. Loading is transactional: all succeed or the
// database remains empty. Malformed lines and records that violate a
// constraint are skipped; unknown fields are ignored.
func loadAllJSONL(ctx context.Context, db *sql.DB, dataDir string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, m.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", m.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(ctx, tx, m, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", m.file, m.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a table. Only the mapped
// columns are extracted.
func insertRecords(ctx context.Context, tx *sql.Tx, m tableMapping, records []json.RawMessage) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(m.columns)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", m.table, strings.Join(m.columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", m.table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			continue
		}

		args := make([]any, len(m.columns))
		for i, col := range m.columns {
			val, ok := obj[col]
			if !ok || val == nil {
				args[i] = m.defaults[col]
				continue
			}
			args[i] = columnValue(val)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			continue
		}
	}
	return nil
}

// columnValue converts a decoded JSON value into a SQLite argument.
func columnValue(val any) any {
	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return v
	}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// persistTable snapshots a table into its JSONL file. Each row becomes one
// JSON object keyed by column name.
func persistTable(ctx context.Context, q querier, dataDir, table string) error {
	m := mappingFor(table)
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(m.columns, ", "), m.table, m.orderBy)
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("querying %s for JSONL: %w", table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		vals := make([]any, len(m.columns))
		ptrs := make([]any, len(m.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scanning %s for JSONL: %w", table, err)
		}
		obj := make(map[string]any, len(m.columns))
		for i, col := range m.columns {
			if b, ok := vals[i].([]byte); ok {
				obj[col] = string(b)
				continue
			}
			obj[col] = vals[i]
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("marshaling %s record: %w", table, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s for JSONL: %w", table, err)
	}

	return writeJSONL(filepath.Join(dataDir, m.file), records)
}
