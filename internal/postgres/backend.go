// Package postgres implements the hosted storage backend on PostgreSQL
// through a pgx connection pool. Unlike the sqlite backend the database is
// the source of truth; there are no JSONL files.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

var _ types.Store = (*Backend)(nil)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Backend implements types.Store on PostgreSQL.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	pool     *pgxpool.Pool

	now func() time.Time
}

// NewBackend creates a detached backend.
func NewBackend() *Backend {
	return &Backend{now: time.Now}
}

// Attach connects to Config.DatabaseURL, applies the schema and seeds a
// database attached for the first time.
func (b *Backend) Attach(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendPostgres {
		return fmt.Errorf("%w: %s", types.ErrBackendUnknown, config.Backend)
	}

	poolConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parsing database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging database: %w", err)
	}

	if err := createSchema(ctx, pool); err != nil {
		pool.Close()
		return err
	}
	if err := seedDefaults(ctx, pool, b.timestamp()); err != nil {
		pool.Close()
		return fmt.Errorf("seeding defaults: %w", err)
	}

	b.pool = pool
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the pool. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.pool != nil {
		b.pool.Close()
		b.pool = nil
	}
	return nil
}

func (b *Backend) Content() types.ContentTable     { return &contentTable{backend: b} }
func (b *Backend) Images() types.ImageTable        { return &imagesTable{backend: b} }
func (b *Backend) Products() types.ProductTable    { return &productsTable{backend: b} }
func (b *Backend) Categories() types.CategoryTable { return &categoriesTable{backend: b} }
func (b *Backend) FAQs() types.FAQTable            { return &faqsTable{backend: b} }

func (b *Backend) conn() (*pgxpool.Pool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached || b.pool == nil {
		return nil, types.ErrStoreDetached
	}
	return b.pool, nil
}

// timestamp returns the current time at the microsecond resolution of
// TIMESTAMPTZ so written values compare equal after a read.
func (b *Backend) timestamp() time.Time {
	return b.now().UTC().Truncate(time.Microsecond)
}

func createSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaDDL {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// requireAffected maps a zero-row command to ErrNotFound.
func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// mapError translates driver errors into store sentinels.
func mapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return types.ErrDuplicateName
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
