// Package sqlite exposes the SQLite store for programs that embed the
// storefront tables without the HTTP server.
package sqlite

import (
	"context"

	"github.com/mesh-intelligence/storefront/internal/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// NewBackend creates an unattached SQLite store.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(ctx, types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".storefront-data",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}

// Open creates a store and attaches it to dataDir. The default site
// content is seeded on first use.
func Open(ctx context.Context, dataDir string) (types.Store, error) {
	store := NewBackend()
	if err := store.Attach(ctx, types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return nil, err
	}
	return store, nil
}
