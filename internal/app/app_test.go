package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/internal/paths"
	"github.com/mesh-intelligence/storefront/internal/postgres"
	"github.com/mesh-intelligence/storefront/internal/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		Store:         types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()},
		Bucket:        "site-images",
		PublicBaseURL: "/storage",
		Cache:         config.CacheConfig{Driver: driver, TTL: time.Minute},
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(types.BackendSQLite)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Backend{}, s)

	s, err = NewStore(types.BackendPostgres)
	require.NoError(t, err)
	assert.IsType(t, &postgres.Backend{}, s)

	_, err = NewStore("mongo")
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestNewWiresServices(t *testing.T) {
	for _, driver := range []string{config.CacheMemory, config.CacheNone} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, driver)
			a, err := New(ctx, cfg, zerolog.Nop())
			require.NoError(t, err)

			home, err := a.Content.Read(ctx, "home")
			require.NoError(t, err)
			assert.NotEmpty(t, home.Text("title"))

			cats, err := a.Catalog.Categories(ctx)
			require.NoError(t, err)
			assert.Len(t, cats, 4)

			img, err := a.Images.Put(ctx, "home", "home_background", strings.NewReader("png"))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(img.URL, "/storage/site-images/"), img.URL)
			assert.FileExists(t, filepath.Join(paths.BucketDir(cfg.Store.DataDir, "site-images"), "home_background"))

			require.NoError(t, a.Close())
			_, err = a.Store.Content().Get(ctx, "home", "title")
			assert.ErrorIs(t, err, types.ErrStoreDetached)
		})
	}
}

func TestNewAttachFailure(t *testing.T) {
	cfg := testConfig(t, config.CacheMemory)
	cfg.Store = types.Config{Backend: types.BackendPostgres}
	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, types.ErrDatabaseURLEmpty)
}
