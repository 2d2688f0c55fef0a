// Package app assembles the storefront services from a resolved
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/internal/images"
	"github.com/mesh-intelligence/storefront/internal/lists"
	"github.com/mesh-intelligence/storefront/internal/objstore"
	"github.com/mesh-intelligence/storefront/internal/paths"
	"github.com/mesh-intelligence/storefront/internal/postgres"
	"github.com/mesh-intelligence/storefront/internal/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// App holds the attached store and every service built on it.
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	Store  types.Store
	Bucket *objstore.FSBucket
	Cache  cache.Client

	Content  *content.Adapter
	Images   *images.Registry
	Catalog  *catalog.Catalog
	Lists    *lists.Manager
	Sections *admin.Sections

	Products     *admin.Products
	FAQs         *admin.FAQs
	Categories   *admin.Categories
	ImageService *admin.Images
}

// NewStore returns an unattached store for the named backend.
func NewStore(backend string) (types.Store, error) {
	switch backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendPostgres:
		return postgres.NewBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}

// New attaches the configured store, opens the bucket and cache and builds
// the services. The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := NewStore(cfg.Store.Backend)
	if err != nil {
		return nil, err
	}
	if err := store.Attach(ctx, cfg.Store); err != nil {
		return nil, fmt.Errorf("attach %s store: %w", cfg.Store.Backend, err)
	}

	bucket, err := objstore.NewOSBucket(paths.BucketDir(cfg.Store.DataDir, cfg.Bucket), cfg.Bucket, cfg.PublicBaseURL)
	if err != nil {
		store.Detach()
		return nil, fmt.Errorf("open bucket: %w", err)
	}

	c, err := newCache(ctx, cfg.Cache)
	if err != nil {
		store.Detach()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Store: store, Bucket: bucket, Cache: c}
	a.build()
	logger.Info().
		Str("backend", cfg.Store.Backend).
		Str("location", cfg.Store.Location()).
		Str("cache", cfg.Cache.Driver).
		Str("bucket", cfg.Bucket).
		Msg("storefront ready")
	return a, nil
}

func (a *App) build() {
	ttl := a.Config.Cache.TTL
	a.Content = content.New(a.Store.Content(), a.Cache, ttl, a.Logger)
	a.Images = images.New(a.Store.Images(), a.Bucket, a.Cache, ttl, a.Logger)
	a.Catalog = catalog.New(a.Store.Products(), a.Store.Categories(), a.Cache, ttl)
	a.Lists = lists.NewManager(a.Content)
	a.Sections = admin.NewSections(a.Content)
	a.Products = admin.NewProducts(a.Store.Products(), a.Bucket, a.Cache, a.Logger)
	a.FAQs = admin.NewFAQs(a.Store.FAQs(), a.Cache, ttl, a.Logger)
	a.Categories = admin.NewCategories(a.Store.Categories(), a.Cache, a.Logger)
	a.ImageService = admin.NewImages(a.Images)
}

// newCache returns nil for the "none" driver; every cache helper treats a
// nil client as a pass-through.
func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Client, error) {
	switch cfg.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return cache.NewMemoryClient(cfg.MaxEntries), nil
	}
}

// Close releases the cache and detaches the store.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := a.Store.Detach(); err != nil {
		errs = append(errs, fmt.Errorf("detach store: %w", err))
	}
	return errors.Join(errs...)
}
