package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Catalog serves filtered product lists from the product table.
type Catalog struct {
	products   types.ProductTable
	categories types.CategoryTable
	cache      cache.Client
	ttl        time.Duration
}

// New returns a catalog. c may be nil.
func New(products types.ProductTable, categories types.CategoryTable, c cache.Client, ttl time.Duration) *Catalog {
	return &Catalog{products: products, categories: categories, cache: c, ttl: ttl}
}

// All returns every product in id order.
func (c *Catalog) All(ctx context.Context) ([]*types.Product, error) {
	products, err := cache.Fetch(ctx, c.cache, cache.KeyProducts, c.ttl,
		func(ctx context.Context) ([]*types.Product, error) {
			return c.products.Fetch(ctx, nil)
		})
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	return products, nil
}

// Query returns the products matching f in id order.
func (c *Catalog) Query(ctx context.Context, f Filter) ([]*types.Product, error) {
	products, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(products, f), nil
}

// Categories returns every category ordered by name.
func (c *Catalog) Categories(ctx context.Context) ([]*types.Category, error) {
	cats, err := cache.Fetch(ctx, c.cache, cache.KeyCategories, c.ttl,
		func(ctx context.Context) ([]*types.Category, error) {
			return c.categories.Fetch(ctx, nil)
		})
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return cats, nil
}
