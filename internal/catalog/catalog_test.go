package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/internal/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func TestPriceBucketBoundaries(t *testing.T) {
	tests := []struct {
		price types.Price
		want  PriceRange
	}{
		{0, PriceLow},
		{4999, PriceLow},
		{5000, PriceLow},
		{5001, PriceMedium},
		{12000, PriceMedium},
		{12001, PriceHigh},
		{99999, PriceHigh},
	}
	for _, tt := range tests {
		t.Run(tt.price.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, PriceBucket(tt.price))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		weight string
		want   SizeRange
	}{
		{"200g", SizeSmall},
		{"400 g", SizeSmall},
		{"500g", SizeMedium},
		{"1kg", SizeLarge},
		{"1 KG", SizeLarge},
		{"250g", SizeNone},
		{"750g", SizeNone},
		{"", SizeNone},
		{"pieza", SizeNone},
	}
	for _, tt := range tests {
		t.Run(tt.weight, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.weight))
		})
	}
}

func TestParseRanges(t *testing.T) {
	p, err := ParsePriceRange("")
	require.NoError(t, err)
	assert.Equal(t, PriceAll, p)
	p, err = ParsePriceRange("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriceHigh, p)
	_, err = ParsePriceRange("cheap")
	assert.ErrorIs(t, err, ErrInvalidRange)

	s, err := ParseSizeRange("medium")
	require.NoError(t, err)
	assert.Equal(t, SizeMedium, s)
	_, err = ParseSizeRange("huge")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func sampleProducts() []*types.Product {
	return []*types.Product{
		{ProductID: "1", Name: "Queso Oaxaca", Description: "Hebra fresca", Price: 4500, Weight: "500g", CategoryID: "oaxaca"},
		{ProductID: "2", Name: "Manchego", Description: "Madurado, ideal para gratinar", Price: 5000, Weight: "1kg", CategoryID: "manchego"},
		{ProductID: "3", Name: "Doble crema", Description: "Cremoso", Price: 12000, Weight: "400g", CategoryID: "doble-crema"},
		{ProductID: "4", Name: "Oaxaca grande", Description: "Para compartir", Price: 12001, Weight: "1 kg", CategoryID: "oaxaca"},
		{ProductID: "5", Name: "Panela", Description: "Bajo en grasa", Price: 3000, Weight: "750g", CategoryID: "specialty"},
		{ProductID: "6", Name: "Cotija", Description: "OAXACA style", Price: 8000, Weight: "250g", CategoryID: "specialty"},
	}
}

func ids(products []*types.Product) []string {
	out := []string{}
	for _, p := range products {
		out = append(out, p.ProductID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3", "4", "5", "6"}},
		{"search name or description, case insensitive", Filter{Search: "oaxaca"}, []string{"1", "4", "6"}},
		{"search description", Filter{Search: "GRATINAR"}, []string{"2"}},
		{"category", Filter{CategoryID: "oaxaca"}, []string{"1", "4"}},
		{"category all", Filter{CategoryID: "all"}, []string{"1", "2", "3", "4", "5", "6"}},
		{"price low includes 50.00", Filter{Price: PriceLow}, []string{"1", "2", "5"}},
		{"price medium includes 120.00", Filter{Price: PriceMedium}, []string{"3", "6"}},
		{"price high", Filter{Price: PriceHigh}, []string{"4"}},
		{"size small", Filter{Size: SizeSmall}, []string{"3"}},
		{"size medium", Filter{Size: SizeMedium}, []string{"1"}},
		{"size large", Filter{Size: SizeLarge}, []string{"2", "4"}},
		{"combined", Filter{Search: "oaxaca", CategoryID: "oaxaca", Price: PriceHigh, Size: SizeLarge}, []string{"4"}},
		{"nothing matches", Filter{Search: "brie"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sampleProducts(), tt.filter)))
		})
	}
}

func TestApplyIsCommutative(t *testing.T) {
	products := sampleProducts()
	for _, cat := range []string{"oaxaca", "manchego", "specialty", "missing"} {
		for _, price := range []PriceRange{PriceLow, PriceMedium, PriceHigh} {
			catThenPrice := Apply(Apply(products, Filter{CategoryID: cat}), Filter{Price: price})
			priceThenCat := Apply(Apply(products, Filter{Price: price}), Filter{CategoryID: cat})
			both := Apply(products, Filter{CategoryID: cat, Price: price})
			assert.Equal(t, ids(catThenPrice), ids(priceThenCat), "%s/%s", cat, price)
			assert.Equal(t, ids(both), ids(catThenPrice), "%s/%s", cat, price)
		}
	}
}

func TestCatalogQuery(t *testing.T) {
	ctx := context.Background()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	defer b.Detach()

	var created []string
	for _, p := range sampleProducts() {
		p.ProductID = ""
		id, err := b.Products().Set(ctx, "", p)
		require.NoError(t, err)
		created = append(created, id)
	}

	mem := cache.NewMemoryClient(0)
	defer mem.Close()
	c := New(b.Products(), b.Categories(), mem, time.Minute)

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, created, ids(all))

	got, err := c.Query(ctx, Filter{CategoryID: "oaxaca", Size: SizeLarge})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Oaxaca grande", got[0].Name)
	assert.Equal(t, types.Price(12001), got[0].Price)

	// Cached until invalidated.
	require.NoError(t, b.Products().Delete(ctx, created[0]))
	all, err = c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	cache.Invalidate(ctx, mem, zerolog.Nop(), cache.KeyProducts)
	all, err = c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 4)
}
