// Package storetest is a conformance suite run against every types.Store
// backend. Backends call Run from their own tests with a factory that
// returns a freshly attached, seeded store.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Factory returns an attached store with only the seeded defaults in it.
// The factory is responsible for detaching it on cleanup.
type Factory func(t *testing.T) types.Store

// Run executes the whole suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("content", func(t *testing.T) { testContent(t, newStore) })
	t.Run("images", func(t *testing.T) { testImages(t, newStore) })
	t.Run("products", func(t *testing.T) { testProducts(t, newStore) })
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore) })
	t.Run("faqs", func(t *testing.T) { testFAQs(t, newStore) })
	t.Run("lifecycle", func(t *testing.T) { testLifecycle(t, newStore) })
}

func testContent(t *testing.T, newStore Factory) {
	ctx := context.Background()
	tests := []struct {
		name  string
		check func(t *testing.T, s types.Store)
	}{
		{
			name: "seeded sections are present",
			check: func(t *testing.T, s types.Store) {
				e, err := s.Content().Get(ctx, "home", "title")
				require.NoError(t, err)
				assert.Equal(t, types.KindText, e.Kind)
				assert.NotEmpty(t, e.Value)

				e, err = s.Content().Get(ctx, "contact", "locations")
				require.NoError(t, err)
				assert.Equal(t, types.KindJSON, e.Kind)
				assert.Equal(t, "[]", e.Value)
			},
		},
		{
			name: "upsert overwrites the same pair",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Content()
				require.NoError(t, tbl.Upsert(ctx, &types.ContentEntry{Section: "promo", Element: "banner", Kind: types.KindText, Value: "first"}))
				require.NoError(t, tbl.Upsert(ctx, &types.ContentEntry{Section: "promo", Element: "banner", Kind: types.KindText, Value: "second"}))

				e, err := tbl.Get(ctx, "promo", "banner")
				require.NoError(t, err)
				assert.Equal(t, "second", e.Value)
				assert.False(t, e.UpdatedAt.IsZero())

				entries, err := tbl.Section(ctx, "promo")
				require.NoError(t, err)
				assert.Len(t, entries, 1)
			},
		},
		{
			name: "section is ordered by element",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Content()
				for _, el := range []string{"zeta", "alpha", "mid"} {
					require.NoError(t, tbl.Upsert(ctx, &types.ContentEntry{Section: "order", Element: el, Value: el}))
				}
				entries, err := tbl.Section(ctx, "order")
				require.NoError(t, err)
				require.Len(t, entries, 3)
				assert.Equal(t, "alpha", entries[0].Element)
				assert.Equal(t, "mid", entries[1].Element)
				assert.Equal(t, "zeta", entries[2].Element)
			},
		},
		{
			name: "element order is bytewise",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Content()
				for _, el := range []string{"gamma", "alpha", "Beta"} {
					require.NoError(t, tbl.Upsert(ctx, &types.ContentEntry{Section: "mixed", Element: el, Value: el}))
				}
				entries, err := tbl.Section(ctx, "mixed")
				require.NoError(t, err)
				require.Len(t, entries, 3)
				assert.Equal(t, []string{"Beta", "alpha", "gamma"},
					[]string{entries[0].Element, entries[1].Element, entries[2].Element})
			},
		},
		{
			name: "all is ordered by section then element",
			check: func(t *testing.T, s types.Store) {
				all, err := s.Content().All(ctx)
				require.NoError(t, err)
				require.NotEmpty(t, all)
				for i := 1; i < len(all); i++ {
					prev, cur := all[i-1], all[i]
					assert.True(t, prev.Section < cur.Section || (prev.Section == cur.Section && prev.Element < cur.Element),
						"%s.%s before %s.%s", prev.Section, prev.Element, cur.Section, cur.Element)
				}
			},
		},
		{
			name: "untagged entry is stored as text",
			check: func(t *testing.T, s types.Store) {
				require.NoError(t, s.Content().Upsert(ctx, &types.ContentEntry{Section: "legacy", Element: "ext", Value: "123"}))
				e, err := s.Content().Get(ctx, "legacy", "ext")
				require.NoError(t, err)
				assert.Equal(t, types.KindText, e.Kind)
				assert.Equal(t, "123", e.Value)
			},
		},
		{
			name: "json kind rejects invalid documents",
			check: func(t *testing.T, s types.Store) {
				err := s.Content().Upsert(ctx, &types.ContentEntry{Section: "x", Element: "y", Kind: types.KindJSON, Value: "{broken"})
				assert.ErrorIs(t, err, types.ErrInvalidData)
			},
		},
		{
			name: "missing entry and unknown section",
			check: func(t *testing.T, s types.Store) {
				_, err := s.Content().Get(ctx, "nowhere", "title")
				assert.ErrorIs(t, err, types.ErrNotFound)

				entries, err := s.Content().Section(ctx, "nowhere")
				require.NoError(t, err)
				assert.Empty(t, entries)

				_, err = s.Content().Section(ctx, "")
				assert.ErrorIs(t, err, types.ErrInvalidSection)
			},
		},
		{
			name: "delete removes the entry once",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Content()
				require.NoError(t, tbl.Upsert(ctx, &types.ContentEntry{Section: "tmp", Element: "a", Value: "v"}))
				require.NoError(t, tbl.Delete(ctx, "tmp", "a"))
				assert.ErrorIs(t, tbl.Delete(ctx, "tmp", "a"), types.ErrNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newStore(t))
		})
	}
}

func testImages(t *testing.T, newStore Factory) {
	ctx := context.Background()
	tests := []struct {
		name  string
		check func(t *testing.T, s types.Store)
	}{
		{
			name: "fetch scopes by section and orders by name",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Images()
				for _, img := range []*types.Image{
					{Name: "gallery/b.jpg", Section: "gallery", URL: "http://x/b"},
					{Name: "gallery/a.jpg", Section: "gallery", URL: "http://x/a", AltText: "Queso"},
					{Name: "home_background", Section: "home", URL: "http://x/h"},
				} {
					require.NoError(t, tbl.Upsert(ctx, img))
				}

				got, err := tbl.Fetch(ctx, "gallery")
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "gallery/a.jpg", got[0].Name)
				assert.Equal(t, "Queso", got[0].AltText)
				assert.Equal(t, "gallery/b.jpg", got[1].Name)

				all, err := tbl.Fetch(ctx, "")
				require.NoError(t, err)
				assert.Len(t, all, 3)
			},
		},
		{
			name: "name order is bytewise",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Images()
				for _, name := range []string{"gallery/queso.jpg", "gallery/Zacatecas.jpg", "gallery/añejo.jpg"} {
					require.NoError(t, tbl.Upsert(ctx, &types.Image{Name: name, Section: "gallery", URL: "http://x/" + name}))
				}
				got, err := tbl.Fetch(ctx, "gallery")
				require.NoError(t, err)
				require.Len(t, got, 3)
				assert.Equal(t, []string{"gallery/Zacatecas.jpg", "gallery/añejo.jpg", "gallery/queso.jpg"},
					[]string{got[0].Name, got[1].Name, got[2].Name})
			},
		},
		{
			name: "upsert by name overwrites url",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Images()
				require.NoError(t, tbl.Upsert(ctx, &types.Image{Name: "about_us_image", Section: "about", URL: "http://x/1"}))
				require.NoError(t, tbl.Upsert(ctx, &types.Image{Name: "about_us_image", Section: "about", URL: "http://x/2"}))
				img, err := tbl.Get(ctx, "about_us_image")
				require.NoError(t, err)
				assert.Equal(t, "http://x/2", img.URL)
			},
		},
		{
			name: "validation and not found",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Images()
				assert.ErrorIs(t, tbl.Upsert(ctx, &types.Image{Name: "n", URL: "u"}), types.ErrInvalidSection)
				_, err := tbl.Get(ctx, "missing")
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.ErrorIs(t, tbl.Delete(ctx, "missing"), types.ErrNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newStore(t))
		})
	}
}

func testProducts(t *testing.T, newStore Factory) {
	ctx := context.Background()
	tests := []struct {
		name  string
		check func(t *testing.T, s types.Store)
	}{
		{
			name: "create assigns ids in insertion order",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Products()
				var ids []string
				for _, name := range []string{"Oaxaca", "Manchego", "Doble crema"} {
					id, err := tbl.Set(ctx, "", &types.Product{Name: name, Price: 4500, Weight: "500g", CategoryID: "oaxaca"})
					require.NoError(t, err)
					require.NotEmpty(t, id)
					ids = append(ids, id)
				}

				got, err := tbl.Fetch(ctx, nil)
				require.NoError(t, err)
				require.Len(t, got, 3)
				for i, p := range got {
					assert.Equal(t, ids[i], p.ProductID)
				}
				assert.Equal(t, "Oaxaca", got[0].Name)
				assert.Equal(t, types.Price(4500), got[0].Price)
				assert.False(t, got[0].CreatedAt.IsZero())
			},
		},
		{
			name: "update keeps created_at and overwrites fields",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Products()
				p := &types.Product{Name: "Panela", Price: 12000, Weight: "1kg"}
				id, err := tbl.Set(ctx, "", p)
				require.NoError(t, err)
				created := p.CreatedAt

				_, err = tbl.Set(ctx, id, &types.Product{Name: "Panela fresca", Price: 12001, Weight: "1 kg"})
				require.NoError(t, err)

				got, err := tbl.Get(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, "Panela fresca", got.Name)
				assert.Equal(t, types.Price(12001), got.Price)
				assert.True(t, created.Equal(got.CreatedAt), "created_at changed: %v -> %v", created, got.CreatedAt)
			},
		},
		{
			name: "fetch filters by category and rejects bad filter types",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Products()
				_, err := tbl.Set(ctx, "", &types.Product{Name: "A", CategoryID: "oaxaca"})
				require.NoError(t, err)
				_, err = tbl.Set(ctx, "", &types.Product{Name: "B", CategoryID: "manchego"})
				require.NoError(t, err)

				got, err := tbl.Fetch(ctx, types.Filter{"category_id": "manchego"})
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, "B", got[0].Name)

				got, err = tbl.Fetch(ctx, types.Filter{"limit": 1})
				require.NoError(t, err)
				assert.Len(t, got, 1)

				_, err = tbl.Fetch(ctx, types.Filter{"category_id": 7})
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
				_, err = tbl.Fetch(ctx, types.Filter{"limit": "1"})
				assert.ErrorIs(t, err, types.ErrInvalidFilter)
			},
		},
		{
			name: "validation and not found",
			check: func(t *testing.T, s types.Store) {
				tbl := s.Products()
				_, err := tbl.Set(ctx, "", &types.Product{})
				assert.ErrorIs(t, err, types.ErrInvalidName)
				_, err = tbl.Get(ctx, "")
				assert.ErrorIs(t, err, types.ErrInvalidID)
				_, err = tbl.Get(ctx, "missing")
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.ErrorIs(t, tbl.Delete(ctx, "missing"), types.ErrNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newStore(t))
		})
	}
}

func testCategories(t *testing.T, newStore Factory) {
	ctx := context.Background()
	tests := []struct {
		name  string
		check func(t *testing.T, s types.Store)
	}{
		{
			name: "defaults are seeded and ordered by name",
			check: func(t *testing.T, s types.Store) {
				got, err := s.Categories().Fetch(ctx, nil)
				require.NoError(t, err)
				require.Len(t, got, 4)
				assert.Equal(t, "Quesos Doble Crema", got[0].Name)
				assert.Equal(t, "doble-crema", got[0].CategoryID)
				assert.Equal(t, "Quesos Especiales", got[1].Name)
				assert.Equal(t, "Quesos Manchego", got[2].Name)
				assert.Equal(t, "Quesos Oaxaca", got[3].Name)
			},
		},
		{
			name: "name order is bytewise",
			check: func(t *testing.T, s types.Store) {
				_, err := s.Categories().Set(ctx, "", &types.Category{Name: "quesos frescos"})
				require.NoError(t, err)
				got, err := s.Categories().Fetch(ctx, nil)
				require.NoError(t, err)
				require.Len(t, got, 5)
				assert.Equal(t, "Quesos Oaxaca", got[3].Name)
				assert.Equal(t, "quesos frescos", got[4].Name)
			},
		},
		{
			name: "duplicate names are rejected",
			check: func(t *testing.T, s types.Store) {
				_, err := s.Categories().Set(ctx, "", &types.Category{Name: "Quesos Oaxaca"})
				assert.ErrorIs(t, err, types.ErrDuplicateName)

				id, err := s.Categories().Set(ctx, "", &types.Category{Name: "Quesos Frescos"})
				require.NoError(t, err)
				got, err := s.Categories().Fetch(ctx, types.Filter{"name": "Quesos Frescos"})
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, id, got[0].CategoryID)
			},
		},
		{
			name: "deleting a category leaves its products untouched",
			check: func(t *testing.T, s types.Store) {
				pid, err := s.Products().Set(ctx, "", &types.Product{Name: "Oaxaca 500g", CategoryID: "oaxaca", Weight: "500g"})
				require.NoError(t, err)
				before, err := s.Products().Get(ctx, pid)
				require.NoError(t, err)

				require.NoError(t, s.Categories().Delete(ctx, "oaxaca"))
				_, err = s.Categories().Get(ctx, "oaxaca")
				assert.ErrorIs(t, err, types.ErrNotFound)

				after, err := s.Products().Get(ctx, pid)
				require.NoError(t, err)
				assert.Equal(t, before, after)
				assert.Equal(t, "oaxaca", after.CategoryID)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newStore(t))
		})
	}
}

func testFAQs(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)
	tbl := s.FAQs()

	_, err := tbl.Set(ctx, "", &types.FAQ{Question: "¿Hacen envíos?"})
	assert.ErrorIs(t, err, types.ErrInvalidContent)

	first, err := tbl.Set(ctx, "", &types.FAQ{Question: "¿Hacen envíos?", Answer: "Sí, en la ciudad."})
	require.NoError(t, err)
	second, err := tbl.Set(ctx, "", &types.FAQ{Question: "¿Horario?", Answer: "9 a 18"})
	require.NoError(t, err)

	_, err = tbl.Set(ctx, first, &types.FAQ{Question: "¿Hacen envíos?", Answer: "Sí, a todo el estado."})
	require.NoError(t, err)

	got, err := tbl.Fetch(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0].FAQID)
	assert.Equal(t, "Sí, a todo el estado.", got[0].Answer)
	assert.Equal(t, second, got[1].FAQID)

	require.NoError(t, tbl.Delete(ctx, second))
	_, err = tbl.Get(ctx, second)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func testLifecycle(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Detach())
	require.NoError(t, s.Detach(), "detach must be idempotent")

	_, err := s.Content().Get(ctx, "home", "title")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = s.Products().Fetch(ctx, nil)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, s.Images().Upsert(ctx, &types.Image{Name: "a", Section: "b", URL: "c"}), types.ErrStoreDetached)
}
