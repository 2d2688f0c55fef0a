package lists

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/internal/sqlite"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

func setupManager(t *testing.T) (*Manager, types.Store) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	c := cache.NewMemoryClient(0)
	t.Cleanup(func() { c.Close() })

	m := NewManager(content.New(b.Content(), c, time.Minute, zerolog.Nop()))
	n := 0
	m.newID = func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
	return m, b
}

func location(name string) map[string]string {
	return map[string]string{"name": name, "address": "Av. Central 1", "hours": "9:00 - 18:00"}
}

func TestAppendUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m, store := setupManager(t)

	l, err := m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	assert.Empty(t, l.Items)

	first, err := m.Append(ctx, "contact", "locations", location("Centro"))
	require.NoError(t, err)
	assert.Equal(t, "item-1", first.ID)
	_, err = m.Append(ctx, "contact", "locations", location("Norte"))
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, "contact", "locations", first.ID, location("Centro Histórico")))
	l, err = m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	require.Len(t, l.Items, 2)
	assert.Equal(t, "Centro Histórico", l.Items[0].Field("name"))
	assert.Equal(t, "Norte", l.Items[1].Field("name"))

	require.NoError(t, m.Delete(ctx, "contact", "locations", first.ID))
	l, err = m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "item-2", l.Items[0].ID)

	assert.ErrorIs(t, m.Delete(ctx, "contact", "locations", "missing"), ErrItemNotFound)
	assert.ErrorIs(t, m.Update(ctx, "contact", "locations", "missing", location("x")), ErrItemNotFound)

	// Stored as one json entry.
	e, err := store.Content().Get(ctx, "contact", "locations")
	require.NoError(t, err)
	assert.Equal(t, types.KindJSON, e.Kind)
	assert.JSONEq(t, `[{"id":"item-2","name":"Norte","address":"Av. Central 1","hours":"9:00 - 18:00"}]`, e.Value)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)

	_, err := m.Append(ctx, "contact", "contact_methods", map[string]string{"type": "Teléfono"})
	require.ErrorIs(t, err, admin.ErrValidation)

	item, err := m.Append(ctx, "contact", "contact_methods", map[string]string{"type": "Teléfono", "value": "961 000 0000"})
	require.NoError(t, err)
	assert.Equal(t, "", item.Field("description"))

	_, err = m.Load(ctx, "contact", "unknown")
	assert.ErrorIs(t, err, ErrUnknownList)
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)
	_, err := m.Append(ctx, "contact", "locations", location("Original"))
	require.NoError(t, err)

	sessionA, err := m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	sessionB, err := m.Load(ctx, "contact", "locations")
	require.NoError(t, err)

	_, err = sessionA.Add(location("Agregada por A"))
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, sessionA))

	require.NoError(t, sessionB.Remove("item-1"))
	_, err = sessionB.Add(location("Agregada por B"))
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, sessionB))

	final, err := m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	require.Len(t, final.Items, 1)
	assert.Equal(t, "Agregada por B", final.Items[0].Field("name"))
}

func TestLegacyTextList(t *testing.T) {
	ctx := context.Background()
	m, store := setupManager(t)

	// Legacy rows have numeric ids and no kind tag.
	require.NoError(t, store.Content().Upsert(ctx, &types.ContentEntry{
		Section: "contact", Element: "locations",
		Value: `[{"id":1700000000000,"name":"Centro","address":"Av. 1","hours":"9-18"}]`,
	}))
	l, err := m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	require.Len(t, l.Items, 1)
	assert.Equal(t, "1700000000000", l.Items[0].ID)

	require.NoError(t, m.content.Write(ctx, []content.Update{{Section: "contact", Element: "locations", Value: content.Text("not a list")}}))
	_, err = m.Load(ctx, "contact", "locations")
	assert.ErrorIs(t, err, ErrNotAList)
}

func TestNullListIsEmpty(t *testing.T) {
	ctx := context.Background()
	m, _ := setupManager(t)

	require.NoError(t, m.content.Write(ctx, []content.Update{{Section: "contact", Element: "locations", Value: content.MustJSON(nil)}}))
	l, err := m.Load(ctx, "contact", "locations")
	require.NoError(t, err)
	require.NotNil(t, l.Items)
	assert.Empty(t, l.Items)

	data, err := json.Marshal(l.Items)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
