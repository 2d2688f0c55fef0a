// Package lists edits list-valued content elements such as store locations.
// A list is stored as one JSON array in a single content entry and is
// always rewritten whole, so the last save wins.
package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// List errors.
var (
	ErrItemNotFound = errors.New("list item not found")
	ErrUnknownList  = errors.New("unknown list")
	ErrNotAList     = errors.New("content element is not a list")
)

// Schemas maps "section.element" to the schema of its items.
var Schemas = map[string]admin.Schema{
	"contact.locations":       admin.LocationSchema,
	"contact.contact_methods": admin.ContactMethodSchema,
}

// List is a loaded snapshot of one list element.
type List struct {
	Section string
	Element string
	Items   []types.ListItem

	schema admin.Schema
	newID  func() string
}

// Get returns the item with id.
func (l *List) Get(id string) (types.ListItem, bool) {
	for _, it := range l.Items {
		if it.ID == id {
			return it, true
		}
	}
	return types.ListItem{}, false
}

// Add validates fields and appends a new item with a fresh id.
func (l *List) Add(fields map[string]string) (types.ListItem, error) {
	vals, err := l.schema.Validate(fields)
	if err != nil {
		return types.ListItem{}, err
	}
	item := types.ListItem{ID: l.newID(), Fields: vals.Map()}
	l.Items = append(l.Items, item)
	return item, nil
}

// Edit replaces the fields of item id.
func (l *List) Edit(id string, fields map[string]string) error {
	vals, err := l.schema.Validate(fields)
	if err != nil {
		return err
	}
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items[i].Fields = vals.Map()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Remove drops item id.
func (l *List) Remove(id string) error {
	for i := range l.Items {
		if l.Items[i].ID == id {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, id)
}

// Manager loads and saves lists through the content adapter.
type Manager struct {
	content *content.Adapter
	schemas map[string]admin.Schema
	newID   func() string
}

// NewManager returns a manager for the lists in Schemas.
func NewManager(a *content.Adapter) *Manager {
	return &Manager{content: a, schemas: Schemas, newID: newItemID}
}

// Load reads a snapshot. A missing element is an empty list.
func (m *Manager) Load(ctx context.Context, section, element string) (*List, error) {
	schema, ok := m.schemas[section+"."+element]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownList, section, element)
	}
	l := &List{Section: section, Element: element, Items: []types.ListItem{}, schema: schema, newID: m.newID}

	v, err := m.content.ReadElement(ctx, section, element)
	if errors.Is(err, types.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(v)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", section, element, err)
	}
	l.Items = items
	return l, nil
}

// Save writes the whole list as one json content value.
func (m *Manager) Save(ctx context.Context, l *List) error {
	items := l.Items
	if items == nil {
		items = []types.ListItem{}
	}
	v, err := content.JSON(items)
	if err != nil {
		return err
	}
	return m.content.Write(ctx, []content.Update{{Section: l.Section, Element: l.Element, Value: v}})
}

// Append loads the list, adds an item and saves.
func (m *Manager) Append(ctx context.Context, section, element string, fields map[string]string) (types.ListItem, error) {
	l, err := m.Load(ctx, section, element)
	if err != nil {
		return types.ListItem{}, err
	}
	item, err := l.Add(fields)
	if err != nil {
		return types.ListItem{}, err
	}
	return item, m.Save(ctx, l)
}

// Update loads the list, edits item id and saves.
func (m *Manager) Update(ctx context.Context, section, element, id string, fields map[string]string) error {
	l, err := m.Load(ctx, section, element)
	if err != nil {
		return err
	}
	if err := l.Edit(id, fields); err != nil {
		return err
	}
	return m.Save(ctx, l)
}

// Delete loads the list, removes item id and saves.
func (m *Manager) Delete(ctx context.Context, section, element, id string) error {
	l, err := m.Load(ctx, section, element)
	if err != nil {
		return err
	}
	if err := l.Remove(id); err != nil {
		return err
	}
	return m.Save(ctx, l)
}

// decodeItems reads a list value. Rows imported without a kind tag hold the
// array as text; the element is known to be a list, so the text is parsed.
func decodeItems(v content.Value) ([]types.ListItem, error) {
	raw := v.String()
	if v.Kind() == types.KindText && strings.TrimSpace(raw) == "" {
		return []types.ListItem{}, nil
	}
	var items []types.ListItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAList, err)
	}
	if items == nil {
		items = []types.ListItem{}
	}
	return items, nil
}

func newItemID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
