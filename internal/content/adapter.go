package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Section maps element names to values.
type Section map[string]Value

// Get returns the element's value and whether it exists.
func (s Section) Get(element string) (Value, bool) {
	v, ok := s[element]
	return v, ok
}

// Text returns the stored form of element, or "" when absent.
func (s Section) Text(element string) string {
	return s[element].String()
}

// Decode unmarshals element into dst. A missing element is ErrNotFound.
func (s Section) Decode(element string, dst any) error {
	v, ok := s[element]
	if !ok {
		return types.ErrNotFound
	}
	return v.Decode(dst)
}

// Update is one (section, element, value) write.
type Update struct {
	Section string
	Element string
	Value   Value
}

// WriteError reports the update that stopped a Write. Updates before Index
// are committed; Index and later are not.
type WriteError struct {
	Section string
	Element string
	Index   int
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s.%s (update %d): %v", e.Section, e.Element, e.Index, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Adapter reads sections through the cache and writes entries to the
// content table.
type Adapter struct {
	table  types.ContentTable
	cache  cache.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New returns an adapter over table. c may be nil to disable caching.
func New(table types.ContentTable, c cache.Client, ttl time.Duration, logger zerolog.Logger) *Adapter {
	return &Adapter{table: table, cache: c, ttl: ttl, logger: logger}
}

// Read returns every element of section. An unknown section is empty.
func (a *Adapter) Read(ctx context.Context, section string) (Section, error) {
	entries, err := cache.Fetch(ctx, a.cache, cache.ContentKey(section), a.ttl,
		func(ctx context.Context) ([]*types.ContentEntry, error) {
			return a.table.Section(ctx, section)
		})
	if err != nil {
		return nil, fmt.Errorf("reading section %s: %w", section, err)
	}
	out := make(Section, len(entries))
	for _, e := range entries {
		out[e.Element] = FromEntry(e)
	}
	return out, nil
}

// ReadElement returns a single value, or types.ErrNotFound.
func (a *Adapter) ReadElement(ctx context.Context, section, element string) (Value, error) {
	s, err := a.Read(ctx, section)
	if err != nil {
		return Value{}, err
	}
	v, ok := s.Get(element)
	if !ok {
		return Value{}, fmt.Errorf("%s.%s: %w", section, element, types.ErrNotFound)
	}
	return v, nil
}

// Write upserts each update in order. The first failure stops the loop and
// is returned as a *WriteError; earlier updates stay committed. Every
// section touched is invalidated, including on failure.
func (a *Adapter) Write(ctx context.Context, updates []Update) error {
	touched := map[string]bool{}
	defer func() {
		keys := make([]string, 0, len(touched))
		for s := range touched {
			keys = append(keys, cache.ContentKey(s))
		}
		sort.Strings(keys)
		cache.Invalidate(ctx, a.cache, a.logger, keys...)
	}()

	for i, u := range updates {
		entry := &types.ContentEntry{
			Section: u.Section,
			Element: u.Element,
			Kind:    u.Value.Kind(),
			Value:   u.Value.String(),
		}
		if err := a.table.Upsert(ctx, entry); err != nil {
			return &WriteError{Section: u.Section, Element: u.Element, Index: i, Err: err}
		}
		touched[u.Section] = true
	}
	a.logger.Debug().Int("updates", len(updates)).Msg("content written")
	return nil
}

// WriteSection writes every element of values into section, in element
// name order.
func (a *Adapter) WriteSection(ctx context.Context, section string, values Section) error {
	elements := make([]string, 0, len(values))
	for el := range values {
		elements = append(elements, el)
	}
	sort.Strings(elements)

	updates := make([]Update, 0, len(elements))
	for _, el := range elements {
		updates = append(updates, Update{Section: section, Element: el, Value: values[el]})
	}
	return a.Write(ctx, updates)
}

// Delete removes one element.
func (a *Adapter) Delete(ctx context.Context, section, element string) error {
	if err := a.table.Delete(ctx, section, element); err != nil {
		return fmt.Errorf("deleting %s.%s: %w", section, element, err)
	}
	cache.Invalidate(ctx, a.cache, a.logger, cache.ContentKey(section))
	return nil
}
