package types

import (
	"context"
	"errors"
)

// Store defines backend-agnostic access to the storefront tables.
// Callers attach to a backend, use the typed table accessors, and detach
// when done. Every mutation is a single independent write; there is no
// cross-row transaction and no version check, so the last write wins.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(ctx context.Context, config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrStoreDetached.
	Detach() error

	Content() ContentTable
	Images() ImageTable
	Products() ProductTable
	Categories() CategoryTable
	FAQs() FAQTable
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Filter narrows a Fetch. Keys are table specific; a value of the wrong
// type yields ErrInvalidFilter. A nil filter returns every row.
type Filter map[string]any

// ContentTable stores site content entries keyed by (section, element).
type ContentTable interface {
	// Get returns ErrNotFound when the pair has no entry.
	Get(ctx context.Context, section, element string) (*ContentEntry, error)

	// Section returns every entry of a section ordered by element.
	Section(ctx context.Context, section string) ([]*ContentEntry, error)

	// All returns every entry ordered by section then element.
	All(ctx context.Context) ([]*ContentEntry, error)

	// Upsert inserts or overwrites the entry for its (section, element).
	Upsert(ctx context.Context, entry *ContentEntry) error

	Delete(ctx context.Context, section, element string) error
}

// ImageTable is the image registry keyed by the object name.
type ImageTable interface {
	Get(ctx context.Context, name string) (*Image, error)

	// Fetch returns the images of a section ordered by name. An empty
	// section returns every image.
	Fetch(ctx context.Context, section string) ([]*Image, error)

	Upsert(ctx context.Context, img *Image) error
	Delete(ctx context.Context, name string) error
}

// ProductTable stores catalog products. Set creates a product with a
// generated UUID v7 when id is empty and updates it otherwise. Fetch orders
// by product_id ascending, which is insertion order for generated ids.
// Filter keys: "category_id" (string), "limit" (int).
type ProductTable interface {
	Get(ctx context.Context, id string) (*Product, error)
	Set(ctx context.Context, id string, p *Product) (string, error)
	Delete(ctx context.Context, id string) error
	Fetch(ctx context.Context, filter Filter) ([]*Product, error)
}

// CategoryTable stores product categories, ordered by name on Fetch.
// Deleting a category never touches products that reference it.
// Filter keys: "name" (string).
type CategoryTable interface {
	Get(ctx context.Context, id string) (*Category, error)
	Set(ctx context.Context, id string, c *Category) (string, error)
	Delete(ctx context.Context, id string) error
	Fetch(ctx context.Context, filter Filter) ([]*Category, error)
}

// FAQTable stores question and answer pairs ordered by faq_id.
// Filter keys: "limit" (int).
type FAQTable interface {
	Get(ctx context.Context, id string) (*FAQ, error)
	Set(ctx context.Context, id string, f *FAQ) (string, error)
	Delete(ctx context.Context, id string) error
	Fetch(ctx context.Context, filter Filter) ([]*FAQ, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Record validation errors.
var (
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidSection = errors.New("section must not be empty")
	ErrInvalidElement = errors.New("element must not be empty")
	ErrInvalidKind    = errors.New("invalid content kind")
	ErrInvalidContent = errors.New("content must not be empty")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrInvalidURL     = errors.New("url must not be empty")
	ErrDuplicateName  = errors.New("duplicate name")
)
