package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/internal/images"
	"github.com/mesh-intelligence/storefront/internal/objstore"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Service errors.
var (
	ErrUnknownForm   = errors.New("unknown form")
	ErrImageRequired = errors.New("image file is required")
)

// Upload is a file submitted with a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Sections submits the content section forms.
type Sections struct {
	content *content.Adapter
}

func NewSections(a *content.Adapter) *Sections {
	return &Sections{content: a}
}

// Submit validates input against the named form and writes every field of
// the form to its section.
func (s *Sections) Submit(ctx context.Context, form string, input map[string]string) error {
	ss, ok := SectionForms[form]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownForm, form)
	}
	vals, err := ss.Schema.Validate(input)
	if err != nil {
		return err
	}
	updates := make([]content.Update, 0, len(ss.Schema.Fields))
	for _, name := range ss.Schema.Names() {
		updates = append(updates, content.Update{Section: ss.Section, Element: name, Value: content.Text(vals.String(name))})
	}
	return s.content.Write(ctx, updates)
}

// Products edits catalog products and their images.
type Products struct {
	table  types.ProductTable
	bucket objstore.Bucket
	cache  cache.Client
	logger zerolog.Logger
}

func NewProducts(table types.ProductTable, bucket objstore.Bucket, c cache.Client, logger zerolog.Logger) *Products {
	return &Products{table: table, bucket: bucket, cache: c, logger: logger}
}

// Create validates input, uploads the image if any, then writes the row.
// A failed row write leaves the uploaded image in the bucket.
func (p *Products) Create(ctx context.Context, input map[string]string, img *Upload) (*types.Product, error) {
	vals, err := ProductSchema.Validate(input)
	if err != nil {
		return nil, err
	}
	prod := productFrom(vals)
	if img != nil {
		url, err := p.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		prod.ImageURL = url
	}
	if _, err := p.table.Set(ctx, "", prod); err != nil {
		if prod.ImageURL != "" {
			p.logger.Warn().Err(err).Str("image_url", prod.ImageURL).Msg("product image uploaded but product not saved")
		}
		return nil, fmt.Errorf("creating product: %w", err)
	}
	cache.Invalidate(ctx, p.cache, p.logger, cache.KeyProducts)
	return prod, nil
}

// Update overwrites product id. A new image replaces the old one, which is
// removed from the bucket after the row is written.
func (p *Products) Update(ctx context.Context, id string, input map[string]string, img *Upload) (*types.Product, error) {
	existing, err := p.table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	vals, err := ProductSchema.Validate(input)
	if err != nil {
		return nil, err
	}
	prod := productFrom(vals)
	prod.ImageURL = existing.ImageURL
	if img != nil {
		url, err := p.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		prod.ImageURL = url
	}
	if _, err := p.table.Set(ctx, id, prod); err != nil {
		return nil, fmt.Errorf("updating product %s: %w", id, err)
	}
	if img != nil && existing.ImageURL != "" {
		p.removeImage(ctx, existing.ImageURL)
	}
	cache.Invalidate(ctx, p.cache, p.logger, cache.KeyProducts)
	return prod, nil
}

// Delete removes the product's image and then the product. Image removal
// failures are logged and do not stop the delete.
func (p *Products) Delete(ctx context.Context, id string) error {
	existing, err := p.table.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ImageURL != "" {
		p.removeImage(ctx, existing.ImageURL)
	}
	if err := p.table.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	cache.Invalidate(ctx, p.cache, p.logger, cache.KeyProducts)
	return nil
}

func (p *Products) upload(ctx context.Context, img *Upload) (string, error) {
	key := "products/" + newKeyID() + strings.ToLower(path.Ext(img.Filename))
	if err := p.bucket.Upload(ctx, key, img.Body, objstore.UploadOptions{}); err != nil {
		return "", fmt.Errorf("uploading product image: %w", err)
	}
	return p.bucket.PublicURL(key), nil
}

// removeImage deletes an image stored in this bucket. URLs pointing
// elsewhere are left alone.
func (p *Products) removeImage(ctx context.Context, imageURL string) {
	key, ok := p.bucket.KeyFromURL(imageURL)
	if !ok {
		return
	}
	if err := p.bucket.Remove(ctx, key); err != nil && !errors.Is(err, objstore.ErrObjectNotFound) {
		p.logger.Warn().Err(err).Str("key", key).Msg("removing product image failed")
	}
}

func productFrom(vals Values) *types.Product {
	return &types.Product{
		Name:        vals.String("name"),
		Description: vals.String("description"),
		Price:       vals.Price("price"),
		Weight:      vals.String("weight"),
		CategoryID:  vals.String("category_id"),
	}
}

// FAQs edits the FAQ list.
type FAQs struct {
	table  types.FAQTable
	cache  cache.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewFAQs(table types.FAQTable, c cache.Client, ttl time.Duration, logger zerolog.Logger) *FAQs {
	return &FAQs{table: table, cache: c, ttl: ttl, logger: logger}
}

// List returns every FAQ in creation order.
func (f *FAQs) List(ctx context.Context) ([]*types.FAQ, error) {
	return cache.Fetch(ctx, f.cache, cache.KeyFAQs, f.ttl, func(ctx context.Context) ([]*types.FAQ, error) {
		return f.table.Fetch(ctx, nil)
	})
}

func (f *FAQs) Create(ctx context.Context, input map[string]string) (*types.FAQ, error) {
	return f.save(ctx, "", input)
}

func (f *FAQs) Update(ctx context.Context, id string, input map[string]string) (*types.FAQ, error) {
	if _, err := f.table.Get(ctx, id); err != nil {
		return nil, err
	}
	return f.save(ctx, id, input)
}

func (f *FAQs) Delete(ctx context.Context, id string) error {
	if err := f.table.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting faq %s: %w", id, err)
	}
	cache.Invalidate(ctx, f.cache, f.logger, cache.KeyFAQs)
	return nil
}

func (f *FAQs) save(ctx context.Context, id string, input map[string]string) (*types.FAQ, error) {
	vals, err := FAQSchema.Validate(input)
	if err != nil {
		return nil, err
	}
	faq := &types.FAQ{Question: vals.String("question"), Answer: vals.String("answer")}
	if _, err := f.table.Set(ctx, id, faq); err != nil {
		return nil, fmt.Errorf("saving faq: %w", err)
	}
	cache.Invalidate(ctx, f.cache, f.logger, cache.KeyFAQs)
	return faq, nil
}

// Categories edits product categories. Deleting one leaves its products
// pointing at the removed id.
type Categories struct {
	table  types.CategoryTable
	cache  cache.Client
	logger zerolog.Logger
}

func NewCategories(table types.CategoryTable, c cache.Client, logger zerolog.Logger) *Categories {
	return &Categories{table: table, cache: c, logger: logger}
}

func (c *Categories) Create(ctx context.Context, input map[string]string) (*types.Category, error) {
	vals, err := CategorySchema.Validate(input)
	if err != nil {
		return nil, err
	}
	cat := &types.Category{Name: vals.String("name")}
	if _, err := c.table.Set(ctx, "", cat); err != nil {
		if errors.Is(err, types.ErrDuplicateName) {
			return nil, &ValidationError{Fields: map[string]string{"name": "Ya existe una categoría con ese nombre"}}
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	cache.Invalidate(ctx, c.cache, c.logger, cache.KeyCategories)
	return cat, nil
}

func (c *Categories) Delete(ctx context.Context, id string) error {
	if err := c.table.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	cache.Invalidate(ctx, c.cache, c.logger, cache.KeyCategories)
	return nil
}

// Images validates image forms and hands them to the registry.
type Images struct {
	registry *images.Registry
}

func NewImages(r *images.Registry) *Images {
	return &Images{registry: r}
}

// Add uploads a gallery image. Both the file and the alt text are required.
func (i *Images) Add(ctx context.Context, section string, img *Upload, input map[string]string) (*types.Image, error) {
	vals, err := ImageSchema.Validate(input)
	if img == nil {
		fields := map[string]string{"image": "La imagen es requerida"}
		var ve *ValidationError
		if errors.As(err, &ve) {
			for k, v := range ve.Fields {
				fields[k] = v
			}
		}
		return nil, &ValidationError{Fields: fields}
	}
	if err != nil {
		return nil, err
	}
	return i.registry.Add(ctx, section, img.Filename, img.Body, vals.String("alt_text"))
}

// Edit changes the alt text and, when img is set, replaces the file.
func (i *Images) Edit(ctx context.Context, name string, img *Upload, input map[string]string) (*types.Image, error) {
	vals, err := ImageSchema.Validate(input)
	if err != nil {
		return nil, err
	}
	if img != nil {
		if _, err := i.registry.Replace(ctx, name, img.Body); err != nil {
			return nil, err
		}
	}
	return i.registry.SetAltText(ctx, name, vals.String("alt_text"))
}

// Slot uploads a fixed-name section image such as home_background.
func (i *Images) Slot(ctx context.Context, section, name string, img *Upload) (*types.Image, error) {
	if img == nil {
		return nil, ErrImageRequired
	}
	return i.registry.Put(ctx, section, name, img.Body)
}

func (i *Images) Delete(ctx context.Context, name string) error {
	return i.registry.Delete(ctx, name)
}

func newKeyID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
