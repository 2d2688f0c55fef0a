// Package images keeps the image registry table and the object bucket in
// step. Every image row names its object key; uploads happen before the
// row write and deletes remove the object before the row.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/storefront/internal/cache"
	"github.com/mesh-intelligence/storefront/internal/objstore"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Registry manages images of every section.
type Registry struct {
	table  types.ImageTable
	bucket objstore.Bucket
	cache  cache.Client
	ttl    time.Duration
	logger zerolog.Logger

	now   func() time.Time
	newID func() string
}

// New returns a registry over table and bucket. c may be nil.
func New(table types.ImageTable, bucket objstore.Bucket, c cache.Client, ttl time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		table:  table,
		bucket: bucket,
		cache:  c,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		newID:  newObjectID,
	}
}

// List returns the images of section ordered by name. An empty section
// lists every image.
func (r *Registry) List(ctx context.Context, section string) ([]*types.Image, error) {
	imgs, err := cache.Fetch(ctx, r.cache, cache.ImagesKey(section), r.ttl,
		func(ctx context.Context) ([]*types.Image, error) {
			return r.table.Fetch(ctx, section)
		})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	return imgs, nil
}

func (r *Registry) Get(ctx context.Context, name string) (*types.Image, error) {
	return r.table.Get(ctx, name)
}

// Add uploads the file under a fresh key in section and then registers
// it. If the row write fails the object is left in the bucket.
func (r *Registry) Add(ctx context.Context, section, filename string, body io.Reader, altText string) (*types.Image, error) {
	if err := validSection(section); err != nil {
		return nil, err
	}
	key := section + "/" + r.newID() + strings.ToLower(path.Ext(filename))
	if err := r.bucket.Upload(ctx, key, body, objstore.UploadOptions{}); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", key, err)
	}

	img := &types.Image{Name: key, Section: section, URL: r.bucket.PublicURL(key), AltText: altText}
	if err := r.table.Upsert(ctx, img); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("image uploaded but not registered")
		return nil, fmt.Errorf("registering %s: %w", key, err)
	}
	r.invalidate(ctx, section)
	return img, nil
}

// Put writes a fixed-name image such as a section background, replacing
// any previous object under name. An existing row keeps its alt text.
func (r *Registry) Put(ctx context.Context, section, name string, body io.Reader) (*types.Image, error) {
	if err := validSection(section); err != nil {
		return nil, err
	}
	img := &types.Image{Name: name, Section: section}
	existing, err := r.table.Get(ctx, name)
	switch {
	case err == nil:
		img.AltText = existing.AltText
	case !errors.Is(err, types.ErrNotFound):
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}

	if err := r.bucket.Upload(ctx, name, body, objstore.UploadOptions{Overwrite: true}); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	img.URL = r.versionedURL(name)
	if err := r.table.Upsert(ctx, img); err != nil {
		return nil, fmt.Errorf("registering %s: %w", name, err)
	}
	r.invalidate(ctx, section)
	if existing != nil && existing.Section != section {
		r.invalidate(ctx, existing.Section)
	}
	return img, nil
}

// Replace overwrites the object of a registered image and refreshes its URL
// with a new version token.
func (r *Registry) Replace(ctx context.Context, name string, body io.Reader) (*types.Image, error) {
	img, err := r.table.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := r.bucket.Upload(ctx, name, body, objstore.UploadOptions{Overwrite: true}); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}
	img.URL = r.versionedURL(name)
	if err := r.table.Upsert(ctx, img); err != nil {
		return nil, fmt.Errorf("updating %s: %w", name, err)
	}
	r.invalidate(ctx, img.Section)
	return img, nil
}

// SetAltText updates the alt text of a registered image.
func (r *Registry) SetAltText(ctx context.Context, name, altText string) (*types.Image, error) {
	img, err := r.table.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	img.AltText = altText
	if err := r.table.Upsert(ctx, img); err != nil {
		return nil, fmt.Errorf("updating %s: %w", name, err)
	}
	r.invalidate(ctx, img.Section)
	return img, nil
}

// Delete removes the object and then the row. A failed object removal
// stops before the row is touched. Either side may already be missing;
// only when both are missing is types.ErrNotFound returned.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if name == "" {
		return types.ErrInvalidName
	}
	img, err := r.table.Get(ctx, name)
	rowMissing := errors.Is(err, types.ErrNotFound)
	if err != nil && !rowMissing {
		return fmt.Errorf("looking up %s: %w", name, err)
	}

	objectMissing := false
	if err := r.bucket.Remove(ctx, name); err != nil {
		if !errors.Is(err, objstore.ErrObjectNotFound) {
			return fmt.Errorf("removing object %s: %w", name, err)
		}
		objectMissing = true
		r.logger.Warn().Str("name", name).Msg("image object already missing")
	}

	if rowMissing {
		if objectMissing {
			return types.ErrNotFound
		}
		r.logger.Warn().Str("name", name).Msg("removed object without registry row")
		r.invalidate(ctx, "")
		return nil
	}

	if err := r.table.Delete(ctx, name); err != nil && !errors.Is(err, types.ErrNotFound) {
		return fmt.Errorf("deleting row %s: %w", name, err)
	}
	r.invalidate(ctx, img.Section)
	return nil
}

func (r *Registry) versionedURL(key string) string {
	return r.bucket.PublicURL(key) + "?v=" + strconv.FormatInt(r.now().UnixMilli(), 10)
}

func (r *Registry) invalidate(ctx context.Context, section string) {
	keys := []string{cache.ImagesKey("")}
	if section != "" {
		keys = append(keys, cache.ImagesKey(section))
	}
	cache.Invalidate(ctx, r.cache, r.logger, keys...)
}

func validSection(section string) error {
	if section == "" {
		return types.ErrInvalidSection
	}
	if strings.ContainsAny(section, `/\`) || section == "." || section == ".." {
		return fmt.Errorf("%w: %q", types.ErrInvalidSection, section)
	}
	return nil
}

func newObjectID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
