// Package objstore stores uploaded image files in a named bucket and maps
// object keys to public URLs.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Object errors.
var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// uploadPrefix names the temporary file an upload writes before renaming.
const uploadPrefix = ".upload-"

// UploadOptions controls Upload. Without Overwrite an existing key fails
// with ErrObjectExists.
type UploadOptions struct {
	Overwrite bool
}

// Bucket is a flat object store addressed by slash-separated keys.
type Bucket interface {
	Upload(ctx context.Context, key string, r io.Reader, opts UploadOptions) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
	// KeyFromURL reverses PublicURL, ignoring any query string. It
	// reports false for URLs outside this bucket.
	KeyFromURL(rawURL string) (string, bool)
}

var _ Bucket = (*FSBucket)(nil)

// FSBucket keeps objects as files on an afero filesystem.
type FSBucket struct {
	fs      afero.Fs
	name    string
	baseURL string
}

// NewFSBucket returns a bucket named name on fs. Public URLs are
// <baseURL>/<name>/<key>.
func NewFSBucket(fs afero.Fs, name, baseURL string) *FSBucket {
	return &FSBucket{fs: fs, name: name, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewOSBucket stores objects under dir on the local disk.
func NewOSBucket(dir, name, baseURL string) (*FSBucket, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating bucket dir: %w", err)
	}
	return NewFSBucket(afero.NewBasePathFs(afero.NewOsFs(), dir), name, baseURL), nil
}

// Name returns the bucket name.
func (b *FSBucket) Name() string { return b.name }

// Upload writes r under key. Overwrites go through a temporary file and a
// rename so readers never see a partial object.
func (b *FSBucket) Upload(ctx context.Context, key string, r io.Reader, opts UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := objectPath(key)
	if err != nil {
		return err
	}

	exists, err := afero.Exists(b.fs, p)
	if err != nil {
		return fmt.Errorf("checking object %s: %w", key, err)
	}
	if exists && !opts.Overwrite {
		return fmt.Errorf("%w: %s", ErrObjectExists, key)
	}

	tmp := path.Join(path.Dir(p), uploadPrefix+uuid.NewString())
	if err := afero.WriteReader(b.fs, tmp, r); err != nil {
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := b.fs.Rename(tmp, p); err != nil {
		_ = b.fs.Remove(tmp)
		return fmt.Errorf("committing object %s: %w", key, err)
	}
	return nil
}

// Open returns the object's content. The caller closes it.
func (b *FSBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := objectPath(key)
	if err != nil {
		return nil, err
	}
	f, err := b.fs.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", key, err)
	}
	return f, nil
}

// Remove deletes the object, returning ErrObjectNotFound if it is absent.
func (b *FSBucket) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := objectPath(key)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(b.fs, p)
	if err != nil {
		return fmt.Errorf("checking object %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	if err := b.fs.Remove(p); err != nil {
		return fmt.Errorf("removing object %s: %w", key, err)
	}
	return nil
}

func (b *FSBucket) PublicURL(key string) string {
	return b.prefix() + (&url.URL{Path: key}).EscapedPath()
}

func (b *FSBucket) KeyFromURL(rawURL string) (string, bool) {
	rest, ok := strings.CutPrefix(rawURL, b.prefix())
	if !ok {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	key, err := url.PathUnescape(rest)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// FileSystem exposes the bucket's objects read-only for an HTTP file
// server. Directories and in-progress uploads do not exist through it.
func (b *FSBucket) FileSystem() http.FileSystem {
	return objectsOnly{afero.NewHttpFs(afero.NewReadOnlyFs(b.fs)).Dir("/")}
}

type objectsOnly struct {
	fs http.FileSystem
}

func (o objectsOnly) Open(name string) (http.File, error) {
	if strings.HasPrefix(path.Base(name), uploadPrefix) {
		return nil, os.ErrNotExist
	}
	f, err := o.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func (b *FSBucket) prefix() string {
	return b.baseURL + "/" + b.name + "/"
}

// objectPath validates key and returns its absolute path on the filesystem.
func objectPath(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.Clean(key) != key || key == ".." || strings.HasPrefix(key, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return "/" + key, nil
}
