// Package blob stores uploaded images on local disk and serves them
// back by URL.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("upload exceeds size limit")

// ErrUnsupportedType is returned for content types other than images.
var ErrUnsupportedType = errors.New("unsupported content type")

// Store persists uploaded files and returns URLs to fetch them back.
type Store interface {
	// Put saves the file and returns its public URL.
	Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskStore writes uploads under a single directory. Filenames are
// timestamped so concurrent uploads never collide on the same name.
type DiskStore struct {
	dir     string
	baseURL string
	maxSize int64
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir, baseURL string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

// Put streams the upload to disk. The stored name is derived from the
// upload time plus a sanitized form of the original name; the original
// name never becomes a path component on its own.
func (s *DiskStore) Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	ext, ok := extByType[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), sanitize(filename), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxSize {
		os.Remove(path)
		return "", ErrTooLarge
	}

	return s.baseURL + "/" + name, nil
}

// Dir returns the directory uploads are written to, for static serving.
func (s *DiskStore) Dir() string { return s.dir }

// sanitize keeps the base name readable but safe for a URL path segment.
func sanitize(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := b.String()
	if out == "" {
		out = "upload"
	}
	if len(out) > 48 {
		out = out[:48]
	}
	return out
}
