package imagestore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a key names no stored image.
var ErrNotFound = errors.New("image not found")

// ImageStore persists uploaded point images and item icons. Keys are the
// bare filenames recorded in the image column of points and items.
type ImageStore interface {
	Save(ctx context.Context, originalName, mimeType string, r io.Reader) (key string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
