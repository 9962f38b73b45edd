package ports

import (
	"context"
	"io"
)

// ImageStore uploads an image and returns a URL that references it.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
