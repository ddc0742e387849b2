package storage

import (
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// BlobStore holds uploaded images: registration face captures and
// question illustrations.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	URL(key string) string
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageKey builds a fresh key under prefix for an upload of contentType.
// ok is false for anything but JPEG, PNG or WebP.
func ImageKey(prefix, contentType string) (key string, ok bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExt[ct]
	if !ok {
		return "", false
	}
	return path.Join(prefix, uuid.NewString()+ext), true
}
