// Package photostore keeps uploaded image bytes. Records that point at them
// live in the database under the returned storage key.
package photostore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// NewKey builds a flat, unique storage key whose extension encodes mimeType.
func NewKey(prefix, mimeType string) string {
	return fmt.Sprintf("%s_%s%s", prefix, uuid.NewString(), MimeTypeToExt(mimeType))
}

// imageTypes pairs each accepted image MIME type with its key extension.
var imageTypes = []struct{ mime, ext string }{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
	{"image/webp", ".webp"},
}

// MimeTypeToExt returns the key extension for mimeType, defaulting to .jpg.
func MimeTypeToExt(mimeType string) string {
	for _, t := range imageTypes {
		if t.mime == mimeType {
			return t.ext
		}
	}
	return ".jpg"
}

// ExtToMimeType infers a MIME type from the extension of key, defaulting to
// image/jpeg.
func ExtToMimeType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for _, t := range imageTypes {
		if t.ext == ext {
			return t.mime
		}
	}
	return "image/jpeg"
}
