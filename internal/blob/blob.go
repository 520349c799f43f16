// Package blob abstracts object storage for delegate uploads (profile
// photos, identification documents) and normalizes images before upload.
package blob

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=blob.go -destination=mocks/mocks.go -package=mocks Storage

// Storage uploads an object and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// ObjectKey builds an object key "<folder>/<uuid><ext>". The random name
// prevents collisions and stops uploaded filenames from leaking into URLs.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)
}
