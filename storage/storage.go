package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type BlobStore interface {
	// Put stores the object under key and returns its public URL.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Backend() string
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds a collision-free key that keeps a readable trace of the
// client filename.
func ObjectKey(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, ".-")
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	if name == "" {
		name = "image"
	}
	return uuid.NewString() + "-" + name
}
