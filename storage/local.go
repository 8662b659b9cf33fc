package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads under Dir; the router serves Dir at URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalStore{Dir: dir, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = filepath.Base(key)
	if key == "." || key == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	fullpath := filepath.Join(s.Dir, key)
	f, err := os.OpenFile(fullpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(fullpath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return path.Join(s.URLPrefix, key), nil
}
