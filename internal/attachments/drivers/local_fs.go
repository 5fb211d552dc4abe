package drivers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalFS stores blobs on local disk. Keys carry a kind prefix
// ("photo/<uuid>.jpg"), which doubles as the directory layout.
type LocalFS struct {
	BaseDir string
	BaseURL string
}

// NewLocalFS creates a local blob store rooted at baseDir. baseURL is the
// base URL used to generate public links (e.g. /api/attachments).
func NewLocalFS(baseDir, baseURL string) (*LocalFS, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalFS{BaseDir: baseDir, BaseURL: baseURL}, nil
}

// fullPath resolves a key inside the base directory and refuses traversal.
func (d *LocalFS) fullPath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(d.BaseDir, cleaned), nil
}

func (d *LocalFS) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	path, err := d.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write blob content: %w", err)
	}

	return nil
}

func (d *LocalFS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := d.fullPath(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (d *LocalFS) Remove(ctx context.Context, key string) error {
	path, err := d.fullPath(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *LocalFS) PublicURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.BaseURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", d.BaseURL, key), nil
}
