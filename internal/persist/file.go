package persist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileKV stores each key as a 0600 file inside a namespace directory.
type FileKV struct {
	dir string
}

// NewFileKV creates (if needed) dir/namespace and returns a store rooted there.
func NewFileKV(dir, namespace string) (*FileKV, error) {
	root := filepath.Join(dir, namespace)
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("persist.NewFileKV: %w", err)
	}
	return &FileKV{dir: root}, nil
}

// Dir is the namespace directory.
func (f *FileKV) Dir() string {
	return f.dir
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key))
}

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist.FileKV.Get: %w", err)
	}
	return data, nil
}

// Set writes to a temp file and renames it over the target so readers never see a partial value.
func (f *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("persist.FileKV.Set: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("persist.FileKV.Set: %w", err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("persist.FileKV.Set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist.FileKV.Set: %w", err)
	}
	if err := os.Rename(tmpPath, f.path(key)); err != nil {
		return fmt.Errorf("persist.FileKV.Set: %w", err)
	}
	return nil
}

func (f *FileKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("persist.FileKV.Delete: %w", err)
	}
	return nil
}
