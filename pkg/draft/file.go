package draft

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeKey = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// FileStore keeps one JSON file per key inside a directory. Writes go through
// a temporary file and a rename so a crash never leaves a torn draft.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating it when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("draft: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, unsafeKey.ReplaceAllString(key, "_")+".json")
}

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("draft: save %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("draft: save %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("draft: save %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("draft: save %s: %w", key, err)
	}
	return nil
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("draft: load %s: %w", key, err)
	}
	return raw, nil
}

// Clear implements Store.
func (f *FileStore) Clear(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("draft: clear %s: %w", key, err)
	}
	return nil
}
