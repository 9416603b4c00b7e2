package kv

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	repo "bakery/internal/repository"

	"github.com/pkg/errors"
)

// FileStorage stores one file per key under dir. Writes go through a temp
// file and a rename so a crash never leaves a half-written cart.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cart dir %s", dir)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read cart %s", key)
	}
	return data, nil
}

func (f *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write cart %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close cart %s", key)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return errors.Wrapf(err, "replace cart %s", key)
	}
	return nil
}

func (f *FileStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "delete cart %s", key)
	}
	return nil
}
