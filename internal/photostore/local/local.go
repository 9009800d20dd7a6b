// Package local keeps photos as flat files under one directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/photostore"
)

type LocalPhotoStore struct {
	root   string
	logger *slog.Logger
}

func NewLocalPhotoStore(basePath string, logger *slog.Logger) (*LocalPhotoStore, error) {
	root, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve photo directory: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{root: root, logger: logger}, nil
}

// Save writes to a temporary file and renames it into place, so a key never
// names a partially written photo.
func (s *LocalPhotoStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	key := photostore.NewKey(prefix, mimeType)
	dest, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	discard := func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			s.logger.Error("failed to remove temp file", "path", tmp.Name(), "error", rerr)
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		discard()
		return "", fmt.Errorf("failed to write photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		return "", fmt.Errorf("failed to close photo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		discard()
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		discard()
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	return key, nil
}

func (s *LocalPhotoStore) Get(_ context.Context, storageKey string) (io.ReadCloser, string, error) {
	path, err := s.resolve(storageKey)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", errs.NotFound("photo")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	return f, photostore.ExtToMimeType(storageKey), nil
}

func (s *LocalPhotoStore) Delete(_ context.Context, storageKey string) error {
	path, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return errs.NotFound("photo")
	}
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// resolve maps a storage key to a file directly inside root. Keys are flat:
// separators and traversal are rejected.
func (s *LocalPhotoStore) resolve(storageKey string) (string, error) {
	if storageKey == "" || strings.HasPrefix(storageKey, ".") || strings.ContainsAny(storageKey, `/\`) {
		return "", errs.BadRequest("invalid storage key")
	}
	path := filepath.Join(s.root, storageKey)
	if filepath.Dir(path) != s.root {
		return "", errs.BadRequest("invalid storage key")
	}
	return path, nil
}
