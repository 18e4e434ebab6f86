// Package storage keeps attachment bytes outside the database. Only the
// returned key and derived metadata are persisted.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"practice-service/internal/clock"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Store persists blobs under opaque keys.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (key string, size int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// LocalStore writes blobs below a root directory on the local filesystem.
type LocalStore struct {
	root    string
	baseURL string
	clock   clock.Clock
	log     *zap.Logger
}

func NewLocalStore(root, baseURL string, clk clock.Clock, log *zap.Logger) *LocalStore {
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clk,
		log:     log,
	}
}

// Save writes r under attachments/YYYY/MM/<uuid><ext>, keeping only the
// extension of the original name.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	now := s.clock.Now()
	key := path.Join(
		"attachments",
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		uuid.NewString()+strings.ToLower(filepath.Ext(name)),
	)

	full := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", 0, fmt.Errorf("create storage directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}

	s.log.Debug("Blob stored", zap.String("key", key), zap.Int64("size", size))
	return key, size, nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	return os.Open(s.fullPath(key))
}

// Delete removes the blob; a missing blob is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.fullPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// URL is the public address of key.
func (s *LocalStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}

func (s *LocalStore) fullPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func validKey(key string) error {
	if key == "" || path.IsAbs(key) || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
