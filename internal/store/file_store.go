package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// fileStore implements Store with one JSON file per key under a state
// directory. It is the default backend and mirrors single-user local
// storage: small documents, synchronous writes, no locking across
// processes.
type fileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	return &fileStore{
		dir:    dir,
		logger: logger.With().Str("component", "file-store").Logger(),
	}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads and parses the document under key. A missing file reports
// the key as absent; an unparseable file is deleted and also reported
// as absent.
func (s *fileStore) Load(ctx context.Context, key string, out any) (bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Str("code", model.ErrCodeCorruptState).
			Msg("corrupt persisted state, resetting key")

		if rmErr := os.Remove(s.path(key)); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.logger.Error().Err(rmErr).Str("key", key).Msg("failed to remove corrupt key")
		}
		return false, nil
	}

	return true, nil
}

// Save serializes value and writes it under key, overwriting any
// previous document.
func (s *fileStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize key %s: %w", key, err)
	}

	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("state saved")

	return nil
}

// Remove deletes the document under key.
func (s *fileStore) Remove(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
