package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gameshelf/internal/config"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// LocalStore writes cover blobs into a directory under the data dir,
// write-temp-then-rename so a crash never leaves a partial file.
type LocalStore struct {
	mu     sync.Mutex
	dir    string
	logger zerolog.Logger
}

func NewLocalStore(cfg *config.Config, logger zerolog.Logger) *LocalStore {
	return &LocalStore{
		dir:    filepath.Join(cfg.DataDir, "covers"),
		logger: logger,
	}
}

func (s *LocalStore) Save(ctx context.Context, data []byte, userID, existingPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingPath != "" {
		if err := s.remove(existingPath); err != nil {
			s.logger.Warn().Err(err).Str("path", existingPath).Msg("failed to delete replaced cover")
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate cover id: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.jpg", userID, id))

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to finalize cover: %w", err)
	}

	s.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("saved local cover")
	return path, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(path)
}

func (s *LocalStore) remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cover: %w", err)
	}
	return nil
}
