package images

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gameshelf/internal/cloud"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// RemoteStore uploads covers to the cloud blob store under
// users/{userId}/covers/{id}.jpg and returns the durable fetch URL.
type RemoteStore struct {
	client *cloud.Client
	logger zerolog.Logger
}

func NewRemoteStore(client *cloud.Client, logger zerolog.Logger) *RemoteStore {
	return &RemoteStore{client: client, logger: logger}
}

func (s *RemoteStore) Save(ctx context.Context, data []byte, userID, existingPath string) (string, error) {
	if existingPath != "" {
		if err := s.Delete(ctx, existingPath); err != nil {
			s.logger.Warn().Err(err).Str("path", existingPath).Msg("failed to delete replaced cover")
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate cover id: %w", err)
	}

	ref, err := s.client.UploadCover(ctx, userID, id+".jpg", data)
	if err != nil {
		return "", err
	}

	s.logger.Debug().Str("path", ref.Path).Str("url", ref.URL).Msg("uploaded cloud cover")
	return ref.URL, nil
}

// Delete accepts either a full HTTP(S) URL or an opaque storage path and
// dispatches on the shape of the reference.
func (s *RemoteStore) Delete(ctx context.Context, path string) error {
	return s.client.DeleteBlob(ctx, storagePath(path))
}

func storagePath(ref string) string {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	p := strings.TrimPrefix(u.Path, "/")
	// Durable URLs serve blobs under the same path the store keys them by.
	p = strings.TrimPrefix(p, "v1/blobs/")
	return p
}
