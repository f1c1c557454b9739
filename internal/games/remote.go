package games

import (
	"context"

	"gameshelf/internal/cloud"
	"gameshelf/internal/domain"

	"github.com/rs/zerolog"
)

// RemoteRepository reads and writes per-user game documents through the
// cloud sync service.
type RemoteRepository struct {
	client *cloud.Client
	logger zerolog.Logger
}

func NewRemoteRepository(client *cloud.Client, logger zerolog.Logger) *RemoteRepository {
	return &RemoteRepository{client: client, logger: logger}
}

// LoadAll tolerates malformed documents: a record whose status does not
// parse is dropped and logged instead of failing the whole read.
func (r *RemoteRepository) LoadAll(ctx context.Context, userID string) ([]domain.Game, error) {
	docs, err := r.client.ListGames(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Game, 0, len(docs))
	for _, doc := range docs {
		status, err := domain.ParseStatus(doc.Status)
		if err != nil {
			r.logger.Warn().
				Str("user_id", userID).
				Str("game_id", doc.ID).
				Str("status", doc.Status).
				Msg("dropping game document with unparseable status")
			continue
		}
		g := domain.Game{
			ID:        doc.ID,
			Title:     doc.Title,
			Platform:  doc.Platform,
			Status:    status,
			Rating:    doc.Rating,
			Notes:     doc.Notes,
			UpdatedAt: doc.UpdatedAt,
		}
		if doc.CoverPath != nil {
			g.CoverPath = *doc.CoverPath
		}
		items = append(items, g)
	}

	r.logger.Debug().Str("user_id", userID).Int("count", len(items)).Msg("loaded cloud games")
	return items, nil
}

func (r *RemoteRepository) Save(ctx context.Context, game domain.Game, userID string) error {
	doc := cloud.GameDoc{
		ID:        game.ID,
		Title:     game.Title,
		Platform:  game.Platform,
		Status:    string(game.Status),
		Rating:    game.Rating,
		Notes:     game.Notes,
		UpdatedAt: game.UpdatedAt,
	}
	if game.CoverPath != "" {
		doc.CoverPath = &game.CoverPath
	}

	if err := r.client.PutGame(ctx, userID, doc); err != nil {
		return err
	}
	r.logger.Debug().Str("user_id", userID).Str("game_id", game.ID).Msg("saved cloud game")
	return nil
}

func (r *RemoteRepository) Delete(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if err := r.client.DeleteGame(ctx, userID, id); err != nil {
			return err
		}
		r.logger.Debug().Str("user_id", userID).Str("game_id", id).Msg("deleted cloud game")
	}
	return nil
}

func (r *RemoteRepository) Wipe(ctx context.Context, userID string) error {
	if err := r.client.WipeGames(ctx, userID); err != nil {
		return err
	}
	r.logger.Info().Str("user_id", userID).Msg("wiped cloud games")
	return nil
}
