package games

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"gameshelf/internal/apperr"
	"gameshelf/internal/domain"

	"github.com/rs/zerolog"
)

// LocalRepository stores collections in the local SQLite store, one row
// per (user, game). Statement-level atomicity keeps writes all-or-nothing.
type LocalRepository struct {
	mu     sync.Mutex
	db     *sql.DB
	logger zerolog.Logger
}

func NewLocalRepository(db *sql.DB, logger zerolog.Logger) *LocalRepository {
	return &LocalRepository{db: db, logger: logger}
}

func (r *LocalRepository) LoadAll(ctx context.Context, userID string) ([]domain.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, platform, status, rating, notes, cover_path, updated_at
		 FROM games WHERE user_id = ?`, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to load games")
	}
	defer rows.Close()

	items := []domain.Game{}
	for rows.Next() {
		var (
			g      domain.Game
			status string
			cover  sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Title, &g.Platform, &status, &g.Rating, &g.Notes, &cover, &g.UpdatedAt); err != nil {
			return nil, apperr.Wrap(err, "failed to scan game")
		}
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return nil, apperr.Wrap(err, "corrupt game record %s", g.ID)
		}
		g.Status = parsed
		g.CoverPath = cover.String
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(err, "failed to load games")
	}

	r.logger.Debug().Str("user_id", userID).Int("count", len(items)).Msg("loaded local games")
	return items, nil
}

func (r *LocalRepository) Save(ctx context.Context, game domain.Game, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cover any
	if game.CoverPath != "" {
		cover = game.CoverPath
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO games (user_id, id, title, platform, status, rating, notes, cover_path, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, id) DO UPDATE SET
		   title = excluded.title,
		   platform = excluded.platform,
		   status = excluded.status,
		   rating = excluded.rating,
		   notes = excluded.notes,
		   cover_path = excluded.cover_path,
		   updated_at = excluded.updated_at`,
		userID, game.ID, game.Title, game.Platform, string(game.Status),
		game.Rating, game.Notes, cover, game.UpdatedAt)
	if err != nil {
		return apperr.Wrap(err, "failed to save game %s", game.ID)
	}

	r.logger.Debug().Str("user_id", userID).Str("game_id", game.ID).Msg("saved local game")
	return nil
}

func (r *LocalRepository) Delete(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM games WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return apperr.Wrap(err, "failed to delete games")
	}

	r.logger.Debug().Str("user_id", userID).Int("count", len(ids)).Msg("deleted local games")
	return nil
}

func (r *LocalRepository) Wipe(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE user_id = ?`, userID); err != nil {
		return apperr.Wrap(err, "failed to wipe games")
	}

	r.logger.Info().Str("user_id", userID).Msg("wiped local games")
	return nil
}
