package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"gameshelf/internal/apperr"
	"gameshelf/internal/constants"
	"gameshelf/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// LocalService keeps the identity set and the current-session pointer in
// the local store. Every mutation runs inside one transaction so a crash
// never leaves a half-updated identity set. A per-instance mutex gives the
// backend a single point of entry.
type LocalService struct {
	mu     sync.Mutex
	db     *sql.DB
	logger zerolog.Logger
}

func NewLocalService(db *sql.DB, logger zerolog.Logger) *LocalService {
	return &LocalService{db: db, logger: logger}
}

func (s *LocalService) Restore(ctx context.Context) *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile domain.UserProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email FROM session s JOIN users u ON u.id = s.user_id WHERE s.slot = 0`,
	).Scan(&profile.ID, &profile.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn().Err(err).Msg("session restore failed, treating as signed out")
		}
		return nil
	}

	s.logger.Info().Str("user_id", profile.ID).Msg("restored local session")
	return &profile
}

func (s *LocalService) SignIn(ctx context.Context, email, password string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		profile domain.UserProfile
		hash    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ? COLLATE NOCASE`, email,
	).Scan(&profile.ID, &profile.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return domain.UserProfile{}, apperr.Wrap(err, "failed to look up account")
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.UserProfile{}, apperr.ErrInvalidCredentials
	}

	if err := s.setSession(ctx, profile.ID); err != nil {
		return domain.UserProfile{}, err
	}

	s.logger.Info().Str("user_id", profile.ID).Msg("local sign-in")
	return profile, nil
}

func (s *LocalService) Register(ctx context.Context, email, password string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(password) < constants.MinPasswordLength {
		return domain.UserProfile{}, apperr.ErrWeakPassword
	}
	taken, err := s.emailTaken(ctx, email, "")
	if err != nil {
		return domain.UserProfile{}, err
	}
	if taken {
		return domain.UserProfile{}, apperr.ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserProfile{}, apperr.Wrap(err, "failed to hash password")
	}

	profile := domain.UserProfile{
		ID:    uuid.New().String(),
		Email: strings.ToLower(email),
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
			profile.ID, profile.Email, string(hash),
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session (slot, user_id) VALUES (0, ?)
			 ON CONFLICT (slot) DO UPDATE SET user_id = excluded.user_id`,
			profile.ID,
		)
		return err
	})
	if err != nil {
		return domain.UserProfile{}, apperr.Wrap(err, "failed to create account")
	}

	s.logger.Info().Str("user_id", profile.ID).Msg("local account registered")
	return profile, nil
}

// SendPasswordReset reports an unknown email as invalid credentials. The
// remote backend deliberately does not share this behaviour.
func (s *LocalService) SendPasswordReset(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.emailTaken(ctx, email, "")
	if err != nil {
		return err
	}
	if !taken {
		return apperr.ErrInvalidCredentials
	}
	return nil
}

func (s *LocalService) UpdateEmail(ctx context.Context, currentPassword, newEmail string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.verifyCurrent(ctx, currentPassword)
	if err != nil {
		return domain.UserProfile{}, err
	}

	taken, err := s.emailTaken(ctx, newEmail, profile.ID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if taken {
		return domain.UserProfile{}, apperr.ErrEmailInUse
	}

	profile.Email = strings.ToLower(newEmail)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ? WHERE id = ?`, profile.Email, profile.ID,
	); err != nil {
		return domain.UserProfile{}, apperr.Wrap(err, "failed to update email")
	}

	s.logger.Info().Str("user_id", profile.ID).Msg("local email updated")
	return profile, nil
}

func (s *LocalService) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(newPassword) < constants.MinPasswordLength {
		return apperr.ErrWeakPassword
	}
	profile, err := s.verifyCurrent(ctx, currentPassword)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(err, "failed to hash password")
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), profile.ID,
	); err != nil {
		return apperr.Wrap(err, "failed to update password")
	}

	s.logger.Info().Str("user_id", profile.ID).Msg("local password updated")
	return nil
}

func (s *LocalService) DeleteAccount(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.verifyCurrent(ctx, password)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session WHERE slot = 0`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, profile.ID)
		return err
	})
	if err != nil {
		return apperr.Wrap(err, "failed to delete account")
	}

	s.logger.Info().Str("user_id", profile.ID).Msg("local account deleted")
	return nil
}

func (s *LocalService) SignOut(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE slot = 0`); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear local session")
	}
}

// verifyCurrent resolves the active session and checks its password.
// Caller must hold the mutex.
func (s *LocalService) verifyCurrent(ctx context.Context, password string) (domain.UserProfile, error) {
	var (
		profile domain.UserProfile
		hash    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.email, u.password_hash
		 FROM session s JOIN users u ON u.id = s.user_id WHERE s.slot = 0`,
	).Scan(&profile.ID, &profile.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return domain.UserProfile{}, apperr.Wrap(err, "failed to resolve session")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.UserProfile{}, apperr.ErrInvalidCredentials
	}
	return profile, nil
}

func (s *LocalService) emailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = ? COLLATE NOCASE`, email,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(err, "failed to check email")
	}
	return id != excludeID, nil
}

func (s *LocalService) setSession(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (slot, user_id) VALUES (0, ?)
		 ON CONFLICT (slot) DO UPDATE SET user_id = excluded.user_id`,
		userID,
	)
	return apperr.Wrap(err, "failed to persist session")
}

func (s *LocalService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
