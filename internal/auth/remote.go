package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gameshelf/internal/apperr"
	"gameshelf/internal/cloud"
	"gameshelf/internal/config"
	"gameshelf/internal/domain"

	"github.com/rs/zerolog"
)

// RemoteService authenticates against the cloud sync service. The session
// (profile plus tokens) is cached in a local JSON file so Restore survives
// process restarts; the file is rewritten atomically on every change.
type RemoteService struct {
	mu      sync.Mutex
	client  *cloud.Client
	path    string
	session *cachedSession
	logger  zerolog.Logger
}

type cachedSession struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

func NewRemoteService(cfg *config.Config, client *cloud.Client, logger zerolog.Logger) *RemoteService {
	return &RemoteService{
		client: client,
		path:   filepath.Join(cfg.DataDir, "session.json"),
		logger: logger,
	}
}

func (s *RemoteService) Restore(ctx context.Context) *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		s.logger.Warn().Err(err).Msg("session cache unreadable, treating as signed out")
		return nil
	}

	s.client.SetToken(cached.IDToken)
	id, email, err := s.client.Lookup(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cached session rejected by cloud service")
		s.client.ClearToken()
		return nil
	}

	cached.UserID = id
	cached.Email = email
	s.session = &cached

	s.logger.Info().Str("user_id", id).Msg("restored cloud session")
	return &domain.UserProfile{ID: id, Email: email}
}

func (s *RemoteService) SignIn(ctx context.Context, email, password string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return s.adopt(creds)
}

func (s *RemoteService) Register(ctx context.Context, email, password string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.client.SignUp(ctx, email, password)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return s.adopt(creds)
}

// SendPasswordReset succeeds silently for unknown emails: the cloud
// service does not reveal whether an account exists.
func (s *RemoteService) SendPasswordReset(ctx context.Context, email string) error {
	return s.client.SendPasswordReset(ctx, email)
}

func (s *RemoteService) UpdateEmail(ctx context.Context, currentPassword, newEmail string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reauthenticate(ctx, currentPassword); err != nil {
		return domain.UserProfile{}, err
	}
	creds, err := s.client.UpdateEmail(ctx, newEmail)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return s.adopt(creds)
}

func (s *RemoteService) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reauthenticate(ctx, currentPassword); err != nil {
		return err
	}
	creds, err := s.client.UpdatePassword(ctx, newPassword)
	if err != nil {
		return err
	}
	_, err = s.adopt(creds)
	return err
}

func (s *RemoteService) DeleteAccount(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reauthenticate(ctx, password); err != nil {
		return err
	}
	if err := s.client.DeleteAccount(ctx); err != nil {
		return err
	}

	s.discardSession()
	s.logger.Info().Msg("cloud account deleted")
	return nil
}

func (s *RemoteService) SignOut(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discardSession()
}

// reauthenticate proves the caller knows the current password before a
// sensitive change, refreshing the token as a side effect.
func (s *RemoteService) reauthenticate(ctx context.Context, password string) error {
	if s.session == nil {
		return apperr.ErrInvalidCredentials
	}
	creds, err := s.client.SignIn(ctx, s.session.Email, password)
	if err != nil {
		return err
	}
	s.client.SetToken(creds.IDToken)
	return nil
}

// adopt installs fresh credentials and persists the session cache.
// Caller must hold the mutex.
func (s *RemoteService) adopt(creds *cloud.Credentials) (domain.UserProfile, error) {
	s.client.SetToken(creds.IDToken)
	cached := cachedSession{
		UserID:       creds.LocalID,
		Email:        creds.Email,
		IDToken:      creds.IDToken,
		RefreshToken: creds.RefreshToken,
	}
	if err := s.persistSession(&cached); err != nil {
		return domain.UserProfile{}, err
	}
	s.session = &cached
	return domain.UserProfile{ID: creds.LocalID, Email: creds.Email}, nil
}

func (s *RemoteService) persistSession(cached *cachedSession) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to encode session cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session cache: %w", err)
	}
	return nil
}

func (s *RemoteService) discardSession() {
	s.session = nil
	s.client.ClearToken()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Msg("failed to remove session cache")
	}
}
