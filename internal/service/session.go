package service

import (
	"context"
	"sync"

	"gameshelf/internal/apperr"
	"gameshelf/internal/auth"
	"gameshelf/internal/domain"
	"gameshelf/internal/signal"

	"github.com/rs/zerolog"
)

// Session owns the authentication state machine. State is published as
// snapshots guarded by a mutex; the mutex is never held across backend
// calls, so two overlapping mutations race and the last write wins.
type Session struct {
	svc    auth.Service
	hub    *signal.Hub
	logger zerolog.Logger

	mu      sync.Mutex
	state   domain.AuthState
	working bool
	message string
}

type SessionSnapshot struct {
	State     domain.AuthState `json:"state"`
	IsWorking bool             `json:"isWorking"`
	Message   string           `json:"message,omitempty"`
}

func NewSession(svc auth.Service, hub *signal.Hub, logger zerolog.Logger) *Session {
	return &Session{
		svc:    svc,
		hub:    hub,
		logger: logger,
		state:  domain.Loading(),
	}
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{State: s.state, IsWorking: s.working, Message: s.message}
}

// CurrentUser returns the signed-in profile, if any.
func (s *Session) CurrentUser() *domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == domain.PhaseSignedIn {
		u := *s.state.User
		return &u
	}
	return nil
}

// Restore resolves the initial Loading state exactly once at startup.
func (s *Session) Restore(ctx context.Context) {
	user := s.svc.Restore(ctx)

	s.mu.Lock()
	if user != nil {
		s.state = domain.SignedIn(*user)
	} else {
		s.state = domain.SignedOut()
	}
	s.mu.Unlock()

	s.logger.Info().Str("phase", string(s.Snapshot().State.Phase)).Msg("session restored")
	s.hub.Broadcast()
}

func (s *Session) SignIn(ctx context.Context, email, password string) {
	s.run(func() error {
		user, err := s.svc.SignIn(ctx, email, password)
		if err != nil {
			return err
		}
		s.publish(func() { s.state = domain.SignedIn(user) })
		return nil
	})
}

func (s *Session) Register(ctx context.Context, email, password string) {
	s.run(func() error {
		user, err := s.svc.Register(ctx, email, password)
		if err != nil {
			return err
		}
		s.publish(func() { s.state = domain.SignedIn(user) })
		return nil
	})
}

func (s *Session) SendPasswordReset(ctx context.Context, email string) {
	s.run(func() error {
		if err := s.svc.SendPasswordReset(ctx, email); err != nil {
			return err
		}
		s.publish(func() { s.message = "Se o email estiver cadastrado, enviaremos o link de recuperação." })
		return nil
	})
}

func (s *Session) UpdateEmail(ctx context.Context, currentPassword, newEmail string) {
	s.run(func() error {
		if s.CurrentUser() == nil {
			return apperr.ErrInvalidCredentials
		}
		user, err := s.svc.UpdateEmail(ctx, currentPassword, newEmail)
		if err != nil {
			return err
		}
		s.publish(func() {
			s.state = domain.SignedIn(user)
			s.message = "Email atualizado com sucesso."
		})
		return nil
	})
}

func (s *Session) UpdatePassword(ctx context.Context, currentPassword, newPassword string) {
	s.run(func() error {
		if err := s.svc.UpdatePassword(ctx, currentPassword, newPassword); err != nil {
			return err
		}
		s.publish(func() { s.message = "Senha alterada." })
		return nil
	})
}

// DeleteAccount removes the identity, then invokes cleanup before the
// state transitions to signed-out. A cleanup failure is not converted to a
// user message here; it propagates to the caller.
func (s *Session) DeleteAccount(ctx context.Context, password string, cleanup func(context.Context) error) error {
	s.setWorking(true)
	defer s.setWorking(false)

	if err := s.svc.DeleteAccount(ctx, password); err != nil {
		s.publish(func() { s.message = apperr.UserMessage(err) })
		return nil
	}

	if cleanup != nil {
		if err := cleanup(ctx); err != nil {
			return err
		}
	}

	s.publish(func() {
		s.state = domain.SignedOut()
		s.message = "Conta excluída."
	})
	return nil
}

func (s *Session) SignOut(ctx context.Context) {
	s.svc.SignOut(ctx)
	s.publish(func() { s.state = domain.SignedOut() })
}

func (s *Session) ClearMessage() {
	s.publish(func() { s.message = "" })
}

// run brackets a mutating operation with the busy flag and converts any
// backend failure into the observable message slot. Failures never escape
// or corrupt the published state.
func (s *Session) run(work func() error) {
	s.setWorking(true)
	defer s.setWorking(false)

	if err := work(); err != nil {
		s.logger.Warn().Err(err).Msg("session operation failed")
		s.publish(func() { s.message = apperr.UserMessage(err) })
	}
}

func (s *Session) setWorking(v bool) {
	s.publish(func() { s.working = v })
}

func (s *Session) publish(mutate func()) {
	s.mu.Lock()
	mutate()
	s.mu.Unlock()
	s.hub.Broadcast()
}
