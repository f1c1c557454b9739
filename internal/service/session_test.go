package service

import (
	"context"
	"errors"
	"testing"

	"gameshelf/internal/apperr"
	"gameshelf/internal/domain"
	"gameshelf/internal/signal"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth scripts the auth backend for controller tests.
type fakeAuth struct {
	restoreUser *domain.UserProfile
	user        domain.UserProfile
	err         error
	signedOut   bool
}

func (f *fakeAuth) Restore(ctx context.Context) *domain.UserProfile { return f.restoreUser }

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (domain.UserProfile, error) {
	return f.user, f.err
}

func (f *fakeAuth) Register(ctx context.Context, email, password string) (domain.UserProfile, error) {
	return f.user, f.err
}

func (f *fakeAuth) SendPasswordReset(ctx context.Context, email string) error { return f.err }

func (f *fakeAuth) UpdateEmail(ctx context.Context, currentPassword, newEmail string) (domain.UserProfile, error) {
	return f.user, f.err
}

func (f *fakeAuth) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	return f.err
}

func (f *fakeAuth) DeleteAccount(ctx context.Context, password string) error { return f.err }

func (f *fakeAuth) SignOut(ctx context.Context) { f.signedOut = true }

func newSession(f *fakeAuth) *Session {
	return NewSession(f, signal.NewHub(), zerolog.Nop())
}

func TestSessionStartsLoading(t *testing.T) {
	s := newSession(&fakeAuth{})
	assert.Equal(t, domain.PhaseLoading, s.Snapshot().State.Phase)
	assert.Nil(t, s.CurrentUser())
}

func TestSessionRestore(t *testing.T) {
	t.Run("existing session", func(t *testing.T) {
		user := domain.UserProfile{ID: "u1", Email: "ana@example.com"}
		s := newSession(&fakeAuth{restoreUser: &user})
		s.Restore(context.Background())

		snap := s.Snapshot()
		assert.Equal(t, domain.PhaseSignedIn, snap.State.Phase)
		require.NotNil(t, snap.State.User)
		assert.Equal(t, user, *snap.State.User)
	})

	t.Run("no session", func(t *testing.T) {
		s := newSession(&fakeAuth{})
		s.Restore(context.Background())
		assert.Equal(t, domain.PhaseSignedOut, s.Snapshot().State.Phase)
	})
}

func TestSessionSignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		user := domain.UserProfile{ID: "u1", Email: "ana@example.com"}
		s := newSession(&fakeAuth{user: user})
		s.Restore(context.Background())

		s.SignIn(context.Background(), "ana@example.com", "secret1")

		snap := s.Snapshot()
		assert.Equal(t, domain.PhaseSignedIn, snap.State.Phase)
		assert.False(t, snap.IsWorking)
		assert.Empty(t, snap.Message)
	})

	t.Run("invalid credentials surface as message", func(t *testing.T) {
		s := newSession(&fakeAuth{err: apperr.ErrInvalidCredentials})
		s.Restore(context.Background())

		s.SignIn(context.Background(), "ana@example.com", "wrongpw")

		snap := s.Snapshot()
		assert.Equal(t, domain.PhaseSignedOut, snap.State.Phase, "state is preserved")
		assert.Equal(t, "Email ou senha inválidos.", snap.Message)
		assert.False(t, snap.IsWorking, "busy flag clears on failure")
	})
}

func TestSessionRegisterWeakPassword(t *testing.T) {
	s := newSession(&fakeAuth{err: apperr.ErrWeakPassword})
	s.Restore(context.Background())

	s.Register(context.Background(), "ana@example.com", "12345")

	assert.Equal(t, "A senha precisa ter pelo menos 6 caracteres.", s.Snapshot().Message)
}

func TestSessionPasswordResetMessage(t *testing.T) {
	s := newSession(&fakeAuth{})
	s.SendPasswordReset(context.Background(), "ana@example.com")
	assert.Equal(t, "Se o email estiver cadastrado, enviaremos o link de recuperação.", s.Snapshot().Message)

	s.ClearMessage()
	assert.Empty(t, s.Snapshot().Message)
}

func TestSessionUpdateEmailRequiresSession(t *testing.T) {
	s := newSession(&fakeAuth{})
	s.Restore(context.Background())

	s.UpdateEmail(context.Background(), "secret1", "new@example.com")
	assert.Equal(t, "Email ou senha inválidos.", s.Snapshot().Message)
}

func TestSessionDeleteAccount(t *testing.T) {
	user := domain.UserProfile{ID: "u1", Email: "ana@example.com"}

	t.Run("cleanup runs once before sign-out", func(t *testing.T) {
		s := newSession(&fakeAuth{restoreUser: &user})
		s.Restore(context.Background())

		calls := 0
		err := s.DeleteAccount(context.Background(), "secret1", func(ctx context.Context) error {
			calls++
			assert.Equal(t, domain.PhaseSignedIn, s.Snapshot().State.Phase,
				"cleanup observes the session before the transition")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)

		snap := s.Snapshot()
		assert.Equal(t, domain.PhaseSignedOut, snap.State.Phase)
		assert.Equal(t, "Conta excluída.", snap.Message)
	})

	t.Run("backend failure surfaces as message, cleanup skipped", func(t *testing.T) {
		s := newSession(&fakeAuth{restoreUser: &user, err: apperr.ErrInvalidCredentials})
		s.Restore(context.Background())

		calls := 0
		err := s.DeleteAccount(context.Background(), "wrongpw", func(ctx context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, calls)
		assert.Equal(t, domain.PhaseSignedIn, s.Snapshot().State.Phase)
		assert.Equal(t, "Email ou senha inválidos.", s.Snapshot().Message)
	})

	t.Run("cleanup failure propagates", func(t *testing.T) {
		s := newSession(&fakeAuth{restoreUser: &user})
		s.Restore(context.Background())

		boom := errors.New("wipe failed")
		err := s.DeleteAccount(context.Background(), "secret1", func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.PhaseSignedIn, s.Snapshot().State.Phase,
			"no transition when cleanup fails")
		assert.False(t, s.Snapshot().IsWorking)
	})
}

func TestSessionSignOut(t *testing.T) {
	user := domain.UserProfile{ID: "u1", Email: "ana@example.com"}
	f := &fakeAuth{restoreUser: &user}
	s := newSession(f)
	s.Restore(context.Background())

	s.SignOut(context.Background())

	assert.True(t, f.signedOut)
	assert.Equal(t, domain.PhaseSignedOut, s.Snapshot().State.Phase)
	assert.Nil(t, s.CurrentUser())
}
