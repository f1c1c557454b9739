package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"gameshelf/internal/apperr"
	"gameshelf/internal/config"
	"gameshelf/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := database.New(&config.Config{
		DataDir: dir,
		DBPath:  filepath.Join(dir, "test.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newLocal(t *testing.T) *LocalService {
	t.Helper()
	return NewLocalService(newTestDB(t), zerolog.Nop())
}

func TestLocalRegisterPasswordLength(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@example.com", "12345")
	assert.ErrorIs(t, err, apperr.ErrWeakPassword)

	user, err := svc.Register(ctx, "ana@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
}

func TestLocalRegisterDuplicateEmail(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ANA@Example.COM", "secret2")
	assert.ErrorIs(t, err, apperr.ErrEmailInUse)
}

func TestLocalSignIn(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Bruno@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bruno@example.com", registered.Email, "emails are stored lowercased")

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "bruno@example.com", "wrongpw")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "nobody@example.com", "secret1")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	})

	t.Run("success case-insensitive", func(t *testing.T) {
		user, err := svc.SignIn(ctx, "BRUNO@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})
}

func TestLocalRestore(t *testing.T) {
	db := newTestDB(t)
	svc := NewLocalService(db, zerolog.Nop())
	ctx := context.Background()

	assert.Nil(t, svc.Restore(ctx), "no session before registration")

	user, err := svc.Register(ctx, "carla@example.com", "secret1")
	require.NoError(t, err)

	// A fresh service instance over the same store sees the session.
	restored := NewLocalService(db, zerolog.Nop()).Restore(ctx)
	require.NotNil(t, restored)
	assert.Equal(t, user, *restored)

	svc.SignOut(ctx)
	assert.Nil(t, svc.Restore(ctx), "sign-out clears the session")
}

func TestLocalSendPasswordReset(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dora@example.com", "secret1")
	require.NoError(t, err)

	assert.NoError(t, svc.SendPasswordReset(ctx, "DORA@example.com"))
	assert.ErrorIs(t, svc.SendPasswordReset(ctx, "ghost@example.com"), apperr.ErrInvalidCredentials)
}

func TestLocalUpdateEmail(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "other@example.com", "secret1")
	require.NoError(t, err)
	svc.SignOut(ctx)

	user, err := svc.Register(ctx, "eva@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.UpdateEmail(ctx, "wrongpw", "new@example.com")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.UpdateEmail(ctx, "secret1", "Other@Example.com")
	assert.ErrorIs(t, err, apperr.ErrEmailInUse)

	updated, err := svc.UpdateEmail(ctx, "secret1", "Eva.New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "eva.new@example.com", updated.Email)

	// Re-using the previous (unchanged, case-varied) own email is fine.
	_, err = svc.UpdateEmail(ctx, "secret1", "EVA.NEW@example.com")
	assert.NoError(t, err)
}

func TestLocalUpdatePassword(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "fabio@example.com", "secret1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdatePassword(ctx, "secret1", "12345"), apperr.ErrWeakPassword)
	assert.ErrorIs(t, svc.UpdatePassword(ctx, "wrongpw", "newsecret"), apperr.ErrInvalidCredentials)

	require.NoError(t, svc.UpdatePassword(ctx, "secret1", "newsecret"))

	_, err = svc.SignIn(ctx, "fabio@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "fabio@example.com", "newsecret")
	assert.NoError(t, err)
}

func TestLocalDeleteAccount(t *testing.T) {
	svc := newLocal(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "gil@example.com", "secret1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, "wrongpw"), apperr.ErrInvalidCredentials)

	require.NoError(t, svc.DeleteAccount(ctx, "secret1"))
	assert.Nil(t, svc.Restore(ctx))

	_, err = svc.SignIn(ctx, "gil@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials, "identity is gone")

	assert.ErrorIs(t, svc.DeleteAccount(ctx, "secret1"), apperr.ErrInvalidCredentials, "no active session")
}
