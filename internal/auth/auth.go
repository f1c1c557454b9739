// Package auth holds the identity capability: one interface, two
// interchangeable backends. The remote backend talks to the cloud sync
// service; the local backend keeps identities in the local store and is
// selected when the cloud integration is not configured into the build.
package auth

import (
	"context"

	"gameshelf/internal/domain"
)

// Service is the authentication backend contract. Implementations serve
// one logical session flow at a time.
type Service interface {
	// Restore returns the previously authenticated identity if a valid
	// session exists. It never fails visibly: any underlying error is
	// swallowed and treated as "no session".
	Restore(ctx context.Context) *domain.UserProfile

	// SignIn establishes the active session on success so a later
	// Restore finds it.
	SignIn(ctx context.Context, email, password string) (domain.UserProfile, error)

	// Register creates the identity and establishes it as the active
	// session.
	Register(ctx context.Context, email, password string) (domain.UserProfile, error)

	SendPasswordReset(ctx context.Context, email string) error

	// UpdateEmail re-validates currentPassword against the active
	// identity before applying the change.
	UpdateEmail(ctx context.Context, currentPassword, newEmail string) (domain.UserProfile, error)

	UpdatePassword(ctx context.Context, currentPassword, newPassword string) error

	// DeleteAccount removes the identity and clears the active session.
	DeleteAccount(ctx context.Context, password string) error

	// SignOut clears the active session, best-effort.
	SignOut(ctx context.Context)
}
