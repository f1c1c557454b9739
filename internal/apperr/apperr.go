// Package apperr defines the closed error taxonomy shared by every backend
// and controller. Backends return these for domain violations and wrap any
// transport or storage failure with Wrap; controllers translate them into
// user-facing messages with UserMessage.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password too weak")
	ErrMissingFields      = errors.New("missing required fields")

	// ErrGameNotFound is reserved; no current flow returns it.
	ErrGameNotFound = errors.New("game not found")
)

// Wrap decorates a lower-level failure so that nothing crosses a backend
// boundary undecorated. A nil cause yields nil.
func Wrap(cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, cause)...)
}

// UserMessage maps an error to the string shown by the shell. Anything
// outside the taxonomy surfaces its own message.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Email ou senha inválidos."
	case errors.Is(err, ErrEmailInUse):
		return "Já existe uma conta com este email."
	case errors.Is(err, ErrWeakPassword):
		return "A senha precisa ter pelo menos 6 caracteres."
	case errors.Is(err, ErrMissingFields):
		return "Preencha todos os campos obrigatórios."
	case errors.Is(err, ErrGameNotFound):
		return "Jogo não encontrado."
	}
	return err.Error()
}
