package client

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned for any 401 outside of login. The
	// unauthorized hook has already run when a caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateIdentifier = errors.New("identifier already registered")
)

// ValidationError carries the server's message for a rejected request
// (400, 403, 409 and 422). Message is meant to be shown as is.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError covers transport failures and server-side (5xx) errors.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server error %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message returns a text fit for the user: the server's message for
// validation failures and a generic one otherwise.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, ErrUnauthorized):
		return "Sessione scaduta, effettua di nuovo il login"
	case errors.Is(err, ErrInvalidCredentials):
		return "Credenziali non valide"
	case errors.Is(err, ErrDuplicateIdentifier):
		return "Email già registrata"
	case errors.Is(err, ErrNotFound):
		return "Elemento non trovato"
	default:
		return "Si è verificato un errore, riprova più tardi"
	}
}
