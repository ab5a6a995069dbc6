package websocket

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownConnection is returned when an operation references a
	// connection id that was never registered or has already been
	// deregistered. Recoverable: the client should reconnect and re-join.
	ErrUnknownConnection = errors.New("unknown connection")

	// ErrInvalidStatus is returned when a presence update carries a status
	// outside online/away/busy/offline. The previous status is retained.
	ErrInvalidStatus = errors.New("invalid presence status")
)

// PersistenceError wraps a failure from the message store. A message that
// failed to persist is never broadcast.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("message persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// AuthError is returned by an AuthenticatorFunc when the handshake
// credentials are missing or invalid.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
