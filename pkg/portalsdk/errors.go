package portalsdk

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned by Load when nothing has been saved, or the
	// stored session was cleared.
	ErrNoSession = errors.New("portalsdk: no stored session")

	// ErrUnauthorized covers rejected credentials, expired or revoked
	// tokens, and missing roles. Clients treat it as "sign in again".
	ErrUnauthorized = errors.New("portalsdk: unauthorized")

	// ErrEmailTaken is returned by Register for a duplicate email.
	ErrEmailTaken = errors.New("portalsdk: email already registered")

	// ErrTransient covers server errors and network failures that are worth
	// retrying.
	ErrTransient = errors.New("portalsdk: transient error")
)

// APIError carries the server's envelope error alongside the sentinel it
// maps to, so errors.Is works and the original message is still available.
type APIError struct {
	StatusCode int
	Message    string
	sentinel   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portalsdk: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.sentinel }
