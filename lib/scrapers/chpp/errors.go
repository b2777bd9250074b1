package chpp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMatchID is returned before any network call when a
	// match identifier is not a plain string of digits.
	ErrInvalidMatchID = errors.New("match id must match ^\\d+$")
	// ErrInvalidActionType is returned before any network call when a
	// live-events action is outside the allowed set.
	ErrInvalidActionType = errors.New("action type must be viewAll or viewNew")
	// ErrNotAuthenticated is returned when a resource call is made
	// with incomplete credentials.
	ErrNotAuthenticated = errors.New("not authenticated, complete the oauth handshake first")

	// ErrUserCancelled is returned when the interactive authorization
	// step is aborted by the user.
	ErrUserCancelled = errors.New("user cancelled authorization")
	// ErrNoVerifier is returned when the authorization callback url
	// carries no oauth_verifier parameter.
	ErrNoVerifier = errors.New("no oauth_verifier in callback url")
)

// StatusError reports a non-2xx HTTP response from a CHPP endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chpp returned status %d", e.Code)
}
