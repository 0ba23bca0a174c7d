package service

import "errors"

// Error taxonomy of the messaging core. All per-message errors are local to
// the dispatching caller and never affect other connections' registry or
// presence state.
var (
	// ErrMissingToken: no credential material on the handshake.
	ErrMissingToken = errors.New("missing auth token")
	// ErrInvalidToken: signature, structure or expiry check failed.
	ErrInvalidToken = errors.New("invalid auth token")
	// ErrValidation: absent receiver or empty/whitespace-only body.
	ErrValidation = errors.New("receiver and non-empty body are required")
	// ErrNotFound: the referenced user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrPolicy: sender and receiver share a role.
	ErrPolicy = errors.New("chat allowed only between fan and player")
	// ErrStore: the persistence engine failed; nothing was delivered.
	ErrStore = errors.New("message store failure")
	// ErrEmailExists: registration with an already-used email.
	ErrEmailExists = errors.New("email already exists")
	// ErrInvalidCredentials: login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
