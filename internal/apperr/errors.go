package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotReady is returned when a post is missing a title or body
	// and therefore cannot be published.
	ErrNotReady = errors.New("post is not ready to publish")

	// ErrNoCredentials is returned by signing operations when no
	// Nostr key is loaded into the signer.
	ErrNoCredentials = errors.New("no nostr credentials configured")

	// ErrInvalidKeyFormat is returned when private key material is
	// neither 64-char hex nor a bech32 nsec string.
	ErrInvalidKeyFormat = errors.New("invalid private key format")

	// ErrNoRelayAccepted is returned when every relay in the active
	// set refused or failed to accept a published event.
	ErrNoRelayAccepted = errors.New("no relay accepted the event")

	// ErrDuplicateRelay is returned when adding a relay URL that is
	// already in the custom list.
	ErrDuplicateRelay = errors.New("relay already exists")
)
