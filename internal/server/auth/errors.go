// Package auth issues and verifies the credentials that establish a caller's
// identity: bcrypt password digests and signed, time-bound session tokens.
//
// Every error returned by this package is one of the sentinels below, possibly
// wrapped; callers match them with errors.Is. None of them should be retried.
package auth

import "errors"

var (
	// ErrInvalidInput is returned for an empty or oversized secret, or an
	// empty token subject.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrCorruptDigest is returned when a stored digest is not a valid bcrypt
	// encoding. It signals a data-integrity fault, not a wrong password.
	ErrCorruptDigest = errors.New("auth: corrupt digest")

	// ErrMalformed is returned when a token fails structural parsing.
	ErrMalformed = errors.New("auth: malformed token")

	// ErrInvalidSignature is returned when a token signature does not match.
	ErrInvalidSignature = errors.New("auth: invalid token signature")

	// ErrExpired is returned when a token is past its expiry time.
	ErrExpired = errors.New("auth: token expired")

	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("auth: signing secret is not configured")

	// ErrInvalidTTL is returned for a non-positive token lifetime.
	ErrInvalidTTL = errors.New("auth: token lifetime must be positive")
)
