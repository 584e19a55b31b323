// Package common defines shared constants and sentinel errors used across
// TraceGuard components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorLoginAlreadyExists = errors.New("login already exists")

	// Vault errors. Returned when an AEAD open fails; the plaintext is never
	// partially released.
	ErrorAuthenticationFailed = errors.New("authentication failed")

	// Ledger errors. A chain mismatch is reported, never repaired.
	ErrorIntegrityViolation = errors.New("integrity violation")

	// Storage errors. Fatal to the enclosing operation: an operation whose
	// audit entry cannot be written must not report success.
	ErrorStorageUnavailable = errors.New("storage unavailable")

	// Auth token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
