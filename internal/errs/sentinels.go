// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across store/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDecryptFailed indicates an authenticated-decryption failure.
	// Wrong passphrase, tampered ciphertext and malformed input are
	// deliberately indistinguishable: GCM authentication is the only signal.
	ErrDecryptFailed = errors.New("decryption failed: invalid passphrase or corrupted data")

	// ErrInvalidRecord indicates a decrypted payload that fails schema validation.
	// Bulk readers treat it exactly like ErrDecryptFailed.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrImportAborted indicates a bulk import that was rolled back whole.
	ErrImportAborted = errors.New("import aborted")

	// ErrInsightUnavailable indicates the AI text service could not produce a response.
	ErrInsightUnavailable = errors.New("insight unavailable")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
