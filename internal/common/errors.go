// Package common defines shared sentinel errors and small helpers used across
// totpvault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors raised at the request boundary.
	ErrMissingInput = errors.New("missing input")

	// Vault errors.
	ErrWrongPassword      = errors.New("wrong password")
	ErrCorruptVault       = errors.New("corrupt vault")
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// Account errors.
	ErrInvalidSecret = errors.New("invalid secret")
)
