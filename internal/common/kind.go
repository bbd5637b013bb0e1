package common

import "errors"

// ErrorDomain identifies errors produced by this service in structured
// error details.
const ErrorDomain = "totpvault"

// Kind is a stable, machine-readable error classification that travels
// alongside a human-readable message.
type Kind string

const (
	KindNone               Kind = ""
	KindMissingInput       Kind = "missing_input"
	KindWrongPassword      Kind = "wrong_password"
	KindCorruptVault       Kind = "corrupt_vault"
	KindInvalidSecret      Kind = "invalid_secret"
	KindNotFound           Kind = "not_found"
	KindAlreadyInitialized Kind = "already_initialized"
	KindInternal           Kind = "internal"
)

var kinds = []struct {
	kind Kind
	err  error
}{
	{KindMissingInput, ErrMissingInput},
	{KindWrongPassword, ErrWrongPassword},
	{KindCorruptVault, ErrCorruptVault},
	{KindInvalidSecret, ErrInvalidSecret},
	{KindNotFound, ErrorNotFound},
	{KindAlreadyInitialized, ErrAlreadyInitialized},
	{KindInternal, ErrorInternal},
}

// KindOf classifies err. Nil maps to KindNone and anything unrecognised to
// KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Err returns the sentinel error for k, or ErrorInternal for unknown kinds.
func (k Kind) Err() error {
	for _, e := range kinds {
		if e.kind == k {
			return e.err
		}
	}
	return ErrorInternal
}
