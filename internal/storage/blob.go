// Package storage persists the vault's two opaque blobs (salt and sealed
// vault) on one of several backends: local files, SQLite, PostgreSQL, S3
// or an embedded badger store.
package storage

import (
	"context"
	"errors"
)

// ErrAlreadyExists is returned by Blob.Create when the blob is already
// present.
var ErrAlreadyExists = errors.New("already exists")

// Blob is a single named byte payload. Missing blobs are reported as
// common.ErrorNotFound by Read.
type Blob interface {
	// Location uniquely identifies the blob within the process, e.g.
	// "file:/var/lib/totpvault/vault.bin". Used to key in-process locks.
	Location() string

	// Exists reports whether the blob has been written.
	Exists(ctx context.Context) (bool, error)

	// Read returns the blob content or common.ErrorNotFound.
	Read(ctx context.Context) ([]byte, error)

	// Write atomically replaces the blob content: concurrent readers see the
	// old or the new payload, never a mix.
	Write(ctx context.Context, data []byte) error

	// Create writes the blob only if it does not exist yet and returns
	// ErrAlreadyExists otherwise.
	Create(ctx context.Context, data []byte) error
}
