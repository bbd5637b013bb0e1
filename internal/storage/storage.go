package storage

import (
	"context"
	"errors"
	"fmt"
)

const (
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindS3       = "s3"
	KindBadger   = "badger"
)

const (
	saltName  = "salt"
	vaultName = "vault"
)

// Config selects a backend and its settings. Only the fields of the chosen
// Kind are used.
type Config struct {
	Kind      string
	SaltPath  string
	VaultPath string
	DSN       string
	BadgerDir string
	S3        S3Config
}

// Backend is an opened storage backend holding the salt and vault blobs.
type Backend struct {
	Salt    Blob
	Vault   Blob
	closers []func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open connects to the configured backend, running schema migrations where
// the backend has a schema.
func Open(ctx context.Context, c Config) (*Backend, error) {
	switch c.Kind {
	case KindFile, "":
		if c.SaltPath == "" || c.VaultPath == "" {
			return nil, errors.New("file backend requires salt and vault paths")
		}
		return &Backend{
			Salt:  NewFileBlob(c.SaltPath),
			Vault: NewFileBlob(c.VaultPath),
		}, nil

	case KindSQLite:
		db, err := OpenSQLite(ctx, c.DSN)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Salt:    NewSQLiteBlob(db, c.DSN, saltName),
			Vault:   NewSQLiteBlob(db, c.DSN, vaultName),
			closers: []func() error{db.Close},
		}, nil

	case KindPostgres:
		scope, err := postgresScope(c.DSN)
		if err != nil {
			return nil, err
		}
		db, err := OpenPostgres(ctx, c.DSN)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Salt:    NewPostgresBlob(db, scope, saltName),
			Vault:   NewPostgresBlob(db, scope, vaultName),
			closers: []func() error{db.Close},
		}, nil

	case KindS3:
		if c.S3.Bucket == "" {
			return nil, errors.New("s3 backend requires a bucket")
		}
		client, err := newS3Client(ctx, c.S3)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Salt:  NewS3Blob(client, c.S3.Bucket, c.S3.Prefix, saltName),
			Vault: NewS3Blob(client, c.S3.Bucket, c.S3.Prefix, vaultName),
		}, nil

	case KindBadger:
		db, err := OpenBadger(c.BadgerDir)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Salt:    NewBadgerBlob(db, c.BadgerDir, saltName),
			Vault:   NewBadgerBlob(db, c.BadgerDir, vaultName),
			closers: []func() error{db.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Kind)
	}
}
