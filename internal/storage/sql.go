package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/dbx"
)

// sqlQueries holds the dialect-specific statements for the vault_blobs table.
type sqlQueries struct {
	dialect string
	exists  string
	read    string
	write   string
	create  string
}

var postgresQueries = sqlQueries{
	dialect: "postgres",
	exists:  `SELECT EXISTS (SELECT 1 FROM vault_blobs WHERE name = $1)`,
	read:    `SELECT data FROM vault_blobs WHERE name = $1`,
	write: `
		INSERT INTO vault_blobs (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
	create: `
		INSERT INTO vault_blobs (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO NOTHING`,
}

var sqliteQueries = sqlQueries{
	dialect: "sqlite",
	exists:  `SELECT EXISTS (SELECT 1 FROM vault_blobs WHERE name = ?)`,
	read:    `SELECT data FROM vault_blobs WHERE name = ?`,
	write: `
		INSERT INTO vault_blobs (name, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	create: `
		INSERT INTO vault_blobs (name, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO NOTHING`,
}

// SQLBlob stores a blob as one row of the vault_blobs table. Every operation
// is a single statement, so writes are atomic.
type SQLBlob struct {
	db      dbx.DBTX
	name    string
	scope   string
	queries sqlQueries
}

// NewPostgresBlob returns a blob stored in PostgreSQL under name. scope
// distinguishes databases in Location, typically the DSN host/database.
func NewPostgresBlob(db dbx.DBTX, scope, name string) *SQLBlob {
	return &SQLBlob{db: db, name: name, scope: scope, queries: postgresQueries}
}

// NewSQLiteBlob returns a blob stored in SQLite under name.
func NewSQLiteBlob(db dbx.DBTX, scope, name string) *SQLBlob {
	return &SQLBlob{db: db, name: name, scope: scope, queries: sqliteQueries}
}

func (b *SQLBlob) Location() string {
	return b.queries.dialect + ":" + b.scope + "#" + b.name
}

func (b *SQLBlob) Exists(ctx context.Context) (bool, error) {
	var ok bool
	if err := b.db.QueryRowContext(ctx, b.queries.exists, b.name).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check blob[%s]: %w", b.name, err)
	}
	return ok, nil
}

func (b *SQLBlob) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, b.queries.read, b.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob[%s]: %w", b.name, err)
	}
	return data, nil
}

func (b *SQLBlob) Write(ctx context.Context, data []byte) error {
	if _, err := b.db.ExecContext(ctx, b.queries.write, b.name, data); err != nil {
		return fmt.Errorf("failed to write blob[%s]: %w", b.name, err)
	}
	return nil
}

func (b *SQLBlob) Create(ctx context.Context, data []byte) error {
	res, err := b.db.ExecContext(ctx, b.queries.create, b.name, data)
	if err != nil {
		return fmt.Errorf("failed to create blob[%s]: %w", b.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return ErrAlreadyExists
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
