// Package config handles configuration for the vault server: defaults, an
// optional JSON or YAML file, then command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/totpvault/internal/flagx"
	"github.com/dmitrijs2005/totpvault/internal/storage"
)

// Config holds runtime settings for the vault server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - StorageBackend: file, sqlite, postgres, s3 or badger.
//   - SaltPath / VaultPath: blob files for the file backend.
//   - DatabaseDSN: SQLite or PostgreSQL DSN for the SQL backends.
//   - BadgerDir: data directory for the badger backend.
//   - S3*: object storage settings for the s3 backend.
//   - LogFormat / LogLevel: see logging.New.
//   - ShutdownTimeout: how long GracefulStop may take before a hard stop.
type Config struct {
	EndpointAddrGRPC string
	StorageBackend   string
	SaltPath         string
	VaultPath        string
	DatabaseDSN      string
	BadgerDir        string
	S3RootUser       string
	S3RootPassword   string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	S3Prefix         string
	LogFormat        string
	LogLevel         string
	ShutdownTimeout  time.Duration
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.StorageBackend = storage.KindFile
	c.SaltPath = "data/salt.bin"
	c.VaultPath = "data/vault.bin"
	c.DatabaseDSN = "file:data/vault.db"
	c.BadgerDir = "data/badger"
	c.S3Bucket = "totpvault"
	c.S3Region = "us-east-1"
	c.LogFormat = "json"
	c.LogLevel = "info"
	c.ShutdownTimeout = 5 * time.Second
}

// Storage returns the storage settings for storage.Open.
func (c *Config) Storage() storage.Config {
	return storage.Config{
		Kind:      c.StorageBackend,
		SaltPath:  c.SaltPath,
		VaultPath: c.VaultPath,
		DSN:       c.DatabaseDSN,
		BadgerDir: c.BadgerDir,
		S3: storage.S3Config{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
		},
	}
}

// LoadConfig builds a Config from defaults, the file named by -c/-config and
// finally command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFile(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return cfg, nil
}
