package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/totpvault/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for config files. Durations use timex.Duration,
// so both "5s" and integer nanoseconds are accepted. Empty fields leave the
// current value untouched.
type FileConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	StorageBackend   string         `json:"storage_backend" yaml:"storage_backend"`
	SaltPath         string         `json:"salt_path" yaml:"salt_path"`
	VaultPath        string         `json:"vault_path" yaml:"vault_path"`
	DatabaseDSN      string         `json:"database_dsn" yaml:"database_dsn"`
	BadgerDir        string         `json:"badger_dir" yaml:"badger_dir"`
	S3RootUser       string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region         string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3Prefix         string         `json:"s3_prefix" yaml:"s3_prefix"`
	LogFormat        string         `json:"log_format" yaml:"log_format"`
	LogLevel         string         `json:"log_level" yaml:"log_level"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseFile overlays config with the file at path. ".yaml" and ".yml" files
// are read as YAML, anything else as JSON.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *FileConfig) apply(config *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.StorageBackend, c.StorageBackend)
	set(&config.SaltPath, c.SaltPath)
	set(&config.VaultPath, c.VaultPath)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.BadgerDir, c.BadgerDir)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3Prefix, c.S3Prefix)
	set(&config.LogFormat, c.LogFormat)
	set(&config.LogLevel, c.LogLevel)

	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}
