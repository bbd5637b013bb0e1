package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/totpvault/internal/flagx"
)

var serverFlags = []string{
	"-a", "-k", "-salt", "-vault", "-d", "-badger",
	"-u", "-p", "-b", "-g", "-e", "-x",
	"-log-format", "-log-level", "-shutdown-timeout",
}

// parseFlags overlays Config with command-line flags.
//
//	-a string      gRPC bind address (e.g. ":50051")
//	-k string      storage backend: file|sqlite|postgres|s3|badger
//	-salt string   salt file (file backend)
//	-vault string  vault file (file backend)
//	-d string      database DSN (sqlite, postgres)
//	-badger string badger data directory
//	-u, -p         S3 access key and secret
//	-b, -g, -e, -x S3 bucket, region, base endpoint, key prefix
//	-log-format    json|text|console
//	-log-level     debug|info|warn|error
//	-shutdown-timeout duration, e.g. "10s"
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend")
	fs.StringVar(&config.SaltPath, "salt", config.SaltPath, "salt file path")
	fs.StringVar(&config.VaultPath, "vault", config.VaultPath, "vault file path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BadgerDir, "badger", config.BadgerDir, "badger data directory")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Prefix, "x", config.S3Prefix, "S3 key prefix")

	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "graceful shutdown timeout")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
