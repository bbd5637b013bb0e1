// Package client is the CLI's connection to the vault server: a thin gRPC
// client that applies a per-request timeout and turns status errors back
// into the common sentinel errors.
package client
