// Package cryptox holds the vault's cryptographic primitives: password-based
// key derivation and authenticated encryption of the vault payload.
package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const (
	// KeySize is the length of every derived key in bytes.
	KeySize = 32
	// SaltSize is the length of the persisted vault salt in bytes.
	SaltSize = 16
)

// KDFParams captures the scrypt cost parameters.
type KDFParams struct {
	N      int
	R      int
	P      int
	KeyLen int
}

// DefaultKDFParams returns the fixed parameters used for vault keys
// (N=2^14, r=8, p=1), costing tens of milliseconds per call.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		N:      1 << 14,
		R:      8,
		P:      1,
		KeyLen: KeySize,
	}
}

// DeriveKey turns a password and the vault salt into a 32-byte key using
// DefaultKDFParams.
//
// The function is deterministic: the same (password, salt) always yields the
// same key. Password emptiness is a caller concern and is not checked here.
//
// Example:
//
//	salt := common.GenerateRandByteArray(cryptox.SaltSize)
//	key, err := cryptox.DeriveKey([]byte("correct horse"), salt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer common.WipeByteArray(key)
func DeriveKey(password, salt []byte) ([]byte, error) {
	return DeriveKeyWithParams(password, salt, DefaultKDFParams())
}

// DeriveKeyWithParams is DeriveKey with explicit scrypt parameters.
func DeriveKeyWithParams(password, salt []byte, p KDFParams) ([]byte, error) {
	if len(salt) == 0 {
		return nil, errors.New("salt is required")
	}
	if p.KeyLen <= 0 {
		return nil, errors.New("key length must be positive")
	}
	key, err := scrypt.Key(password, salt, p.N, p.R, p.P, p.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
