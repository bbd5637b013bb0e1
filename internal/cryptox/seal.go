package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// tokenVersion is the first byte of every sealed token. It is bound to the
// ciphertext as associated data so it cannot be swapped.
const tokenVersion byte = 0x01

const (
	nonceSize   = chacha20poly1305.NonceSizeX
	tagSize     = chacha20poly1305.Overhead
	tokenHeader = 1 + nonceSize
)

var (
	// ErrAuthentication is returned by Open for every token that cannot be
	// authenticated: wrong key, tampered bytes, truncation, unknown version.
	ErrAuthentication = errors.New("authentication failed")

	// ErrInvalidKey reports a key of the wrong length. It indicates a
	// programming error, not a wrong password.
	ErrInvalidKey = errors.New("invalid key length")
)

// sealedToken is version || nonce || ciphertext||tag.
type sealedToken []byte

func newSealedToken(nonce, ciphertext []byte) sealedToken {
	t := make(sealedToken, 0, tokenHeader+len(ciphertext))
	t = append(t, tokenVersion)
	t = append(t, nonce...)
	return append(t, ciphertext...)
}

func (t sealedToken) valid() bool {
	return len(t) >= tokenHeader+tagSize && t[0] == tokenVersion
}

func (t sealedToken) version() []byte { return t[:1] }

func (t sealedToken) nonce() []byte { return t[1:tokenHeader] }

func (t sealedToken) ciphertext() []byte { return t[tokenHeader:] }

// Seal encrypts plaintext under key with XChaCha20-Poly1305 and returns a
// self-contained token carrying the format version and a random nonce.
// The token length is the plaintext length plus a fixed overhead.
func Seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, []byte{tokenVersion})
	return newSealedToken(nonce, ciphertext), nil
}

// Open authenticates and decrypts a token produced by Seal. Any token that
// fails to authenticate yields ErrAuthentication and no plaintext.
func Open(token, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	t := sealedToken(token)
	if !t.valid() {
		return nil, ErrAuthentication
	}

	plaintext, err := aead.Open(nil, t.nonce(), t.ciphertext(), t.version())
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	return aead, nil
}
