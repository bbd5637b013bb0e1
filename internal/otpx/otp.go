// Package otpx computes time-based one-time passwords (RFC 6238) for vault
// accounts and parses otpauth:// provisioning URIs.
package otpx

import (
	"encoding/base32"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultDigits    = 6
	DefaultPeriod    = 30
	DefaultAlgorithm = "SHA1"

	MinDigits = 6
	MaxDigits = 10
)

// Params are the account fields that determine a code.
type Params struct {
	SecretBase32 string
	Digits       int
	Period       int
	Algorithm    string
}

// Code is a generated passcode and the number of seconds until it rolls
// over, in the range [1, period].
type Code struct {
	Code             string `json:"code"`
	SecondsRemaining int    `json:"remaining"`
}

// Generator produces codes against a clock.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a Generator driven by the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorWithClock returns a Generator driven by now.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Current returns the code for p at the generator's current time.
func (g *Generator) Current(p Params) (Code, error) {
	return g.At(p, g.now())
}

// At returns the code for p at time t. It fails with common.ErrInvalidSecret
// when the secret does not decode, the algorithm is unknown, or digits and
// period are out of range.
func (g *Generator) At(p Params, t time.Time) (Code, error) {
	opts, err := validate(p)
	if err != nil {
		return Code{}, err
	}

	code, err := totp.GenerateCodeCustom(p.SecretBase32, t, opts)
	if err != nil {
		return Code{}, fmt.Errorf("%w: %v", common.ErrInvalidSecret, err)
	}

	return Code{Code: code, SecondsRemaining: secondsRemaining(t, p.Period)}, nil
}

func secondsRemaining(t time.Time, period int) int {
	elapsed := t.Unix() % int64(period)
	if elapsed < 0 {
		elapsed += int64(period)
	}
	return period - int(elapsed)
}

func validate(p Params) (totp.ValidateOpts, error) {
	if err := checkSecret(p.SecretBase32); err != nil {
		return totp.ValidateOpts{}, err
	}
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return totp.ValidateOpts{}, fmt.Errorf("%w: digits must be between %d and %d", common.ErrInvalidSecret, MinDigits, MaxDigits)
	}
	if p.Period <= 0 {
		return totp.ValidateOpts{}, fmt.Errorf("%w: period must be positive", common.ErrInvalidSecret)
	}
	alg, err := ParseAlgorithm(p.Algorithm)
	if err != nil {
		return totp.ValidateOpts{}, err
	}
	return totp.ValidateOpts{
		Period:    uint(p.Period),
		Digits:    otp.Digits(p.Digits),
		Algorithm: alg,
	}, nil
}

func checkSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("%w: secret is empty", common.ErrInvalidSecret)
	}
	padded := secret
	if n := len(padded) % 8; n != 0 {
		padded += strings.Repeat("=", 8-n)
	}
	raw, err := base32.StdEncoding.DecodeString(strings.ToUpper(padded))
	if err != nil {
		return fmt.Errorf("%w: secret is not valid base32", common.ErrInvalidSecret)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: secret is empty", common.ErrInvalidSecret)
	}
	return nil
}

// ParseAlgorithm maps an algorithm name (case-insensitive, "SHA-256" style
// accepted) to its otp.Algorithm.
func ParseAlgorithm(name string) (otp.Algorithm, error) {
	switch strings.ReplaceAll(strings.ToUpper(name), "-", "") {
	case "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	}
	return otp.AlgorithmSHA1, fmt.Errorf("%w: unsupported algorithm %q", common.ErrInvalidSecret, name)
}

// NormalizeSecret upper-cases a base32 secret and drops all whitespace, so
// "jbsw y3dp ehpk 3pxp" becomes "JBSWY3DPEHPK3PXP".
func NormalizeSecret(secret string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, secret)
}
