// Package vault holds the encrypted TOTP account vault: its data model, the
// repository that seals and persists it, and the service that runs one
// password-authenticated operation per call.
package vault

import (
	"time"

	"github.com/dmitrijs2005/totpvault/internal/otpx"
)

// FormatVersion is written into every vault. Readers accept any version and
// ignore fields they do not know.
const FormatVersion = 1

const DefaultLabel = "Account"

// Account is one TOTP entry. Accounts are immutable once added.
type Account struct {
	ID           string    `json:"id"`
	Issuer       string    `json:"issuer,omitempty"`
	Label        string    `json:"label"`
	SecretBase32 string    `json:"secret_base32"`
	Digits       int       `json:"digits"`
	Period       int       `json:"period"`
	Algorithm    string    `json:"algorithm"`
	AddedAt      time.Time `json:"added_at"`
}

// OTPParams returns the fields that determine the account's codes.
func (a *Account) OTPParams() otpx.Params {
	return otpx.Params{
		SecretBase32: a.SecretBase32,
		Digits:       a.Digits,
		Period:       a.Period,
		Algorithm:    a.Algorithm,
	}
}

// Vault is the plaintext content of the sealed vault blob.
type Vault struct {
	Version  int       `json:"version"`
	Accounts []Account `json:"accounts"`
}

// NewVault returns an empty vault at the current format version.
func NewVault() *Vault {
	return &Vault{Version: FormatVersion, Accounts: []Account{}}
}

// Find returns the account with id, or nil.
func (v *Vault) Find(id string) *Account {
	for i := range v.Accounts {
		if v.Accounts[i].ID == id {
			return &v.Accounts[i]
		}
	}
	return nil
}

// Remove drops every account with id and reports how many were dropped.
func (v *Vault) Remove(id string) int {
	kept := v.Accounts[:0]
	for _, a := range v.Accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	removed := len(v.Accounts) - len(kept)
	v.Accounts = kept
	return removed
}

// AccountInput carries the caller-supplied fields for a new account. Zero
// values mean "use the default". When URI is set, its fields fill whatever
// the explicit fields leave empty.
type AccountInput struct {
	Issuer    string
	Label     string
	Secret    string
	Digits    int
	Period    int
	Algorithm string
	URI       string
}
