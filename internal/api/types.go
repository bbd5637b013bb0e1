package api

import (
	"fmt"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/vault"
)

func missing(field string) error {
	return fmt.Errorf("%w: %s", common.ErrMissingInput, field)
}

type StatusRequest struct{}

type StatusResponse struct {
	VaultExists bool `json:"vault_exists"`
}

// InitRequest creates an empty vault. An existing vault is only replaced
// when Overwrite is set.
type InitRequest struct {
	Password  string `json:"password"`
	Overwrite bool   `json:"overwrite,omitempty"`
}

func (r *InitRequest) Validate() error {
	if r.Password == "" {
		return missing("password")
	}
	return nil
}

type InitResponse struct {
	OK bool `json:"ok"`
}

type UnlockRequest struct {
	Password string `json:"password"`
}

func (r *UnlockRequest) Validate() error {
	if r.Password == "" {
		return missing("password")
	}
	return nil
}

type UnlockResponse struct {
	Accounts []vault.Account `json:"accounts"`
}

// AddRequest adds an account from a base32 secret, an otpauth:// URI, or
// both (explicit fields override the URI).
type AddRequest struct {
	Password  string `json:"password"`
	Issuer    string `json:"issuer,omitempty"`
	Label     string `json:"label,omitempty"`
	Secret    string `json:"secret,omitempty"`
	Digits    int    `json:"digits,omitempty"`
	Period    int    `json:"period,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
	URI       string `json:"uri,omitempty"`
}

func (r *AddRequest) Validate() error {
	if r.Password == "" {
		return missing("password")
	}
	if r.Secret == "" && r.URI == "" {
		return missing("secret or uri")
	}
	return nil
}

// Input converts the request into service input.
func (r *AddRequest) Input() vault.AccountInput {
	return vault.AccountInput{
		Issuer:    r.Issuer,
		Label:     r.Label,
		Secret:    r.Secret,
		Digits:    r.Digits,
		Period:    r.Period,
		Algorithm: r.Algorithm,
		URI:       r.URI,
	}
}

type AddResponse struct {
	Account vault.Account `json:"account"`
}

type RemoveRequest struct {
	Password string `json:"password"`
	ID       string `json:"id"`
}

func (r *RemoveRequest) Validate() error {
	if r.Password == "" {
		return missing("password")
	}
	if r.ID == "" {
		return missing("id")
	}
	return nil
}

type RemoveResponse struct {
	Removed int `json:"removed"`
}

type CodeRequest struct {
	Password string `json:"password"`
	ID       string `json:"id"`
}

func (r *CodeRequest) Validate() error {
	if r.Password == "" {
		return missing("password")
	}
	if r.ID == "" {
		return missing("id")
	}
	return nil
}

type CodeResponse struct {
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
}
