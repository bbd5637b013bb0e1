package otpx

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/pquerna/otp"
)

// URIAccount is the account data carried by an otpauth:// URI.
type URIAccount struct {
	Issuer string
	Label  string
	Params Params
}

// ParseURI reads an otpauth://totp/ provisioning URI as produced by
// authenticator QR codes. HOTP URIs and URIs without a secret are rejected
// with common.ErrInvalidSecret.
func ParseURI(uri string) (URIAccount, error) {
	uri = strings.TrimSpace(uri)
	u, err := url.Parse(uri)
	if err != nil {
		return URIAccount{}, fmt.Errorf("%w: %v", common.ErrInvalidSecret, err)
	}
	if u.Scheme != "otpauth" {
		return URIAccount{}, fmt.Errorf("%w: not an otpauth uri", common.ErrInvalidSecret)
	}

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return URIAccount{}, fmt.Errorf("%w: %v", common.ErrInvalidSecret, err)
	}
	if key.Type() != "totp" {
		return URIAccount{}, fmt.Errorf("%w: unsupported otpauth type %q", common.ErrInvalidSecret, key.Type())
	}
	if key.Secret() == "" {
		return URIAccount{}, fmt.Errorf("%w: otpauth uri has no secret", common.ErrInvalidSecret)
	}

	return URIAccount{
		Issuer: key.Issuer(),
		Label:  key.AccountName(),
		Params: Params{
			SecretBase32: NormalizeSecret(key.Secret()),
			Digits:       int(key.Digits()),
			Period:       int(key.Period()),
			Algorithm:    key.Algorithm().String(),
		},
	}, nil
}
