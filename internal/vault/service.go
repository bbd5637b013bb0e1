package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/cryptox"
	"github.com/dmitrijs2005/totpvault/internal/logging"
	"github.com/dmitrijs2005/totpvault/internal/otpx"
	"github.com/google/uuid"
)

// Service runs vault operations. Every call takes the password, derives the
// key, does its work and wipes the key; nothing stays unlocked between calls.
type Service struct {
	repo   *Repository
	codes  *otpx.Generator
	logger logging.Logger
	now    func() time.Time
}

func NewService(repo *Repository, codes *otpx.Generator, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		codes:  codes,
		logger: logger.With("module", "vault"),
		now:    time.Now,
	}
}

// Status reports whether a vault exists.
func (s *Service) Status(ctx context.Context) (bool, error) {
	return s.repo.Exists(ctx)
}

// Init creates an empty vault sealed under password. An existing vault is
// replaced only when overwrite is set; otherwise Init fails with
// common.ErrAlreadyInitialized. The existence check and the write happen
// under the vault's write lock. The salt is reused if present.
func (s *Service) Init(ctx context.Context, password string, overwrite bool) error {
	key, err := s.deriveKey(ctx, password)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	if overwrite {
		err = s.repo.Initialize(ctx, key)
	} else {
		err = s.repo.InitializeIfAbsent(ctx, key)
	}
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "vault initialized", "overwrite", overwrite)
	return nil
}

// Unlock returns every account, secrets included.
func (s *Service) Unlock(ctx context.Context, password string) ([]Account, error) {
	v, err := s.open(ctx, password)
	if err != nil {
		return nil, err
	}
	return v.Accounts, nil
}

// AddAccount validates in, appends it as a new account and returns it.
func (s *Service) AddAccount(ctx context.Context, password string, in AccountInput) (*Account, error) {
	acc, err := s.newAccount(in)
	if err != nil {
		return nil, err
	}

	key, err := s.deriveKey(ctx, password)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	err = s.repo.Update(ctx, key, func(v *Vault) error {
		v.Accounts = append(v.Accounts, *acc)
		return nil
	})
	if err != nil {
		return nil, s.vaultError(ctx, err)
	}

	s.logger.Info(ctx, "account added", "id", acc.ID)
	return acc, nil
}

// RemoveAccount deletes the account with id and returns how many accounts
// were removed (0 or 1). Nothing is written when id is unknown.
func (s *Service) RemoveAccount(ctx context.Context, password, id string) (int, error) {
	key, err := s.deriveKey(ctx, password)
	if err != nil {
		return 0, err
	}
	defer common.WipeByteArray(key)

	var removed int
	err = s.repo.Update(ctx, key, func(v *Vault) error {
		removed = v.Remove(id)
		if removed == 0 {
			return errSkipWrite
		}
		return nil
	})
	if err != nil {
		return 0, s.vaultError(ctx, err)
	}

	if removed > 0 {
		s.logger.Info(ctx, "account removed", "id", id)
	}
	return removed, nil
}

// GetCode returns the current code for the account with id.
func (s *Service) GetCode(ctx context.Context, password, id string) (*otpx.Code, error) {
	v, err := s.open(ctx, password)
	if err != nil {
		return nil, err
	}

	acc := v.Find(id)
	if acc == nil {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrorNotFound)
	}

	code, err := s.codes.Current(acc.OTPParams())
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (s *Service) open(ctx context.Context, password string) (*Vault, error) {
	key, err := s.deriveKey(ctx, password)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	v, err := s.repo.Read(ctx, key)
	if err != nil {
		return nil, s.vaultError(ctx, err)
	}
	return v, nil
}

func (s *Service) deriveKey(ctx context.Context, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password", common.ErrMissingInput)
	}

	salt, err := s.repo.LoadOrCreateSalt(ctx)
	if err != nil {
		return nil, err
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key, err := cryptox.DeriveKey(pw, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// vaultError turns an authentication failure into ErrWrongPassword and logs
// which of wrong password or corruption happened. Callers outside the
// process cannot tell the two apart.
func (s *Service) vaultError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, cryptox.ErrAuthentication):
		s.logger.Warn(ctx, "vault authentication failed")
		return common.ErrWrongPassword
	case errors.Is(err, common.ErrCorruptVault):
		s.logger.Error(ctx, "vault content is corrupt", "error", err)
	}
	return err
}

func (s *Service) newAccount(in AccountInput) (*Account, error) {
	if in.URI != "" {
		u, err := otpx.ParseURI(in.URI)
		if err != nil {
			return nil, err
		}
		in.Issuer = firstNonEmpty(in.Issuer, u.Issuer)
		in.Label = firstNonEmpty(in.Label, u.Label)
		in.Secret = firstNonEmpty(in.Secret, u.Params.SecretBase32)
		in.Algorithm = firstNonEmpty(in.Algorithm, u.Params.Algorithm)
		if in.Digits == 0 {
			in.Digits = u.Params.Digits
		}
		if in.Period == 0 {
			in.Period = u.Params.Period
		}
	}

	acc := &Account{
		ID:           uuid.NewString(),
		Issuer:       in.Issuer,
		Label:        firstNonEmpty(in.Label, DefaultLabel),
		SecretBase32: otpx.NormalizeSecret(in.Secret),
		Digits:       in.Digits,
		Period:       in.Period,
		Algorithm:    firstNonEmpty(in.Algorithm, otpx.DefaultAlgorithm),
		AddedAt:      s.now().UTC(),
	}
	if acc.Digits == 0 {
		acc.Digits = otpx.DefaultDigits
	}
	if acc.Period == 0 {
		acc.Period = otpx.DefaultPeriod
	}

	alg, err := otpx.ParseAlgorithm(acc.Algorithm)
	if err != nil {
		return nil, err
	}
	acc.Algorithm = alg.String()

	// one code proves the parameters work
	if _, err := s.codes.Current(acc.OTPParams()); err != nil {
		return nil, err
	}
	return acc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
