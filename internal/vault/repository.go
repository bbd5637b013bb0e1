package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/cryptox"
	"github.com/dmitrijs2005/totpvault/internal/storage"
)

// locks maps a blob location to its *sync.RWMutex. It is shared by every
// Repository in the process, so two repositories over the same location
// serialize against each other.
var locks sync.Map

func lockFor(location string) *sync.RWMutex {
	mu, _ := locks.LoadOrStore(location, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

// Repository owns the salt blob and the sealed vault blob.
type Repository struct {
	salt  storage.Blob
	vault storage.Blob
}

func NewRepository(salt, vault storage.Blob) *Repository {
	return &Repository{salt: salt, vault: vault}
}

// Exists reports whether a vault has been written.
func (r *Repository) Exists(ctx context.Context) (bool, error) {
	mu := lockFor(r.vault.Location())
	mu.RLock()
	defer mu.RUnlock()

	return r.vault.Exists(ctx)
}

// LoadOrCreateSalt returns the persisted salt, generating and storing a new
// one on first use. A creator that loses a race re-reads the winner's salt.
func (r *Repository) LoadOrCreateSalt(ctx context.Context) ([]byte, error) {
	mu := lockFor(r.salt.Location())
	mu.Lock()
	defer mu.Unlock()

	salt, err := r.salt.Read(ctx)
	if err == nil {
		return checkSalt(salt)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("read salt: %w", err)
	}

	salt = common.GenerateRandByteArray(cryptox.SaltSize)
	err = r.salt.Create(ctx, salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, storage.ErrAlreadyExists) {
		return nil, fmt.Errorf("create salt: %w", err)
	}

	// another process created it first
	salt, err = r.salt.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return checkSalt(salt)
}

func checkSalt(salt []byte) ([]byte, error) {
	if len(salt) != cryptox.SaltSize {
		return nil, fmt.Errorf("%w: salt is %d bytes, want %d", common.ErrCorruptVault, len(salt), cryptox.SaltSize)
	}
	return salt, nil
}

// Initialize writes a freshly sealed empty vault, replacing any existing one.
func (r *Repository) Initialize(ctx context.Context, key []byte) error {
	mu := lockFor(r.vault.Location())
	mu.Lock()
	defer mu.Unlock()

	return r.write(ctx, NewVault(), key)
}

// InitializeIfAbsent writes a freshly sealed empty vault only when none is
// stored, using the backend's create-if-absent so other processes are
// covered too. An existing vault yields common.ErrAlreadyInitialized.
func (r *Repository) InitializeIfAbsent(ctx context.Context, key []byte) error {
	mu := lockFor(r.vault.Location())
	mu.Lock()
	defer mu.Unlock()

	token, err := seal(NewVault(), key)
	if err != nil {
		return err
	}
	err = r.vault.Create(ctx, token)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return common.ErrAlreadyInitialized
	}
	if err != nil {
		return fmt.Errorf("create vault: %w", err)
	}
	return nil
}

// Read opens the vault. A vault that was never written reads as empty. A
// token that fails authentication yields cryptox.ErrAuthentication; one that
// opens but does not hold a vault yields common.ErrCorruptVault.
func (r *Repository) Read(ctx context.Context, key []byte) (*Vault, error) {
	mu := lockFor(r.vault.Location())
	mu.RLock()
	defer mu.RUnlock()

	return r.read(ctx, key)
}

// Write seals v under key and replaces the stored vault.
func (r *Repository) Write(ctx context.Context, v *Vault, key []byte) error {
	mu := lockFor(r.vault.Location())
	mu.Lock()
	defer mu.Unlock()

	return r.write(ctx, v, key)
}

// Update reads the vault, applies fn and writes the result, all under the
// write lock. If fn returns an error nothing is written. fn may return
// errSkipWrite to finish without writing.
func (r *Repository) Update(ctx context.Context, key []byte, fn func(*Vault) error) error {
	mu := lockFor(r.vault.Location())
	mu.Lock()
	defer mu.Unlock()

	v, err := r.read(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(v); err != nil {
		if errors.Is(err, errSkipWrite) {
			return nil
		}
		return err
	}
	return r.write(ctx, v, key)
}

// errSkipWrite lets an Update callback leave the vault untouched.
var errSkipWrite = errors.New("skip write")

func (r *Repository) read(ctx context.Context, key []byte) (*Vault, error) {
	token, err := r.vault.Read(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return NewVault(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	plain, err := cryptox.Open(token, key)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(plain)

	return decodeVault(plain)
}

func (r *Repository) write(ctx context.Context, v *Vault, key []byte) error {
	token, err := seal(v, key)
	if err != nil {
		return err
	}
	if err := r.vault.Write(ctx, token); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}

func seal(v *Vault, key []byte) ([]byte, error) {
	plain, err := encodeVault(v)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(plain)

	token, err := cryptox.Seal(plain, key)
	if err != nil {
		return nil, fmt.Errorf("seal vault: %w", err)
	}
	return token, nil
}

func encodeVault(v *Vault) ([]byte, error) {
	out := Vault{Version: FormatVersion, Accounts: v.Accounts}
	if out.Accounts == nil {
		out.Accounts = []Account{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode vault: %w", err)
	}
	return data, nil
}

func decodeVault(data []byte) (*Vault, error) {
	var v *Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptVault, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: empty document", common.ErrCorruptVault)
	}
	if v.Version == 0 {
		v.Version = FormatVersion
	}
	if v.Accounts == nil {
		v.Accounts = []Account{}
	}
	return v, nil
}
