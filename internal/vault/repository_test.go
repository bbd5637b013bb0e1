package vault

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/cryptox"
	"github.com/dmitrijs2005/totpvault/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBlob records how many times the wrapped blob was written.
type countingBlob struct {
	storage.Blob
	writes atomic.Int32
}

func (b *countingBlob) Write(ctx context.Context, data []byte) error {
	b.writes.Add(1)
	return b.Blob.Write(ctx, data)
}

func newFileRepo(t *testing.T) (*Repository, *countingBlob) {
	t.Helper()
	dir := t.TempDir()
	vb := &countingBlob{Blob: storage.NewFileBlob(filepath.Join(dir, "vault.bin"))}
	return NewRepository(storage.NewFileBlob(filepath.Join(dir, "salt.bin")), vb), vb
}

func testKey(b byte) []byte {
	key := make([]byte, cryptox.KeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func TestRepository_ReadAbsentIsEmpty(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := repo.Read(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, v.Version)
	assert.Empty(t, v.Accounts)
}

func TestRepository_InitializeThenRead(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx, testKey(1)))

	ok, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := repo.Read(ctx, testKey(1))
	require.NoError(t, err)
	assert.NotNil(t, v.Accounts)
	assert.Empty(t, v.Accounts)
}

func TestRepository_WriteReadRoundTrip(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()
	key := testKey(7)

	want := &Vault{
		Version: FormatVersion,
		Accounts: []Account{{
			ID:           "0b7c9a54-4f38-4f64-9b31-0d3f0c0e8c11",
			Issuer:       "Example",
			Label:        "alice@example.com",
			SecretBase32: "JBSWY3DPEHPK3PXP",
			Digits:       6,
			Period:       30,
			Algorithm:    "SHA1",
			AddedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}},
	}
	require.NoError(t, repo.Write(ctx, want, key))

	got, err := repo.Read(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestRepository_WrongKey(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Initialize(ctx, testKey(1)))

	_, err := repo.Read(ctx, testKey(2))
	require.ErrorIs(t, err, cryptox.ErrAuthentication)
}

func TestRepository_FlippedByteFailsAuthentication(t *testing.T) {
	dir := t.TempDir()
	vb := storage.NewFileBlob(filepath.Join(dir, "vault.bin"))
	repo := NewRepository(storage.NewFileBlob(filepath.Join(dir, "salt.bin")), vb)
	ctx := context.Background()
	key := testKey(3)

	require.NoError(t, repo.Initialize(ctx, key))
	token, err := vb.Read(ctx)
	require.NoError(t, err)

	for _, i := range []int{0, 5, len(token) / 2, len(token) - 1} {
		tampered := append([]byte(nil), token...)
		tampered[i] ^= 0x01
		require.NoError(t, vb.Write(ctx, tampered))

		_, err := repo.Read(ctx, key)
		require.ErrorIs(t, err, cryptox.ErrAuthentication, "byte %d", i)
	}
}

func TestRepository_CorruptPlaintext(t *testing.T) {
	dir := t.TempDir()
	vb := storage.NewFileBlob(filepath.Join(dir, "vault.bin"))
	repo := NewRepository(storage.NewFileBlob(filepath.Join(dir, "salt.bin")), vb)
	ctx := context.Background()
	key := testKey(4)

	for _, plain := range []string{"not json", "null", `{"accounts": 5}`, `[]`} {
		token, err := cryptox.Seal([]byte(plain), key)
		require.NoError(t, err)
		require.NoError(t, vb.Write(ctx, token))

		_, err = repo.Read(ctx, key)
		require.ErrorIs(t, err, common.ErrCorruptVault, plain)
	}
}

func TestRepository_ForwardCompatibleRead(t *testing.T) {
	dir := t.TempDir()
	vb := storage.NewFileBlob(filepath.Join(dir, "vault.bin"))
	repo := NewRepository(storage.NewFileBlob(filepath.Join(dir, "salt.bin")), vb)
	ctx := context.Background()
	key := testKey(5)

	plain := `{"version":2,"accounts":[{"id":"x","label":"L","secret_base32":"JBSWY3DPEHPK3PXP","digits":6,"period":30,"algorithm":"SHA1","added_at":"2024-01-01T00:00:00Z","color":"red"}],"theme":"dark"}`
	token, err := cryptox.Seal([]byte(plain), key)
	require.NoError(t, err)
	require.NoError(t, vb.Write(ctx, token))

	v, err := repo.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Version)
	require.Len(t, v.Accounts, 1)
	assert.Equal(t, "x", v.Accounts[0].ID)
}

func TestRepository_UpdateAbortsOnError(t *testing.T) {
	repo, vb := newFileRepo(t)
	ctx := context.Background()
	key := testKey(6)

	require.NoError(t, repo.Initialize(ctx, key))
	before := vb.writes.Load()

	boom := assert.AnError
	err := repo.Update(ctx, key, func(v *Vault) error {
		v.Accounts = append(v.Accounts, Account{ID: "lost"})
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, vb.writes.Load())

	v, err := repo.Read(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, v.Accounts)
}

func TestRepository_UpdateSkipWrite(t *testing.T) {
	repo, vb := newFileRepo(t)
	ctx := context.Background()
	key := testKey(6)

	require.NoError(t, repo.Initialize(ctx, key))
	before := vb.writes.Load()

	require.NoError(t, repo.Update(ctx, key, func(*Vault) error { return errSkipWrite }))
	assert.Equal(t, before, vb.writes.Load())
}

func TestRepository_LoadOrCreateSalt(t *testing.T) {
	repo, _ := newFileRepo(t)
	ctx := context.Background()

	first, err := repo.LoadOrCreateSalt(ctx)
	require.NoError(t, err)
	assert.Len(t, first, cryptox.SaltSize)

	second, err := repo.LoadOrCreateSalt(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRepository_LoadOrCreateSalt_WrongLength(t *testing.T) {
	ctx := context.Background()

	for _, salt := range [][]byte{{}, []byte("short"), make([]byte, cryptox.SaltSize+1)} {
		dir := t.TempDir()
		sb := storage.NewFileBlob(filepath.Join(dir, "salt.bin"))
		require.NoError(t, sb.Write(ctx, salt))

		repo := NewRepository(sb, storage.NewFileBlob(filepath.Join(dir, "vault.bin")))
		_, err := repo.LoadOrCreateSalt(ctx)
		assert.ErrorIs(t, err, common.ErrCorruptVault, "salt of %d bytes", len(salt))
	}
}

func TestRepository_InitializeIfAbsent(t *testing.T) {
	repo, vb := newFileRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InitializeIfAbsent(ctx, testKey(1)))
	v, err := repo.Read(ctx, testKey(1))
	require.NoError(t, err)
	assert.Empty(t, v.Accounts)

	require.NoError(t, repo.Update(ctx, testKey(1), func(v *Vault) error {
		v.Accounts = append(v.Accounts, Account{ID: "kept"})
		return nil
	}))
	writes := vb.writes.Load()

	err = repo.InitializeIfAbsent(ctx, testKey(2))
	require.ErrorIs(t, err, common.ErrAlreadyInitialized)
	assert.Equal(t, writes, vb.writes.Load())

	v, err = repo.Read(ctx, testKey(1))
	require.NoError(t, err)
	require.Len(t, v.Accounts, 1)
	assert.Equal(t, "kept", v.Accounts[0].ID)
}

func TestRepository_ConcurrentSaltCreationAgrees(t *testing.T) {
	dir := t.TempDir()
	saltPath := filepath.Join(dir, "salt.bin")
	ctx := context.Background()

	const n = 10
	salts := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// separate repositories over the same files
			repo := NewRepository(storage.NewFileBlob(saltPath), storage.NewFileBlob(filepath.Join(dir, "vault.bin")))
			salt, err := repo.LoadOrCreateSalt(ctx)
			assert.NoError(t, err)
			salts[i] = salt
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, salts[0], salts[i])
	}
}

func TestRepository_SaltRaceLoserRereads(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// The blob reports absent on the first read, as if another process
	// created the salt between Read and Create.
	winner := []byte("0123456789abcdef")
	inner := storage.NewFileBlob(filepath.Join(dir, "salt.bin"))
	require.NoError(t, inner.Create(ctx, winner))
	racy := &staleOnceBlob{Blob: inner}

	repo := NewRepository(racy, storage.NewFileBlob(filepath.Join(dir, "vault.bin")))
	salt, err := repo.LoadOrCreateSalt(ctx)
	require.NoError(t, err)
	assert.Equal(t, winner, salt)
}

type staleOnceBlob struct {
	storage.Blob
	served bool
}

func (b *staleOnceBlob) Read(ctx context.Context) ([]byte, error) {
	if !b.served {
		b.served = true
		return nil, common.ErrorNotFound
	}
	return b.Blob.Read(ctx)
}

func TestLockFor_SharedPerLocation(t *testing.T) {
	assert.Same(t, lockFor("file:/a"), lockFor("file:/a"))
	assert.NotSame(t, lockFor("file:/a"), lockFor("file:/b"))
}

func TestRepository_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	b, err := storage.Open(ctx, storage.Config{Kind: storage.KindSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer b.Close()

	repo := NewRepository(b.Salt, b.Vault)
	salt, err := repo.LoadOrCreateSalt(ctx)
	require.NoError(t, err)
	assert.Len(t, salt, cryptox.SaltSize)

	key := testKey(9)
	require.NoError(t, repo.Update(ctx, key, func(v *Vault) error {
		v.Accounts = append(v.Accounts, Account{ID: "sql", Label: "db"})
		return nil
	}))

	v, err := repo.Read(ctx, key)
	require.NoError(t, err)
	require.Len(t, v.Accounts, 1)
	assert.Equal(t, "sql", v.Accounts[0].ID)
}
