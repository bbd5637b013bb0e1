package grpc

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/totpvault/internal/api"
	"github.com/dmitrijs2005/totpvault/internal/common"
	"github.com/dmitrijs2005/totpvault/internal/logging"
	"github.com/dmitrijs2005/totpvault/internal/otpx"
	"github.com/dmitrijs2005/totpvault/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

// recLogger records log calls.
type recLogger struct {
	mu      sync.Mutex
	entries *[]logEntry
}

func newRecLogger() *recLogger { return &recLogger{entries: &[]logEntry{}} }

func (l *recLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, logEntry{level, msg, args})
}

func (l *recLogger) Debug(_ context.Context, msg string, args ...any) { l.add("debug", msg, args) }
func (l *recLogger) Info(_ context.Context, msg string, args ...any)  { l.add("info", msg, args) }
func (l *recLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recLogger) Error(_ context.Context, msg string, args ...any) { l.add("error", msg, args) }
func (l *recLogger) With(...any) logging.Logger                       { return l }

func (l *recLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), *l.entries...)
}

type fakeVault struct {
	exists    bool
	err       error
	inited    string
	overwrite bool
	added   vault.AccountInput
	removed string
}

func (f *fakeVault) Status(context.Context) (bool, error) { return f.exists, f.err }

func (f *fakeVault) Init(_ context.Context, password string, overwrite bool) error {
	if f.exists && !overwrite {
		return common.ErrAlreadyInitialized
	}
	f.inited = password
	f.overwrite = overwrite
	return f.err
}

func (f *fakeVault) Unlock(context.Context, string) ([]vault.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []vault.Account{{ID: "a1", Label: "one"}}, nil
}

func (f *fakeVault) AddAccount(_ context.Context, _ string, in vault.AccountInput) (*vault.Account, error) {
	f.added = in
	if f.err != nil {
		return nil, f.err
	}
	return &vault.Account{ID: "new", Label: in.Label}, nil
}

func (f *fakeVault) RemoveAccount(_ context.Context, _, id string) (int, error) {
	f.removed = id
	return 1, f.err
}

func (f *fakeVault) GetCode(context.Context, string, string) (*otpx.Code, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &otpx.Code{Code: "123456", SecondsRemaining: 12}, nil
}

func newTestServer(fv *fakeVault) (*GRPCServer, *recLogger) {
	l := newRecLogger()
	return NewGRPCServer("127.0.0.1:0", l, fv, time.Second), l
}

func requireCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "expected a status error, got %v", err)
	require.Equal(t, want, st.Code(), st.Message())
}

func TestInit_RefusesExistingVaultWithoutOverwrite(t *testing.T) {
	fv := &fakeVault{exists: true}
	s, _ := newTestServer(fv)

	_, err := s.Init(context.Background(), &api.InitRequest{Password: "pw"})
	requireCode(t, err, codes.AlreadyExists)
	assert.Empty(t, fv.inited)

	resp, err := s.Init(context.Background(), &api.InitRequest{Password: "pw", Overwrite: true})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "pw", fv.inited)
	assert.True(t, fv.overwrite)
}

func TestInit_NewVault(t *testing.T) {
	fv := &fakeVault{}
	s, _ := newTestServer(fv)

	resp, err := s.Init(context.Background(), &api.InitRequest{Password: "pw"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "pw", fv.inited)
}

func TestHandlers_MissingInput(t *testing.T) {
	fv := &fakeVault{}
	s, _ := newTestServer(fv)
	ctx := context.Background()

	_, err := s.Init(ctx, &api.InitRequest{})
	requireCode(t, err, codes.InvalidArgument)
	_, err = s.Unlock(ctx, &api.UnlockRequest{})
	requireCode(t, err, codes.InvalidArgument)
	_, err = s.Add(ctx, &api.AddRequest{Password: "pw"})
	requireCode(t, err, codes.InvalidArgument)
	_, err = s.Remove(ctx, &api.RemoveRequest{Password: "pw"})
	requireCode(t, err, codes.InvalidArgument)
	_, err = s.Code(ctx, &api.CodeRequest{ID: "x"})
	requireCode(t, err, codes.InvalidArgument)

	assert.Empty(t, fv.inited)
	assert.Empty(t, fv.removed)
}

func TestHandlers_Success(t *testing.T) {
	fv := &fakeVault{exists: true}
	s, _ := newTestServer(fv)
	ctx := context.Background()

	st, err := s.Status(ctx, &api.StatusRequest{})
	require.NoError(t, err)
	assert.True(t, st.VaultExists)

	un, err := s.Unlock(ctx, &api.UnlockRequest{Password: "pw"})
	require.NoError(t, err)
	require.Len(t, un.Accounts, 1)

	add, err := s.Add(ctx, &api.AddRequest{Password: "pw", Secret: "JBSWY3DPEHPK3PXP", Label: "work", Digits: 8})
	require.NoError(t, err)
	assert.Equal(t, "new", add.Account.ID)
	assert.Equal(t, vault.AccountInput{Label: "work", Secret: "JBSWY3DPEHPK3PXP", Digits: 8}, fv.added)

	rm, err := s.Remove(ctx, &api.RemoveRequest{Password: "pw", ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, 1, rm.Removed)
	assert.Equal(t, "a1", fv.removed)

	code, err := s.Code(ctx, &api.CodeRequest{Password: "pw", ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, &api.CodeResponse{Code: "123456", Remaining: 12}, code)
}

func TestHandlers_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrWrongPassword, codes.Unauthenticated},
		{fmt.Errorf("%w: bad json", common.ErrCorruptVault), codes.Unauthenticated},
		{fmt.Errorf("account x: %w", common.ErrorNotFound), codes.NotFound},
		{common.ErrInvalidSecret, codes.InvalidArgument},
		{fmt.Errorf("read vault: disk error"), codes.Internal},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			s, _ := newTestServer(&fakeVault{err: tc.err})
			_, err := s.Code(context.Background(), &api.CodeRequest{Password: "pw", ID: "x"})
			requireCode(t, err, tc.code)
		})
	}
}

func TestHandlers_CorruptVaultIsLoggedDistinctly(t *testing.T) {
	s, logs := newTestServer(&fakeVault{err: common.ErrCorruptVault})
	_, err := s.Unlock(context.Background(), &api.UnlockRequest{Password: "pw"})
	requireCode(t, err, codes.Unauthenticated)

	var found bool
	for _, e := range logs.all() {
		if e.level == "error" && e.msg == "unlock failed" {
			assert.Contains(t, e.args, common.KindCorruptVault)
			found = true
		}
	}
	assert.True(t, found)
}
