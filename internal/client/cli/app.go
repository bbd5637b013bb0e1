package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/totpvault/internal/api"
	"github.com/dmitrijs2005/totpvault/internal/client/client"
	"github.com/dmitrijs2005/totpvault/internal/client/config"
	"github.com/dmitrijs2005/totpvault/internal/otpx"
	"github.com/dmitrijs2005/totpvault/internal/vault"
)

// VaultClient is the server surface the CLI needs. *client.GRPCClient
// implements it.
type VaultClient interface {
	Status(ctx context.Context) (bool, error)
	Init(ctx context.Context, password string, overwrite bool) error
	Unlock(ctx context.Context, password string) ([]vault.Account, error)
	Add(ctx context.Context, req *api.AddRequest) (*vault.Account, error)
	Remove(ctx context.Context, password, id string) (int, error)
	Code(ctx context.Context, password, id string) (*otpx.Code, error)
	Close() error
}

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	config *config.Config
	client VaultClient
	reader *bufio.Reader
	out    io.Writer
}

// NewApp connects to the server named in c. Nothing is sent until the first
// command runs.
func NewApp(c *config.Config) (*App, error) {
	cl, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return newApp(c, cl, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl VaultClient, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

// Run executes the command in args, or starts the REPL when args is empty.
// The connection is closed on return.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.client.Close()

	if len(args) > 0 {
		return a.Exec(ctx, args[0], args[1:])
	}

	printlnFn("totpvault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.reader)
	return nil
}
