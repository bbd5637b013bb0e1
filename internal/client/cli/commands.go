package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/totpvault/internal/api"
	"github.com/dmitrijs2005/totpvault/internal/common"
)

const helpText = `Available commands:
  status                 report whether a vault exists
  init [-overwrite]      create an empty vault
  list                   list accounts
  add [flags]            add an account (-issuer -label -secret -uri -digits -period -algorithm)
  remove <id>            remove an account
  code <id>              show the current code
  exit                   leave the program`

// Exec runs one command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "status":
		return a.Status(ctx)
	case "init":
		return a.Init(ctx, args)
	case "l", "list":
		return a.List(ctx)
	case "add":
		return a.Add(ctx, args)
	case "rm", "remove":
		return a.Remove(ctx, args)
	case "code":
		return a.Code(ctx, args)
	}
	return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
}

// password prompts for the vault password. The terminal buffer is wiped
// once the string copy is made.
func (a *App) password(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)

	if len(pw) == 0 {
		return "", fmt.Errorf("%w: password", common.ErrMissingInput)
	}
	return string(pw), nil
}

func (a *App) Status(ctx context.Context) error {
	exists, err := a.client.Status(ctx)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintln(a.out, "Vault exists")
	} else {
		fmt.Fprintln(a.out, "No vault yet, run 'init' to create one")
	}
	return nil
}

func (a *App) Init(ctx context.Context, args []string) error {
	fs := newFlagSet("init")
	overwrite := fs.Bool("overwrite", false, "replace an existing vault")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := a.password("New vault password")
	if err != nil {
		return err
	}
	confirm, err := a.password("Repeat password")
	if err != nil {
		return err
	}
	if pw != confirm {
		return errPasswordMismatch
	}

	if err := a.client.Init(ctx, pw, *overwrite); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Vault created")
	return nil
}

func (a *App) List(ctx context.Context) error {
	pw, err := a.password("Vault password")
	if err != nil {
		return err
	}

	accounts, err := a.client.Unlock(ctx, pw)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tISSUER\tLABEL\tDIGITS\tPERIOD\tALGORITHM")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			acc.ID, acc.Issuer, acc.Label, acc.Digits, acc.Period, acc.Algorithm)
	}
	return tw.Flush()
}

// Add takes the account from flags. Without -secret or -uri it prompts for
// one, so the secret need not appear in shell history.
func (a *App) Add(ctx context.Context, args []string) error {
	req := &api.AddRequest{}

	fs := newFlagSet("add")
	fs.StringVar(&req.Issuer, "issuer", "", "issuer, e.g. GitHub")
	fs.StringVar(&req.Label, "label", "", "account label")
	fs.StringVar(&req.Secret, "secret", "", "base32 secret")
	fs.StringVar(&req.URI, "uri", "", "otpauth:// URI")
	fs.IntVar(&req.Digits, "digits", 0, "code length (6..10)")
	fs.IntVar(&req.Period, "period", 0, "period in seconds")
	fs.StringVar(&req.Algorithm, "algorithm", "", "SHA1, SHA256 or SHA512")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if req.Secret == "" && req.URI == "" {
		s, err := getSimpleText(a.reader, "Secret (base32) or otpauth:// URI", a.out)
		if err != nil {
			return err
		}
		if strings.HasPrefix(strings.ToLower(s), "otpauth://") {
			req.URI = s
		} else {
			req.Secret = s
			if err := a.promptNames(req); err != nil {
				return err
			}
		}
	}
	if req.Secret == "" && req.URI == "" {
		return fmt.Errorf("%w: secret or uri", common.ErrMissingInput)
	}

	pw, err := a.password("Vault password")
	if err != nil {
		return err
	}
	req.Password = pw

	acc, err := a.client.Add(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", acc.ID, displayName(acc.Issuer, acc.Label))
	return nil
}

func (a *App) promptNames(req *api.AddRequest) error {
	var err error
	if req.Issuer == "" {
		if req.Issuer, err = getSimpleText(a.reader, "Issuer (optional)", a.out); err != nil {
			return err
		}
	}
	if req.Label == "" {
		if req.Label, err = getSimpleText(a.reader, "Label (optional)", a.out); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: remove <id>", common.ErrMissingInput)
	}

	pw, err := a.password("Vault password")
	if err != nil {
		return err
	}

	n, err := a.client.Remove(ctx, pw, args[0])
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(a.out, "No account with id %s\n", args[0])
	} else {
		fmt.Fprintf(a.out, "Removed %s\n", args[0])
	}
	return nil
}

func (a *App) Code(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: code <id>", common.ErrMissingInput)
	}

	pw, err := a.password("Vault password")
	if err != nil {
		return err
	}

	code, err := a.client.Code(ctx, pw, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  (%ds left)\n", code.Code, code.SecondsRemaining)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func displayName(issuer, label string) string {
	if issuer == "" {
		return label
	}
	return issuer + ":" + label
}
