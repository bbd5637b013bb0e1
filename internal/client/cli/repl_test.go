package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
	err   error
}

func (f *fakeExec) Exec(_ context.Context, cmd string, args []string) error {
	f.calls = append(f.calls, fmt.Sprintf("%s %v", cmd, args))
	return f.err
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesUntilExit(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{}

	runREPL(context.Background(), exec, rdr("status\n\n  code abc  \nlist\nexit\nstatus\n"))

	assert.Equal(t, []string{"status []", "code [abc]", "list []"}, exec.calls)
	assert.Contains(t, *out, "Bye!\n")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)
	exec := &fakeExec{}

	runREPL(context.Background(), exec, rdr("status\ncode x"))

	assert.Equal(t, []string{"status []", "code [x]"}, exec.calls)
}

func TestRunREPL_PrintsErrors(t *testing.T) {
	out := captureOutput(t)
	exec := &fakeExec{err: errors.New("nope")}

	runREPL(context.Background(), exec, rdr("status\nquit\n"))

	assert.Contains(t, *out, "Error: nope\n")
}

func TestRunREPL_CanceledContext(t *testing.T) {
	captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}

	runREPL(ctx, exec, rdr("status\n"))

	assert.Empty(t, exec.calls)
}
