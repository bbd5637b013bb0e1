package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is what the REPL drives. *App satisfies it.
type execIface interface {
	Exec(ctx context.Context, cmd string, args []string) error
}

// runREPL reads one command per line from reader and hands it to a. Errors
// are printed and the loop continues. It returns on EOF, on "exit"/"quit",
// or when ctx is done.
//
// Lines are read from the same reader the commands prompt on, so an "add"
// that asks for a secret consumes the following line.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn("totp> ")

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			if err := a.Exec(ctx, cmd, parts[1:]); err != nil {
				printlnFn("Error:", ErrorMessage(err))
			}
		}
	}
}
