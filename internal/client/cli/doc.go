// Package cli is the totpvault command-line client.
//
// Commands run either one-shot (totpvault-cli code <id>) or inside an
// interactive REPL when no command is given. The vault password is read
// from the terminal without echo for every command and is never cached.
//
// Commands:
//   - status                 report whether a vault exists
//   - init [-overwrite]      create an empty vault
//   - list                   list accounts
//   - add [flags]            add an account from a secret or otpauth:// URI
//   - remove <id>            remove an account
//   - code <id>              print the current code for an account
package cli
