package cli

import (
	"errors"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	errUnknownCommand   = errors.New("unknown command, type 'help'")
	errPasswordMismatch = errors.New("passwords do not match")
)

// ErrorMessage turns a command error into one line for the user.
func ErrorMessage(err error) string {
	switch status.Code(err) {
	case codes.Unavailable:
		return "vault server unavailable"
	case codes.DeadlineExceeded:
		return "request timed out"
	}

	switch common.KindOf(err) {
	case common.KindWrongPassword, common.KindCorruptVault:
		return "wrong password or unreadable vault"
	case common.KindNotFound:
		return "account not found"
	case common.KindAlreadyInitialized:
		return "vault already exists, use 'init -overwrite' to replace it"
	}
	return err.Error()
}
