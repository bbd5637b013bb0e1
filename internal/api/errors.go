package api

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/totpvault/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// msgUnauthenticated is shared by wrong-password and corrupt-vault failures
// so a caller cannot tell them apart.
const msgUnauthenticated = "wrong password or unreadable vault"

// StatusError converts a service error into a gRPC status error carrying an
// errdetails.ErrorInfo with the error kind as Reason. Messages of internal
// errors are not forwarded.
func StatusError(err error) error {
	if err == nil {
		return nil
	}

	kind := common.KindOf(err)
	var (
		code codes.Code
		msg  = err.Error()
	)
	switch kind {
	case common.KindMissingInput, common.KindInvalidSecret:
		code = codes.InvalidArgument
	case common.KindWrongPassword, common.KindCorruptVault:
		code, kind, msg = codes.Unauthenticated, common.KindWrongPassword, msgUnauthenticated
	case common.KindNotFound:
		code = codes.NotFound
	case common.KindAlreadyInitialized:
		code = codes.AlreadyExists
	default:
		code, kind, msg = codes.Internal, common.KindInternal, "internal error"
	}

	st := status.New(code, msg)
	if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: string(kind),
		Domain: common.ErrorDomain,
	}); derr == nil {
		st = withInfo
	}
	return st.Err()
}

// FromStatus maps a gRPC status error back to the matching common sentinel,
// keeping the server message. Transport failures (unavailable, deadline,
// canceled) are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.Domain != common.ErrorDomain {
			continue
		}
		sentinel := common.Kind(info.Reason).Err()
		if st.Message() == sentinel.Error() {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, st.Message())
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return err
	case codes.Unauthenticated:
		return common.ErrWrongPassword
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrMissingInput, st.Message())
	}
	return errors.Join(common.ErrorInternal, err)
}
