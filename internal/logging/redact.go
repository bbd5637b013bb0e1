package logging

import "strings"

const redacted = "[REDACTED]"

// sensitiveKeys are attribute keys whose values are never written, whatever
// the caller passes. An otpauth URI carries the secret, so it is listed too.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"secret":        {},
	"secret_base32": {},
	"uri":           {},
	"key":           {},
}

func isSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}
