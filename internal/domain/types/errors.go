package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the core can report.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindEntropyUnavailable
	KindMalformedKeyMaterial
	KindUnknownOneTimeKey
	KindOneTimeKeyExhausted
	KindAuthenticationFailed
	KindAlreadyDecrypted
	KindBadPassphrase
	KindUnsupportedVersion
	KindCapacityExceeded
	KindMalformedMessage
	KindStaleHandle
)

var kindNames = [...]string{
	KindUnknown:              "UNKNOWN",
	KindEntropyUnavailable:   "ENTROPY_UNAVAILABLE",
	KindMalformedKeyMaterial: "MALFORMED_KEY_MATERIAL",
	KindUnknownOneTimeKey:    "UNKNOWN_ONE_TIME_KEY",
	KindOneTimeKeyExhausted:  "ONE_TIME_KEY_EXHAUSTED",
	KindAuthenticationFailed: "AUTHENTICATION_FAILED",
	KindAlreadyDecrypted:     "ALREADY_DECRYPTED",
	KindBadPassphrase:        "BAD_PASSPHRASE",
	KindUnsupportedVersion:   "UNSUPPORTED_VERSION",
	KindCapacityExceeded:     "CAPACITY_EXCEEDED",
	KindMalformedMessage:     "MALFORMED_MESSAGE",
	KindStaleHandle:          "STALE_HANDLE",
}

// String returns the upper-case name of the kind.
func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is the structured failure returned by every fallible core operation.
//
// Op names the operation that failed and Err carries the context reported
// by the underlying primitive, if any.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEntropyUnavailable   = &Error{Kind: KindEntropyUnavailable}
	ErrMalformedKeyMaterial = &Error{Kind: KindMalformedKeyMaterial}
	ErrUnknownOneTimeKey    = &Error{Kind: KindUnknownOneTimeKey}
	ErrOneTimeKeyExhausted  = &Error{Kind: KindOneTimeKeyExhausted}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrAlreadyDecrypted     = &Error{Kind: KindAlreadyDecrypted}
	ErrBadPassphrase        = &Error{Kind: KindBadPassphrase}
	ErrUnsupportedVersion   = &Error{Kind: KindUnsupportedVersion}
	ErrCapacityExceeded     = &Error{Kind: KindCapacityExceeded}
	ErrMalformedMessage     = &Error{Kind: KindMalformedMessage}
	ErrStaleHandle          = &Error{Kind: KindStaleHandle}
)

// NewError builds an *Error for op. A nil cause is allowed.
func NewError(kind ErrorKind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf extracts the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
