package crypto

import (
	"errors"
	"runtime"

	"olmkit/internal/util/memzero"
)

var errNonceSize = errors.New("invalid nonce size")

// Wipe zeroes the provided buffer. This is best-effort and aims to
// reduce the chance of the compiler eliding the write.
//
//go:noinline
func Wipe(b []byte) {
	memzero.Zero(b)
	// Ensure b is considered live until after the zeroing.
	runtime.KeepAlive(&b)
}
