// Package memzero clears sensitive buffers.
package memzero

import "crypto/subtle"

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}

// Zero32 clears a fixed-size key in place.
func Zero32(k *[32]byte) { Zero(k[:]) }

// Zero64 clears a 64-byte key in place.
func Zero64(k *[64]byte) { Zero(k[:]) }
