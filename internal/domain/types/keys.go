package types

import "fmt"

// Key sizes in bytes.
const (
	X25519KeySize        = 32
	Ed25519PublicKeySize = 32
	Ed25519PrivateSize   = 64
	Ed25519SignatureSize = 64
)

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// IsZero reports whether the key is all zeroes.
func (p X25519Public) IsZero() bool { return p == X25519Public{} }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// Ed25519Private is an Ed25519 signing private key (seed || public).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// ParseX25519Public copies b into an X25519Public, rejecting any other length.
func ParseX25519Public(b []byte) (X25519Public, error) {
	var out X25519Public
	if len(b) != X25519KeySize {
		return out, &Error{
			Kind: KindMalformedKeyMaterial,
			Op:   "parse_curve25519",
			Err:  fmt.Errorf("want %d bytes, got %d", X25519KeySize, len(b)),
		}
	}
	copy(out[:], b)
	return out, nil
}

// ParseEd25519Public copies b into an Ed25519Public, rejecting any other length.
func ParseEd25519Public(b []byte) (Ed25519Public, error) {
	var out Ed25519Public
	if len(b) != Ed25519PublicKeySize {
		return out, &Error{
			Kind: KindMalformedKeyMaterial,
			Op:   "parse_ed25519",
			Err:  fmt.Errorf("want %d bytes, got %d", Ed25519PublicKeySize, len(b)),
		}
	}
	copy(out[:], b)
	return out, nil
}
