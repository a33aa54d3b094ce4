// Package utility offers stateless hashing and signature checks over
// caller-supplied bytes.
package utility

import (
	"encoding/base64"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

// Utility wraps the primitives it delegates to. The zero value is not usable;
// build one with New.
type Utility struct {
	prim domain.Primitives
}

// New returns a Utility backed by p.
func New(p domain.Primitives) *Utility { return &Utility{prim: p} }

// SHA256 returns the digest of input.
func (u *Utility) SHA256(input []byte) [32]byte { return u.prim.SHA256(input) }

// SHA256Base64 returns the digest as unpadded base64.
func (u *Utility) SHA256Base64(input []byte) string {
	sum := u.prim.SHA256(input)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

// Ed25519Verify checks sig over msg. A key of the wrong length fails with
// ErrMalformedKeyMaterial; any invalid signature, including one of the wrong
// length, fails with ErrAuthenticationFailed.
func (u *Utility) Ed25519Verify(publicKey, msg, sig []byte) error {
	pub, err := types.ParseEd25519Public(publicKey)
	if err != nil {
		return err
	}
	if !u.prim.VerifyEd25519(pub, msg, sig) {
		return types.NewError(types.KindAuthenticationFailed, "ed25519_verify", nil)
	}
	return nil
}
