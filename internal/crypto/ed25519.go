package crypto

import (
	"crypto/ed25519"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

// GenerateEd25519 returns a new Ed25519 signing key pair.
func (d *Default) GenerateEd25519() (priv domain.Ed25519Private, pub domain.Ed25519Public, err error) {
	seed, err := d.Random(ed25519.SeedSize)
	if err != nil {
		return priv, pub, err
	}
	sk := ed25519.NewKeyFromSeed(seed)
	Wipe(seed)
	copy(priv[:], sk)
	copy(pub[:], sk[ed25519.SeedSize:])
	Wipe(sk)
	return priv, pub, nil
}

// SignEd25519 signs msg with priv and returns the signature.
func (d *Default) SignEd25519(priv domain.Ed25519Private, msg []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(priv[:]), msg)
}

// VerifyEd25519 verifies sig over msg with pub. A signature of the wrong
// length is simply invalid.
func (d *Default) VerifyEd25519(pub domain.Ed25519Public, msg, sig []byte) bool {
	if len(sig) != types.Ed25519SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig)
}
