package crypto

import (
	"golang.org/x/crypto/curve25519"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func (d *Default) GenerateX25519() (priv domain.X25519Private, pub domain.X25519Public, err error) {
	seed, err := d.Random(types.X25519KeySize)
	if err != nil {
		return priv, pub, err
	}
	copy(priv[:], seed)
	Wipe(seed)
	clamp(&priv)
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return priv, pub, types.NewError(types.KindMalformedKeyMaterial, "x25519_keypair", err)
	}
	copy(pub[:], pb)
	return priv, pub, nil
}

// X25519 computes the Diffie–Hellman shared secret. Peer keys of small
// order, which force an all-zero output, are rejected.
func (d *Default) X25519(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, types.NewError(types.KindMalformedKeyMaterial, "x25519_agree", err)
	}
	copy(out[:], secret)
	Wipe(secret)
	return out, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
