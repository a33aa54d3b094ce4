package x3dh

import (
	"olmkit/internal/domain"
	"olmkit/internal/util/memzero"
)

var rootInfo = []byte("OLM_ROOT")

// Keys is the output of a completed agreement.
type Keys struct {
	Root  [32]byte
	Chain [32]byte
}

// Wipe clears both keys.
func (k *Keys) Wipe() {
	memzero.Zero32(&k.Root)
	memzero.Zero32(&k.Chain)
}

// InitiatorKeys derives the initial keys for the side that sends first.
func InitiatorKeys(
	p domain.Primitives,
	ourIdentity domain.X25519Private,
	ourBase domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerOneTimeKey domain.X25519Public,
) (Keys, error) {
	return derive(p,
		dhPair{ourIdentity, peerOneTimeKey}, // DH(IKa, OTKb)
		dhPair{ourBase, peerIdentity},       // DH(EKa, IKb)
		dhPair{ourBase, peerOneTimeKey},     // DH(EKa, OTKb)
	)
}

// ResponderKeys mirrors InitiatorKeys on the receiving side.
func ResponderKeys(
	p domain.Primitives,
	ourIdentity domain.X25519Private,
	ourOneTimeKey domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerBase domain.X25519Public,
) (Keys, error) {
	return derive(p,
		dhPair{ourOneTimeKey, peerIdentity}, // DH(OTKb, IKa)
		dhPair{ourIdentity, peerBase},       // DH(IKb, EKa)
		dhPair{ourOneTimeKey, peerBase},     // DH(OTKb, EKa)
	)
}

type dhPair struct {
	priv domain.X25519Private
	pub  domain.X25519Public
}

func derive(p domain.Primitives, pairs ...dhPair) (Keys, error) {
	transcript := make([]byte, 0, 32*len(pairs))
	defer func() { memzero.Zero(transcript) }()
	for _, pr := range pairs {
		s, err := p.X25519(pr.priv, pr.pub)
		if err != nil {
			return Keys{}, err
		}
		transcript = append(transcript, s[:]...)
		memzero.Zero32(&s)
	}

	okm, err := p.HKDF(transcript, nil, rootInfo, 64)
	if err != nil {
		return Keys{}, err
	}
	var k Keys
	copy(k.Root[:], okm[:32])
	copy(k.Chain[:], okm[32:])
	memzero.Zero(okm)
	return k, nil
}
