package ratchet

import (
	"fmt"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/util/memzero"
)

// Receive window limits.
const (
	MaxSkippedKeys    = 40
	MaxReceiverChains = 5
	MaxMessageGap     = 2000
)

const (
	aeadKeySize = 32
	nonceSize   = 12
)

var (
	ratchetInfo = []byte("OLM_RATCHET")
	keysInfo    = []byte("OLM_KEYS")
)

// AADFunc returns the additional data bound to a message with header h.
type AADFunc func(h domain.RatchetHeader) []byte

// InitAsInitiator seeds the sending chain from the agreed keys using a fresh
// ratchet key.
func InitAsInitiator(p domain.Primitives, root, chain [32]byte) (domain.RatchetState, error) {
	priv, pub, err := p.GenerateX25519()
	if err != nil {
		return domain.RatchetState{}, err
	}
	return domain.RatchetState{
		RootKey: root,
		SenderChain: &domain.SenderChain{
			RatchetPriv: priv,
			RatchetPub:  pub,
			ChainKey:    chain,
		},
	}, nil
}

// InitAsResponder seeds the receiving chain from the agreed keys and the
// sender's current ratchet key.
func InitAsResponder(root, chain [32]byte, senderRatchet domain.X25519Public) domain.RatchetState {
	return domain.RatchetState{
		RootKey: root,
		ReceiverChains: []domain.ReceiverChain{
			{RatchetKey: senderRatchet, ChainKey: chain},
		},
	}
}

// Encrypt produces a header and ciphertext, stepping the DH ratchet first
// when there is no sending chain.
func Encrypt(p domain.Primitives, st *domain.RatchetState, plaintext []byte, aad AADFunc) (domain.RatchetHeader, []byte, error) {
	next := st.Clone()

	if next.SenderChain == nil {
		if len(next.ReceiverChains) == 0 {
			return domain.RatchetHeader{}, nil, types.NewError(types.KindMalformedKeyMaterial, "encrypt", errNoChains)
		}
		priv, pub, err := p.GenerateX25519()
		if err != nil {
			return domain.RatchetHeader{}, nil, err
		}
		root, ck, err := advanceRoot(p, next.RootKey, priv, next.ReceiverChains[0].RatchetKey)
		if err != nil {
			return domain.RatchetHeader{}, nil, err
		}
		next.RootKey = root
		next.SenderChain = &domain.SenderChain{RatchetPriv: priv, RatchetPub: pub, ChainKey: ck}
	}

	sc := next.SenderChain
	h := domain.RatchetHeader{RatchetKey: sc.RatchetPub, MessageIndex: sc.Index}
	nextCK, mk := p.ChainStep(sc.ChainKey)
	sc.ChainKey = nextCK
	sc.Index++

	ct, err := seal(p, mk, aad(h), plaintext)
	memzero.Zero32(&mk)
	if err != nil {
		return domain.RatchetHeader{}, nil, err
	}
	commit(st, next)
	return h, ct, nil
}

// Decrypt finds or creates the receiving chain for header, derives the
// message key and opens the ciphertext.
func Decrypt(p domain.Primitives, st *domain.RatchetState, header domain.RatchetHeader, aad, ciphertext []byte) ([]byte, error) {
	next := st.Clone()

	chain := findChain(&next, header.RatchetKey)
	created := false
	if chain == nil {
		if next.SenderChain == nil {
			return nil, types.NewError(types.KindMalformedMessage, "decrypt", errUnknownRatchetKey)
		}
		root, ck, err := advanceRoot(p, next.RootKey, next.SenderChain.RatchetPriv, header.RatchetKey)
		if err != nil {
			return nil, err
		}
		next.RootKey = root
		chain = &domain.ReceiverChain{RatchetKey: header.RatchetKey, ChainKey: ck}
		created = true
	}

	var mk [32]byte
	switch {
	case header.MessageIndex < chain.Index:
		k, ok := takeSkipped(&next, header.RatchetKey, header.MessageIndex)
		if !ok {
			return nil, types.NewError(types.KindAlreadyDecrypted, "decrypt",
				fmt.Errorf("message index %d behind chain position %d", header.MessageIndex, chain.Index))
		}
		mk = k
	case header.MessageIndex-chain.Index > MaxMessageGap:
		return nil, types.NewError(types.KindMalformedMessage, "decrypt",
			fmt.Errorf("message gap %d exceeds %d", header.MessageIndex-chain.Index, MaxMessageGap))
	default:
		for chain.Index < header.MessageIndex {
			nextCK, skipped := p.ChainStep(chain.ChainKey)
			storeSkipped(&next, domain.SkippedKey{
				RatchetKey: chain.RatchetKey,
				Index:      chain.Index,
				MessageKey: skipped,
			})
			chain.ChainKey = nextCK
			chain.Index++
		}
		nextCK, k := p.ChainStep(chain.ChainKey)
		chain.ChainKey = nextCK
		chain.Index++
		mk = k
	}

	pt, err := open(p, mk, aad, ciphertext)
	memzero.Zero32(&mk)
	if err != nil {
		Wipe(&next)
		return nil, err
	}

	if created {
		next.ReceiverChains = append([]domain.ReceiverChain{*chain}, next.ReceiverChains...)
		for len(next.ReceiverChains) > MaxReceiverChains {
			last := len(next.ReceiverChains) - 1
			memzero.Zero32(&next.ReceiverChains[last].ChainKey)
			next.ReceiverChains = next.ReceiverChains[:last]
		}
		// The peer has ratcheted; our next send must ratchet too.
		wipeSender(next.SenderChain)
		next.SenderChain = nil
	}
	commit(st, next)
	return pt, nil
}

// Wipe zeroes every secret in st.
func Wipe(st *domain.RatchetState) {
	memzero.Zero32(&st.RootKey)
	wipeSender(st.SenderChain)
	st.SenderChain = nil
	for i := range st.ReceiverChains {
		memzero.Zero32(&st.ReceiverChains[i].ChainKey)
	}
	for i := range st.SkippedKeys {
		memzero.Zero32(&st.SkippedKeys[i].MessageKey)
	}
	st.ReceiverChains = nil
	st.SkippedKeys = nil
}

// --- helpers ---

// commit replaces st with next and clears secrets only st still references.
// next must be a Clone of st so no backing array is shared.
func commit(st *domain.RatchetState, next domain.RatchetState) {
	if st.SenderChain != nil && st.SenderChain != next.SenderChain {
		wipeSender(st.SenderChain)
	}
	for i := range st.ReceiverChains {
		memzero.Zero32(&st.ReceiverChains[i].ChainKey)
	}
	for i := range st.SkippedKeys {
		memzero.Zero32(&st.SkippedKeys[i].MessageKey)
	}
	memzero.Zero32(&st.RootKey)
	*st = next
}

func wipeSender(sc *domain.SenderChain) {
	if sc == nil {
		return
	}
	memzero.Zero32((*[32]byte)(&sc.RatchetPriv))
	memzero.Zero32(&sc.ChainKey)
}

func findChain(st *domain.RatchetState, key domain.X25519Public) *domain.ReceiverChain {
	for i := range st.ReceiverChains {
		if st.ReceiverChains[i].RatchetKey == key {
			return &st.ReceiverChains[i]
		}
	}
	return nil
}

func takeSkipped(st *domain.RatchetState, key domain.X25519Public, index uint32) ([32]byte, bool) {
	for i, sk := range st.SkippedKeys {
		if sk.RatchetKey == key && sk.Index == index {
			mk := sk.MessageKey
			memzero.Zero32(&st.SkippedKeys[i].MessageKey)
			st.SkippedKeys = append(st.SkippedKeys[:i], st.SkippedKeys[i+1:]...)
			return mk, true
		}
	}
	return [32]byte{}, false
}

// storeSkipped appends k, dropping the oldest stored key when full.
func storeSkipped(st *domain.RatchetState, k domain.SkippedKey) {
	if len(st.SkippedKeys) >= MaxSkippedKeys {
		memzero.Zero32(&st.SkippedKeys[0].MessageKey)
		st.SkippedKeys = st.SkippedKeys[1:]
	}
	st.SkippedKeys = append(st.SkippedKeys, k)
}

func advanceRoot(p domain.Primitives, root [32]byte, ours domain.X25519Private, theirs domain.X25519Public) (newRoot, chain [32]byte, err error) {
	dh, err := p.X25519(ours, theirs)
	if err != nil {
		return newRoot, chain, err
	}
	okm, err := p.HKDF(dh[:], root[:], ratchetInfo, 64)
	memzero.Zero32(&dh)
	if err != nil {
		return newRoot, chain, err
	}
	copy(newRoot[:], okm[:32])
	copy(chain[:], okm[32:])
	memzero.Zero(okm)
	return newRoot, chain, nil
}

func messageKeys(p domain.Primitives, mk [32]byte) (key, nonce []byte, err error) {
	okm, err := p.HKDF(mk[:], nil, keysInfo, aeadKeySize+nonceSize)
	if err != nil {
		return nil, nil, err
	}
	return okm[:aeadKeySize], okm[aeadKeySize:], nil
}

func seal(p domain.Primitives, mk [32]byte, aad, plaintext []byte) ([]byte, error) {
	key, nonce, err := messageKeys(p, mk)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	return p.Seal(key, nonce, aad, plaintext)
}

func open(p domain.Primitives, mk [32]byte, aad, ciphertext []byte) ([]byte, error) {
	key, nonce, err := messageKeys(p, mk)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	return p.Open(key, nonce, aad, ciphertext)
}
