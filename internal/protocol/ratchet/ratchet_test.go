package ratchet_test

import (
	"bytes"
	"errors"
	"testing"

	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/protocol/ratchet"
)

func noAAD(domain.RatchetHeader) []byte { return nil }

type message struct {
	header domain.RatchetHeader
	ct     []byte
}

// newPair returns an initiator and responder state seeded from the same keys.
func newPair(t *testing.T, p domain.Primitives) (a, b domain.RatchetState) {
	t.Helper()
	root := [32]byte{0x42}
	chain := [32]byte{0x24}
	a, err := ratchet.InitAsInitiator(p, root, chain)
	if err != nil {
		t.Fatalf("InitAsInitiator: %v", err)
	}
	b = ratchet.InitAsResponder(root, chain, a.SenderChain.RatchetPub)
	return a, b
}

func encrypt(t *testing.T, p domain.Primitives, st *domain.RatchetState, pt string) message {
	t.Helper()
	h, ct, err := ratchet.Encrypt(p, st, []byte(pt), noAAD)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return message{h, ct}
}

func decrypt(t *testing.T, p domain.Primitives, st *domain.RatchetState, m message, want string) {
	t.Helper()
	pt, err := ratchet.Decrypt(p, st, m.header, nil, m.ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != want {
		t.Fatalf("got %q, want %q", pt, want)
	}
}

func TestRatchet_RoundTripBothDirections(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)

	decrypt(t, p, &b, encrypt(t, p, &a, "hello"), "hello")
	if b.SenderChain != nil {
		t.Fatal("responder must not have a sending chain before its first send")
	}
	reply := encrypt(t, p, &b, "hi")
	if reply.header.RatchetKey == a.SenderChain.RatchetPub {
		t.Fatal("responder reused the initiator ratchet key")
	}
	decrypt(t, p, &a, reply, "hi")

	// A sees a new ratchet key, so its next send ratchets as well.
	if a.SenderChain != nil {
		t.Fatal("initiator sending chain should reset after a new remote key")
	}
	decrypt(t, p, &b, encrypt(t, p, &a, "again"), "again")
	if len(b.ReceiverChains) != 2 {
		t.Fatalf("want 2 receiver chains, got %d", len(b.ReceiverChains))
	}
}

func TestRatchet_SendCounterIncreases(t *testing.T) {
	p := crypto.New()
	a, _ := newPair(t, p)
	for i := uint32(0); i < 3; i++ {
		m := encrypt(t, p, &a, "x")
		if m.header.MessageIndex != i {
			t.Fatalf("message %d carried index %d", i, m.header.MessageIndex)
		}
	}
}

func TestRatchet_OutOfOrder(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	m0 := encrypt(t, p, &a, "zero")
	m1 := encrypt(t, p, &a, "one")
	m2 := encrypt(t, p, &a, "two")

	decrypt(t, p, &b, m2, "two")
	if len(b.SkippedKeys) != 2 {
		t.Fatalf("want 2 skipped keys, got %d", len(b.SkippedKeys))
	}
	decrypt(t, p, &b, m0, "zero")
	decrypt(t, p, &b, m1, "one")
	if len(b.SkippedKeys) != 0 {
		t.Fatalf("want skipped keys drained, got %d", len(b.SkippedKeys))
	}
}

func TestRatchet_CommitWipesReplacedState(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	m0 := encrypt(t, p, &a, "zero")
	m1 := encrypt(t, p, &a, "one")
	m2 := encrypt(t, p, &a, "two")
	decrypt(t, p, &b, m2, "two")

	oldSkipped := b.SkippedKeys
	oldChains := b.ReceiverChains
	decrypt(t, p, &b, m0, "zero")

	for i, sk := range oldSkipped {
		if sk.MessageKey != ([32]byte{}) {
			t.Fatalf("replaced skipped key %d not zeroed", i)
		}
	}
	for i, c := range oldChains {
		if c.ChainKey != ([32]byte{}) {
			t.Fatalf("replaced receiver chain %d not zeroed", i)
		}
	}
	// the live state keeps its own copy
	decrypt(t, p, &b, m1, "one")
}

func TestRatchet_ReplayRejected(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	m := encrypt(t, p, &a, "once")
	decrypt(t, p, &b, m, "once")

	_, err := ratchet.Decrypt(p, &b, m.header, nil, m.ct)
	if !errors.Is(err, domain.ErrAlreadyDecrypted) {
		t.Fatalf("want already decrypted, got %v", err)
	}
}

func TestRatchet_TamperedLeavesStateUnchanged(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	encrypt(t, p, &a, "skipped")
	m := encrypt(t, p, &a, "real")

	before := b.Clone()
	bad := append([]byte(nil), m.ct...)
	bad[0] ^= 0xff
	_, err := ratchet.Decrypt(p, &b, m.header, nil, bad)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("want authentication failure, got %v", err)
	}
	if b.ReceiverChains[0].Index != before.ReceiverChains[0].Index ||
		b.ReceiverChains[0].ChainKey != before.ReceiverChains[0].ChainKey ||
		len(b.SkippedKeys) != len(before.SkippedKeys) {
		t.Fatal("failed decrypt mutated state")
	}
	decrypt(t, p, &b, m, "real")
}

func TestRatchet_WrongAAD(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	h, ct, err := ratchet.Encrypt(p, &a, []byte("bound"), func(domain.RatchetHeader) []byte { return []byte("ad") })
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := ratchet.Decrypt(p, &b, h, []byte("other"), ct); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("want authentication failure, got %v", err)
	}
	pt, err := ratchet.Decrypt(p, &b, h, []byte("ad"), ct)
	if err != nil || !bytes.Equal(pt, []byte("bound")) {
		t.Fatalf("Decrypt: %q, %v", pt, err)
	}
}

func TestRatchet_GapTooLarge(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	m := encrypt(t, p, &a, "x")
	m.header.MessageIndex = ratchet.MaxMessageGap + 1
	if _, err := ratchet.Decrypt(p, &b, m.header, nil, m.ct); !errors.Is(err, domain.ErrMalformedMessage) {
		t.Fatalf("want malformed message, got %v", err)
	}
}

func TestRatchet_SkippedKeysBounded(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	var first message
	for i := 0; i < ratchet.MaxSkippedKeys+5; i++ {
		m := encrypt(t, p, &a, "x")
		if i == 0 {
			first = m
		}
	}
	last := encrypt(t, p, &a, "last")
	decrypt(t, p, &b, last, "last")
	if len(b.SkippedKeys) != ratchet.MaxSkippedKeys {
		t.Fatalf("want %d skipped keys, got %d", ratchet.MaxSkippedKeys, len(b.SkippedKeys))
	}
	// The oldest key was evicted, so the first message now reads as a replay.
	if _, err := ratchet.Decrypt(p, &b, first.header, nil, first.ct); !errors.Is(err, domain.ErrAlreadyDecrypted) {
		t.Fatalf("want already decrypted, got %v", err)
	}
}

func TestRatchet_ReceiverChainsBounded(t *testing.T) {
	p := crypto.New()
	a, b := newPair(t, p)
	for i := 0; i < ratchet.MaxReceiverChains+3; i++ {
		decrypt(t, p, &b, encrypt(t, p, &a, "ping"), "ping")
		decrypt(t, p, &a, encrypt(t, p, &b, "pong"), "pong")
	}
	if len(a.ReceiverChains) > ratchet.MaxReceiverChains || len(b.ReceiverChains) > ratchet.MaxReceiverChains {
		t.Fatalf("receiver chains exceed %d: a=%d b=%d",
			ratchet.MaxReceiverChains, len(a.ReceiverChains), len(b.ReceiverChains))
	}
}

func TestRatchet_Wipe(t *testing.T) {
	p := crypto.New()
	a, _ := newPair(t, p)
	ratchet.Wipe(&a)
	if a.RootKey != ([32]byte{}) || a.SenderChain != nil {
		t.Fatal("state not wiped")
	}
}
