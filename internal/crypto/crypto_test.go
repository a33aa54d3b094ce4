package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"olmkit/internal/crypto"
	"olmkit/internal/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestX25519_Agreement(t *testing.T) {
	p := crypto.New()
	aPriv, aPub, err := p.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	bPriv, bPub, err := p.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	ab, err := p.X25519(aPriv, bPub)
	if err != nil {
		t.Fatalf("X25519: %v", err)
	}
	ba, err := p.X25519(bPriv, aPub)
	if err != nil {
		t.Fatalf("X25519: %v", err)
	}
	if ab != ba {
		t.Fatal("shared secrets differ")
	}
}

func TestX25519_RejectsLowOrderPoint(t *testing.T) {
	p := crypto.New()
	priv, _, err := p.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	_, err = p.X25519(priv, domain.X25519Public{})
	if !errors.Is(err, domain.ErrMalformedKeyMaterial) {
		t.Fatalf("want malformed key material, got %v", err)
	}
}

func TestEd25519_SignVerify(t *testing.T) {
	p := crypto.New()
	priv, pub, err := p.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	sig := p.SignEd25519(priv, []byte("msg"))
	if !p.VerifyEd25519(pub, []byte("msg"), sig) {
		t.Fatal("valid signature rejected")
	}
	if p.VerifyEd25519(pub, []byte("other"), sig) {
		t.Fatal("signature over different message accepted")
	}
	if p.VerifyEd25519(pub, []byte("msg"), sig[:10]) {
		t.Fatal("truncated signature accepted")
	}
}

func TestRandom_EntropyUnavailable(t *testing.T) {
	p := &crypto.Default{Rand: failingReader{}}
	if _, err := p.Random(32); !errors.Is(err, domain.ErrEntropyUnavailable) {
		t.Fatalf("Random: want entropy unavailable, got %v", err)
	}
	if _, _, err := p.GenerateX25519(); !errors.Is(err, domain.ErrEntropyUnavailable) {
		t.Fatalf("GenerateX25519: want entropy unavailable, got %v", err)
	}
	if _, _, err := p.GenerateEd25519(); !errors.Is(err, domain.ErrEntropyUnavailable) {
		t.Fatalf("GenerateEd25519: want entropy unavailable, got %v", err)
	}
}

func TestChainStep_DistinctOutputs(t *testing.T) {
	p := crypto.New()
	var ck [32]byte
	next, mk := p.ChainStep(ck)
	if next == mk {
		t.Fatal("chain key and message key must differ")
	}
	next2, _ := p.ChainStep(ck)
	if next != next2 {
		t.Fatal("ChainStep is not deterministic")
	}
}

func TestSealOpen(t *testing.T) {
	p := crypto.New()
	key := bytes.Repeat([]byte{7}, 32)
	nonce := make([]byte, 12)
	ct, err := p.Seal(key, nonce, []byte("ad"), []byte("hello"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	pt, err := p.Open(key, nonce, []byte("ad"), ct)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(pt) != "hello" {
		t.Fatalf("got %q, want %q", pt, "hello")
	}
	if _, err := p.Open(key, nonce, []byte("other"), ct); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("want authentication failure on wrong ad, got %v", err)
	}
}

func TestHKDF_Length(t *testing.T) {
	p := crypto.New()
	out, err := p.HKDF([]byte("secret"), nil, []byte("info"), 64)
	if err != nil {
		t.Fatalf("HKDF: %v", err)
	}
	if len(out) != 64 {
		t.Fatalf("want 64 bytes, got %d", len(out))
	}
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	crypto.Wipe(b)
	if !bytes.Equal(b, []byte{0, 0, 0}) {
		t.Fatalf("buffer not wiped: %v", b)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := crypto.Fingerprint([]byte("key"))
	if a == "" || a != crypto.Fingerprint([]byte("key")) {
		t.Fatalf("unstable fingerprint %q", a)
	}
	if a == crypto.Fingerprint([]byte("other")) {
		t.Fatal("distinct keys share a fingerprint")
	}
}
