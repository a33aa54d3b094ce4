package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

// Default is the production implementation of domain.Primitives.
type Default struct {
	// Rand overrides the entropy source. Nil means crypto/rand.
	Rand io.Reader
}

var _ domain.Primitives = (*Default)(nil)

// New returns primitives backed by crypto/rand.
func New() *Default { return &Default{} }

func (d *Default) reader() io.Reader {
	if d == nil || d.Rand == nil {
		return rand.Reader
	}
	return d.Rand
}

// Random returns n bytes from the entropy source. A short read or a failing
// source yields ErrEntropyUnavailable; partial output is wiped.
func (d *Default) Random(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(d.reader(), out); err != nil {
		Wipe(out)
		return nil, types.NewError(types.KindEntropyUnavailable, "random", err)
	}
	return out, nil
}

// SHA256 hashes b.
func (d *Default) SHA256(b []byte) [32]byte { return sha256.Sum256(b) }
