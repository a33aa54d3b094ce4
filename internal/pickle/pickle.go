package pickle

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"olmkit/internal/account"
	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/logging"
	"olmkit/internal/protocol/ratchet"
	"olmkit/internal/session"
	"olmkit/internal/util/memzero"
)

// Version is the blob format this package writes.
const Version byte = 1

const (
	nonceSize = chacha20poly1305.NonceSizeX
	tagSize   = chacha20poly1305.Overhead
	headerLen = 1 + nonceSize
)

// Argon2id parameters. The salt is fixed because the blob layout has no
// room for one.
const (
	kdfTime    = 1
	kdfMemory  = 16 * 1024
	kdfThreads = 1
)

var kdfSalt = []byte("olmkit.pickle.v1")

type kind byte

const (
	kindAccount kind = 'A'
	kindSession kind = 'S'
)

func (k kind) String() string {
	if k == kindAccount {
		return "account"
	}
	return "session"
}

var (
	errShort   = errors.New("blob shorter than header and tag")
	errVersion = errors.New("unsupported pickle version")
)

// Codec pickles and unpickles entities.
type Codec struct {
	prim domain.Primitives
	log  *logging.Logger
	enc  cbor.EncMode
	dec  cbor.DecMode
}

// New returns a Codec. Restored entities use p; a nil log discards warnings.
func New(p domain.Primitives, log *logging.Logger) (*Codec, error) {
	if log == nil {
		log = logging.Nop()
	}
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("pickle: cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 4096,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("pickle: cbor decoder: %w", err)
	}
	return &Codec{prim: p, log: log.Named("pickle"), enc: enc, dec: dec}, nil
}

// PickleAccount encrypts the full state of a.
func (c *Codec) PickleAccount(a *account.Account, passphrase []byte) ([]byte, error) {
	st := a.State()
	defer wipeAccountState(&st)
	rec := accountToRecord(st)
	defer rec.wipe()
	return c.seal(kindAccount, &rec, passphrase)
}

// UnpickleAccount restores an account pickled with PickleAccount.
func (c *Codec) UnpickleAccount(blob, passphrase []byte) (*account.Account, error) {
	var rec accountRecord
	if err := c.open(kindAccount, blob, passphrase, &rec); err != nil {
		return nil, err
	}
	defer rec.wipe()
	st, err := rec.state()
	defer wipeAccountState(&st)
	if err != nil {
		return nil, err
	}
	return account.FromState(c.prim, st)
}

// PickleSession encrypts the full state of s.
func (c *Codec) PickleSession(s *session.Session, passphrase []byte) ([]byte, error) {
	st := s.State()
	defer ratchet.Wipe(&st.Ratchet)
	rec := sessionToRecord(st)
	defer rec.wipe()
	return c.seal(kindSession, &rec, passphrase)
}

// UnpickleSession restores a session pickled with PickleSession.
func (c *Codec) UnpickleSession(blob, passphrase []byte) (*session.Session, error) {
	var rec sessionRecord
	if err := c.open(kindSession, blob, passphrase, &rec); err != nil {
		return nil, err
	}
	defer rec.wipe()
	st, err := rec.state()
	defer ratchet.Wipe(&st.Ratchet)
	if err != nil {
		return nil, err
	}
	return session.FromState(c.prim, st)
}

func (c *Codec) seal(k kind, rec interface{}, passphrase []byte) ([]byte, error) {
	const op = "pickle"
	plain, err := c.enc.Marshal(rec)
	if err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, op, err)
	}
	defer memzero.Zero(plain)

	nonce, err := c.prim.Random(nonceSize)
	if err != nil {
		return nil, err
	}
	key := c.deriveKey(k, passphrase)
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, op, err)
	}
	out := make([]byte, 0, headerLen+len(plain)+tagSize)
	out = append(out, Version)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, additionalData(k)), nil
}

// open authenticates and decodes blob into rec. Any leading byte other than
// Version, including the never-written 0, is reported as ErrUnsupportedVersion
// before the passphrase is tried.
func (c *Codec) open(k kind, blob, passphrase []byte, rec interface{}) error {
	const op = "unpickle"
	if len(blob) == 0 {
		return types.NewError(types.KindBadPassphrase, op, errShort)
	}
	if blob[0] != Version {
		return types.NewError(types.KindUnsupportedVersion, op, fmt.Errorf("%w %d", errVersion, blob[0]))
	}
	if len(blob) < headerLen+tagSize {
		return types.NewError(types.KindBadPassphrase, op, errShort)
	}

	key := c.deriveKey(k, passphrase)
	defer memzero.Zero(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return types.NewError(types.KindMalformedKeyMaterial, op, err)
	}
	plain, err := aead.Open(nil, blob[1:headerLen], blob[headerLen:], additionalData(k))
	if err != nil {
		return types.NewError(types.KindBadPassphrase, op, err)
	}
	defer memzero.Zero(plain)

	if err := c.dec.Unmarshal(plain, rec); err != nil {
		return types.NewError(types.KindMalformedKeyMaterial, op, err)
	}
	return nil
}

func (c *Codec) deriveKey(k kind, passphrase []byte) []byte {
	if len(passphrase) == 0 {
		c.log.Warn("empty pickle passphrase gives no confidentiality", "kind", k.String())
	}
	return argon2.IDKey(passphrase, kdfSalt, kdfTime, kdfMemory, kdfThreads, chacha20poly1305.KeySize)
}

func additionalData(k kind) []byte { return []byte{Version, byte(k)} }
