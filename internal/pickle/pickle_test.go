package pickle_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"olmkit/internal/account"
	"olmkit/internal/crypto"
	"olmkit/internal/domain"
	"olmkit/internal/logging"
	"olmkit/internal/pickle"
	"olmkit/internal/session"
)

func newCodec(t *testing.T) *pickle.Codec {
	t.Helper()
	c, err := pickle.New(crypto.New(), nil)
	require.NoError(t, err)
	return c
}

func newAccount(t *testing.T, keys int) *account.Account {
	t.Helper()
	acct, err := account.New(crypto.New())
	require.NoError(t, err)
	require.NoError(t, acct.GenerateOneTimeKeys(keys))
	return acct
}

// establish returns an initiator and responder that have exchanged one
// message each way plus an extra out-of-order message held by the responder.
func establish(t *testing.T) (bob, alice *session.Session, pending []byte) {
	t.Helper()
	aliceAcct := newAccount(t, 2)
	keys := aliceAcct.UnpublishedKeys()
	aliceAcct.MarkKeysAsPublished()
	bobAcct := newAccount(t, 0)

	bob, err := session.CreateOutbound(bobAcct, aliceAcct.IdentityKeys().Curve25519, keys[0])
	require.NoError(t, err)
	typ, ct, err := bob.Encrypt([]byte("hello"))
	require.NoError(t, err)
	_, pending, err = bob.Encrypt([]byte("later"))
	require.NoError(t, err)
	_, ct3, err := bob.Encrypt([]byte("third"))
	require.NoError(t, err)

	alice, err = session.CreateInbound(aliceAcct, ct)
	require.NoError(t, err)
	_, err = alice.Decrypt(typ, ct)
	require.NoError(t, err)
	_, err = alice.Decrypt(typ, ct3)
	require.NoError(t, err)
	return bob, alice, pending
}

func TestAccount_RoundTrip(t *testing.T) {
	c := newCodec(t)
	acct := newAccount(t, 5)
	acct.MarkKeysAsPublished()
	require.NoError(t, acct.GenerateOneTimeKeys(2))
	for id := range acct.OneTimeKeys() {
		require.NoError(t, acct.ConsumeOneTimeKey(id))
		break
	}

	blob, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, pickle.Version, blob[0])

	restored, err := c.UnpickleAccount(blob, []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, acct.State(), restored.State())
	require.Equal(t, acct.IdentityKeys(), restored.IdentityKeys())
}

func TestSession_RoundTrip(t *testing.T) {
	c := newCodec(t)
	bob, alice, pending := establish(t)

	for _, s := range []*session.Session{bob, alice} {
		blob, err := c.PickleSession(s, []byte("pw"))
		require.NoError(t, err)
		restored, err := c.UnpickleSession(blob, []byte("pw"))
		require.NoError(t, err)
		require.Equal(t, s.State(), restored.State())
	}

	// The skipped key survives the round trip.
	blob, err := c.PickleSession(alice, []byte("pw"))
	require.NoError(t, err)
	restored, err := c.UnpickleSession(blob, []byte("pw"))
	require.NoError(t, err)
	pt, err := restored.Decrypt(domain.MessageHandshake, pending)
	require.NoError(t, err)
	require.Equal(t, "later", string(pt))
}

func TestWrongPassphrase(t *testing.T) {
	c := newCodec(t)
	acct := newAccount(t, 1)
	blob, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)

	_, err = c.UnpickleAccount(blob, []byte("wrong"))
	require.ErrorIs(t, err, domain.ErrBadPassphrase)

	bob, _, _ := establish(t)
	blob, err = c.PickleSession(bob, []byte("pw"))
	require.NoError(t, err)
	_, err = c.UnpickleSession(blob, []byte("wrong"))
	require.ErrorIs(t, err, domain.ErrBadPassphrase)
}

func TestCorruptAndTruncated(t *testing.T) {
	c := newCodec(t)
	acct := newAccount(t, 1)
	blob, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)

	flipped := append([]byte(nil), blob...)
	flipped[len(flipped)/2] ^= 0x80
	_, err = c.UnpickleAccount(flipped, []byte("pw"))
	require.ErrorIs(t, err, domain.ErrBadPassphrase)

	_, err = c.UnpickleAccount(blob[:20], []byte("pw"))
	require.ErrorIs(t, err, domain.ErrBadPassphrase)

	_, err = c.UnpickleAccount(nil, []byte("pw"))
	require.ErrorIs(t, err, domain.ErrBadPassphrase)
}

func TestUnsupportedVersion(t *testing.T) {
	c := newCodec(t)
	acct := newAccount(t, 0)
	blob, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)

	for _, v := range []byte{0, pickle.Version + 1} {
		b := append([]byte(nil), blob...)
		b[0] = v
		_, err := c.UnpickleAccount(b, []byte("pw"))
		require.ErrorIs(t, err, domain.ErrUnsupportedVersion, "version %d", v)
	}
}

func TestKindBinding(t *testing.T) {
	c := newCodec(t)
	acct := newAccount(t, 0)
	blob, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)

	_, err = c.UnpickleSession(blob, []byte("pw"))
	require.ErrorIs(t, err, domain.ErrBadPassphrase)
}

func TestEmptyPassphraseWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c, err := pickle.New(crypto.New(), logging.FromZap(zap.New(core)))
	require.NoError(t, err)

	acct := newAccount(t, 1)
	blob, err := c.PickleAccount(acct, nil)
	require.NoError(t, err)
	restored, err := c.UnpickleAccount(blob, []byte{})
	require.NoError(t, err)
	require.Equal(t, acct.IdentityKeys(), restored.IdentityKeys())
	require.GreaterOrEqual(t, logs.Len(), 2)
}

func TestNonceIsFresh(t *testing.T) {
	c := newCodec(t)
	acct := newAccount(t, 0)
	a, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)
	b, err := c.PickleAccount(acct, []byte("pw"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
