package bridge

import (
	"encoding/base64"

	"olmkit/internal/account"
	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/session"
	"olmkit/internal/utility"
)

// Library version reported by Version.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Version returns the library version triple.
func Version() (major, minor, patch int) { return VersionMajor, VersionMinor, VersionPatch }

// CreateAccount creates a fresh account.
func (r *Registry) CreateAccount() (h Handle, err error) {
	defer r.observe("create_account", &err)
	acct, err := account.New(r.prim)
	if err != nil {
		return 0, err
	}
	return r.insert(&slot{kind: KindAccount, acct: acct})
}

// UnpickleAccount restores an account. No handle is created on failure.
func (r *Registry) UnpickleAccount(blob, passphrase []byte) (h Handle, err error) {
	defer r.observe("unpickle_account", &err)
	acct, err := r.codec.UnpickleAccount(blob, passphrase)
	if err != nil {
		return 0, err
	}
	return r.insert(&slot{kind: KindAccount, acct: acct})
}

// PickleAccount serialises the account behind h.
func (r *Registry) PickleAccount(h Handle, passphrase []byte) (blob []byte, err error) {
	defer r.observe("pickle_account", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.codec.PickleAccount(s.acct, passphrase)
}

// AccountIdentityKeys returns {"curve25519": ..., "ed25519": ...}.
func (r *Registry) AccountIdentityKeys(h Handle) (out []byte, err error) {
	defer r.observe("account_identity_keys", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.acct.IdentityKeysJSON()
}

// AccountSign returns the unpadded base64 Ed25519 signature over msg.
func (r *Registry) AccountSign(h Handle, msg []byte) (sig string, err error) {
	defer r.observe("account_sign", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return "", err
	}
	defer unlock()
	return types.EncodeKey(s.acct.Sign(msg)), nil
}

// AccountOneTimeKeys returns {"curve25519": {"<id>": "<key>", ...}}.
func (r *Registry) AccountOneTimeKeys(h Handle) (out []byte, err error) {
	defer r.observe("account_one_time_keys", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.acct.OneTimeKeysJSON()
}

// AccountMarkKeysAsPublished marks every unpublished key published.
func (r *Registry) AccountMarkKeysAsPublished(h Handle) (err error) {
	defer r.observe("account_mark_keys_as_published", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return err
	}
	defer unlock()
	s.acct.MarkKeysAsPublished()
	return nil
}

// AccountMaxOneTimeKeys returns the pool capacity.
func (r *Registry) AccountMaxOneTimeKeys(h Handle) (n int, err error) {
	defer r.observe("account_max_one_time_keys", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.acct.MaxOneTimeKeys(), nil
}

// AccountGenerateOneTimeKeys adds count unpublished keys.
func (r *Registry) AccountGenerateOneTimeKeys(h Handle, count int) (err error) {
	defer r.observe("account_generate_one_time_keys", &err)
	s, unlock, err := r.acquire(h, KindAccount)
	if err != nil {
		return err
	}
	defer unlock()
	return s.acct.GenerateOneTimeKeys(count)
}

// CreateOutboundSession starts a session from the account behind acct to
// the peer with the given identity key and published one-time key.
func (r *Registry) CreateOutboundSession(acct Handle, identityKey, oneTimeKeyID, oneTimeKey string) (h Handle, err error) {
	defer r.observe("create_outbound_session", &err)
	peer, err := parseCurveKey(identityKey)
	if err != nil {
		return 0, err
	}
	id, err := types.ParseKeyID(oneTimeKeyID)
	if err != nil {
		return 0, err
	}
	otk, err := parseCurveKey(oneTimeKey)
	if err != nil {
		return 0, err
	}

	s, unlock, err := r.acquire(acct, KindAccount)
	if err != nil {
		return 0, err
	}
	sess, err := session.CreateOutbound(s.acct, peer, domain.OneTimeKeyPublic{ID: id, Key: otk})
	unlock()
	if err != nil {
		return 0, err
	}
	return r.insert(&slot{kind: KindSession, sess: sess})
}

// CreateInboundSession establishes a responder session from a handshake
// message and consumes the referenced one-time key. An empty identityKey
// takes the sender from the message.
func (r *Registry) CreateInboundSession(acct Handle, handshake []byte, identityKey string) (h Handle, err error) {
	defer r.observe("create_inbound_session", &err)
	var peer *domain.X25519Public
	if identityKey != "" {
		k, err := parseCurveKey(identityKey)
		if err != nil {
			return 0, err
		}
		peer = &k
	}

	s, unlock, err := r.acquire(acct, KindAccount)
	if err != nil {
		return 0, err
	}
	var sess *session.Session
	if peer != nil {
		sess, err = session.CreateInboundFrom(s.acct, *peer, handshake)
	} else {
		sess, err = session.CreateInbound(s.acct, handshake)
	}
	unlock()
	if err != nil {
		return 0, err
	}
	return r.insert(&slot{kind: KindSession, sess: sess})
}

// PickleSession serialises the session behind h.
func (r *Registry) PickleSession(h Handle, passphrase []byte) (blob []byte, err error) {
	defer r.observe("pickle_session", &err)
	s, unlock, err := r.acquire(h, KindSession)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return r.codec.PickleSession(s.sess, passphrase)
}

// UnpickleSession restores a session. No handle is created on failure.
func (r *Registry) UnpickleSession(blob, passphrase []byte) (h Handle, err error) {
	defer r.observe("unpickle_session", &err)
	sess, err := r.codec.UnpickleSession(blob, passphrase)
	if err != nil {
		return 0, err
	}
	return r.insert(&slot{kind: KindSession, sess: sess})
}

// EncryptMessageType reports the framing of the next Encrypt on h.
func (r *Registry) EncryptMessageType(h Handle) (t domain.MessageType, err error) {
	defer r.observe("encrypt_message_type", &err)
	s, unlock, err := r.acquire(h, KindSession)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.sess.EncryptMessageType(), nil
}

// Encrypt encrypts plaintext on the session behind h.
func (r *Registry) Encrypt(h Handle, plaintext []byte) (t domain.MessageType, ct []byte, err error) {
	defer r.observe("encrypt", &err)
	s, unlock, err := r.acquire(h, KindSession)
	if err != nil {
		return 0, nil, err
	}
	defer unlock()
	return s.sess.Encrypt(plaintext)
}

// Decrypt decrypts a message of type t on the session behind h.
func (r *Registry) Decrypt(h Handle, t domain.MessageType, ciphertext []byte) (pt []byte, err error) {
	defer r.observe("decrypt", &err)
	s, unlock, err := r.acquire(h, KindSession)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.sess.Decrypt(t, ciphertext)
}

// SessionID returns the identifier both sides of the session share.
func (r *Registry) SessionID(h Handle) (id string, err error) {
	defer r.observe("session_id", &err)
	s, unlock, err := r.acquire(h, KindSession)
	if err != nil {
		return "", err
	}
	defer unlock()
	return s.sess.ID(), nil
}

// MatchesInboundSession reports whether a handshake message belongs to the
// session behind h.
func (r *Registry) MatchesInboundSession(h Handle, handshake []byte) (ok bool, err error) {
	defer r.observe("matches_inbound_session", &err)
	s, unlock, err := r.acquire(h, KindSession)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.sess.MatchesInbound(handshake), nil
}

// NewUtility creates a utility handle.
func (r *Registry) NewUtility() (h Handle, err error) {
	defer r.observe("new_utility", &err)
	return r.insert(&slot{kind: KindUtility, util: utility.New(r.prim)})
}

// UtilitySHA256 returns the unpadded base64 SHA-256 of input.
func (r *Registry) UtilitySHA256(h Handle, input []byte) (digest string, err error) {
	defer r.observe("utility_sha256", &err)
	s, unlock, err := r.acquire(h, KindUtility)
	if err != nil {
		return "", err
	}
	defer unlock()
	return s.util.SHA256Base64(input), nil
}

// UtilityEd25519Verify checks a base64 signature against a base64 key.
func (r *Registry) UtilityEd25519Verify(h Handle, key string, msg []byte, signature string) (err error) {
	defer r.observe("utility_ed25519_verify", &err)
	pub, err := types.DecodeKey(key)
	if err != nil {
		return err
	}
	sig, decErr := base64.RawStdEncoding.DecodeString(signature)
	if decErr != nil {
		sig, decErr = base64.StdEncoding.DecodeString(signature)
	}
	if decErr != nil {
		return types.NewError(types.KindAuthenticationFailed, "ed25519_verify", decErr)
	}

	s, unlock, err := r.acquire(h, KindUtility)
	if err != nil {
		return err
	}
	defer unlock()
	return s.util.Ed25519Verify(pub, msg, sig)
}

func parseCurveKey(s string) (domain.X25519Public, error) {
	b, err := types.DecodeKey(s)
	if err != nil {
		return domain.X25519Public{}, err
	}
	return types.ParseX25519Public(b)
}
