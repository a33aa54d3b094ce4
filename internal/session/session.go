package session

import (
	"encoding/base64"
	"fmt"

	"olmkit/internal/account"
	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/protocol/message"
	"olmkit/internal/protocol/ratchet"
	"olmkit/internal/protocol/x3dh"
	"olmkit/internal/util/memzero"
)

// Session is one side of a pairwise ratchet.
type Session struct {
	prim  domain.Primitives
	state domain.SessionState
}

// CreateOutbound starts a session towards the owner of peerIdentity using
// one of their published one-time keys.
func CreateOutbound(
	acct *account.Account,
	peerIdentity domain.X25519Public,
	peerOneTimeKey domain.OneTimeKeyPublic,
) (*Session, error) {
	p := acct.Primitives()
	id := acct.Identity()

	basePriv, basePub, err := p.GenerateX25519()
	if err != nil {
		return nil, err
	}
	keys, err := x3dh.InitiatorKeys(p, id.XPriv, basePriv, peerIdentity, peerOneTimeKey.Key)
	memzero.Zero32((*[32]byte)(&basePriv))
	if err != nil {
		return nil, err
	}
	defer keys.Wipe()

	rs, err := ratchet.InitAsInitiator(p, keys.Root, keys.Chain)
	if err != nil {
		return nil, err
	}
	return &Session{
		prim: p,
		state: domain.SessionState{
			Role:          domain.RoleInitiator,
			LocalIdentity: id.XPub,
			PeerIdentity:  peerIdentity,
			BaseKey:       basePub,
			OneTimeKeyID:  peerOneTimeKey.ID,
			OneTimeKey:    peerOneTimeKey.Key,
			Ratchet:       rs,
		},
	}, nil
}

// CreateInbound establishes the responder side from a handshake message,
// taking the peer's identity key from the message itself. The referenced
// one-time key is consumed in acct.
func CreateInbound(acct *account.Account, handshake []byte) (*Session, error) {
	return createInbound(acct, handshake, nil)
}

// CreateInboundFrom is CreateInbound for a known peer. A handshake carrying a
// different identity key fails with ErrMalformedKeyMaterial.
func CreateInboundFrom(acct *account.Account, peerIdentity domain.X25519Public, handshake []byte) (*Session, error) {
	return createInbound(acct, handshake, &peerIdentity)
}

func createInbound(acct *account.Account, frame []byte, peerIdentity *domain.X25519Public) (*Session, error) {
	const op = "create_inbound_session"
	hs, err := message.DecodeHandshake(frame)
	if err != nil {
		return nil, err
	}
	if peerIdentity != nil && *peerIdentity != hs.IdentityKey {
		return nil, types.NewError(types.KindMalformedKeyMaterial, op, errPeerMismatch)
	}
	otk, ok := acct.FindOneTimeKey(hs.OneTimeKeyID)
	if !ok || otk.Pub != hs.OneTimeKey {
		return nil, types.NewError(types.KindUnknownOneTimeKey, op, fmt.Errorf("key id %s", hs.OneTimeKeyID))
	}

	p := acct.Primitives()
	id := acct.Identity()
	keys, err := x3dh.ResponderKeys(p, id.XPriv, otk.Priv, hs.IdentityKey, hs.BaseKey)
	memzero.Zero32((*[32]byte)(&otk.Priv))
	if err != nil {
		return nil, err
	}
	defer keys.Wipe()

	if err := acct.ConsumeOneTimeKey(hs.OneTimeKeyID); err != nil {
		return nil, err
	}
	return &Session{
		prim: p,
		state: domain.SessionState{
			Role:          domain.RoleResponder,
			LocalIdentity: id.XPub,
			PeerIdentity:  hs.IdentityKey,
			BaseKey:       hs.BaseKey,
			OneTimeKeyID:  hs.OneTimeKeyID,
			OneTimeKey:    hs.OneTimeKey,
			Ratchet:       ratchet.InitAsResponder(keys.Root, keys.Chain, hs.Inner.Header.RatchetKey),
		},
	}, nil
}

// Role reports which side of the handshake this session is.
func (s *Session) Role() domain.Role { return s.state.Role }

// PeerIdentity returns the peer's identity key.
func (s *Session) PeerIdentity() domain.X25519Public { return s.state.PeerIdentity }

// EncryptMessageType tells which framing the next Encrypt will produce.
func (s *Session) EncryptMessageType() domain.MessageType {
	if s.state.Role == domain.RoleInitiator && !s.state.ReceivedMessage {
		return domain.MessageHandshake
	}
	return domain.MessageOrdinary
}

// Encrypt advances the sending chain and returns the framed ciphertext.
func (s *Session) Encrypt(plaintext []byte) (domain.MessageType, []byte, error) {
	typ := s.EncryptMessageType()
	hs := s.handshake()
	aad := message.OrdinaryAAD
	if typ == domain.MessageHandshake {
		aad = func(h domain.RatchetHeader) []byte { return message.HandshakeAAD(hs, h) }
	}

	h, ct, err := ratchet.Encrypt(s.prim, &s.state.Ratchet, plaintext, aad)
	if err != nil {
		return 0, nil, err
	}
	frame := message.EncodeOrdinary(h, ct)
	if typ == domain.MessageHandshake {
		frame = message.EncodeHandshake(hs, frame)
	}
	return typ, frame, nil
}

// Decrypt opens a frame of the given type. Replays fail with
// ErrAlreadyDecrypted and forgeries with ErrAuthenticationFailed.
func (s *Session) Decrypt(typ domain.MessageType, frame []byte) ([]byte, error) {
	var inner message.Ordinary
	switch typ {
	case domain.MessageHandshake:
		hs, err := message.DecodeHandshake(frame)
		if err != nil {
			return nil, err
		}
		if hs.Handshake != s.handshake() {
			return nil, types.NewError(types.KindMalformedMessage, "decrypt", errForeignHandshake)
		}
		inner = hs.Inner
	case domain.MessageOrdinary:
		o, err := message.DecodeOrdinary(frame)
		if err != nil {
			return nil, err
		}
		inner = o
	default:
		return nil, types.NewError(types.KindMalformedMessage, "decrypt", fmt.Errorf("message type %d", typ))
	}

	pt, err := ratchet.Decrypt(s.prim, &s.state.Ratchet, inner.Header, inner.AAD, inner.Ciphertext)
	if err != nil {
		return nil, err
	}
	s.state.ReceivedMessage = true
	return pt, nil
}

// ID is a stable identifier shared by both sides of the session: the
// unpadded base64 SHA-256 of the initiator identity, base and one-time keys.
func (s *Session) ID() string {
	hs := s.handshake()
	buf := make([]byte, 0, 96)
	buf = append(buf, hs.IdentityKey[:]...)
	buf = append(buf, hs.BaseKey[:]...)
	buf = append(buf, hs.OneTimeKey[:]...)
	sum := s.prim.SHA256(buf)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

// MatchesInbound reports whether a handshake frame belongs to this session.
func (s *Session) MatchesInbound(frame []byte) bool {
	hs, err := message.DecodeHandshake(frame)
	return err == nil && hs.Handshake == s.handshake()
}

// MatchesInboundFrom is MatchesInbound that also checks the sender identity.
func (s *Session) MatchesInboundFrom(peerIdentity domain.X25519Public, frame []byte) bool {
	return peerIdentity == s.state.PeerIdentity && s.MatchesInbound(frame)
}

// Wipe zeroes the ratchet secrets. The session is unusable afterwards.
func (s *Session) Wipe() { ratchet.Wipe(&s.state.Ratchet) }

// handshake is the key-agreement material the initiator sends.
func (s *Session) handshake() domain.Handshake {
	initiator := s.state.LocalIdentity
	if s.state.Role == domain.RoleResponder {
		initiator = s.state.PeerIdentity
	}
	return domain.Handshake{
		IdentityKey:  initiator,
		BaseKey:      s.state.BaseKey,
		OneTimeKeyID: s.state.OneTimeKeyID,
		OneTimeKey:   s.state.OneTimeKey,
	}
}
