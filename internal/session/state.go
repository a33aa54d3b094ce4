package session

import (
	"errors"
	"fmt"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/protocol/ratchet"
)

var (
	errPeerMismatch     = errors.New("handshake identity key does not match peer")
	errForeignHandshake = errors.New("handshake belongs to a different session")
	errNoChain          = errors.New("ratchet has no chain")
	errSenderKeyPair    = errors.New("sender ratchet key pair mismatch")
)

var basepoint = domain.X25519Public{9}

// State returns a deep copy of the session for pickling.
func (s *Session) State() domain.SessionState {
	st := s.state
	st.Ratchet = s.state.Ratchet.Clone()
	return st
}

// FromState rebuilds a session. A state that fails validation yields
// ErrMalformedKeyMaterial.
func FromState(p domain.Primitives, st domain.SessionState) (*Session, error) {
	if err := validate(p, st); err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "restore_session", err)
	}
	return &Session{prim: p, state: domain.SessionState{
		Role:            st.Role,
		LocalIdentity:   st.LocalIdentity,
		PeerIdentity:    st.PeerIdentity,
		BaseKey:         st.BaseKey,
		OneTimeKeyID:    st.OneTimeKeyID,
		OneTimeKey:      st.OneTimeKey,
		ReceivedMessage: st.ReceivedMessage,
		Ratchet:         st.Ratchet.Clone(),
	}}, nil
}

func validate(p domain.Primitives, st domain.SessionState) error {
	if st.Role != domain.RoleInitiator && st.Role != domain.RoleResponder {
		return fmt.Errorf("invalid role %d", st.Role)
	}
	r := st.Ratchet
	if r.SenderChain == nil && len(r.ReceiverChains) == 0 {
		return errNoChain
	}
	if len(r.ReceiverChains) > ratchet.MaxReceiverChains || len(r.SkippedKeys) > ratchet.MaxSkippedKeys {
		return fmt.Errorf("receive window of %d chains and %d keys exceeds limits",
			len(r.ReceiverChains), len(r.SkippedKeys))
	}
	if sc := r.SenderChain; sc != nil {
		pub, err := p.X25519(sc.RatchetPriv, basepoint)
		if err != nil {
			return err
		}
		if domain.X25519Public(pub) != sc.RatchetPub {
			return errSenderKeyPair
		}
	}
	return nil
}
