package types

// RatchetHeader is sent alongside every ordinary ciphertext.
type RatchetHeader struct {
	RatchetKey   X25519Public
	MessageIndex uint32
}

// SenderChain is the local sending half of the ratchet.
type SenderChain struct {
	RatchetPriv X25519Private
	RatchetPub  X25519Public
	ChainKey    [32]byte
	Index       uint32
}

// ReceiverChain tracks one of the peer's ratchet keys.
type ReceiverChain struct {
	RatchetKey X25519Public
	ChainKey   [32]byte
	Index      uint32
}

// SkippedKey is a message key derived ahead of an out-of-order message.
type SkippedKey struct {
	RatchetKey X25519Public
	Index      uint32
	MessageKey [32]byte
}

// RatchetState contains everything the ratchet needs between messages.
//
// ReceiverChains is ordered newest first. SenderChain is nil on a responder
// until its first send, and again after every inbound ratchet step.
type RatchetState struct {
	RootKey        [32]byte
	SenderChain    *SenderChain
	ReceiverChains []ReceiverChain
	SkippedKeys    []SkippedKey
}

// Clone returns a deep copy of st.
func (st RatchetState) Clone() RatchetState {
	out := RatchetState{RootKey: st.RootKey}
	if st.SenderChain != nil {
		sc := *st.SenderChain
		out.SenderChain = &sc
	}
	if st.ReceiverChains != nil {
		out.ReceiverChains = append([]ReceiverChain(nil), st.ReceiverChains...)
	}
	if st.SkippedKeys != nil {
		out.SkippedKeys = append([]SkippedKey(nil), st.SkippedKeys...)
	}
	return out
}
