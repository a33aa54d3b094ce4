package types

import (
	"encoding/base64"
	"encoding/binary"
)

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Username identifies a peer on the relay.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// KeyID identifies a one-time key inside one account. Ids are assigned in
// increasing order and never reused.
type KeyID uint32

// String renders the id the way it appears in published key JSON: the
// big-endian bytes in unpadded base64.
func (id KeyID) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(id))
	return base64.RawStdEncoding.EncodeToString(b[:])
}

// ParseKeyID reverses KeyID.String.
func ParseKeyID(s string) (KeyID, error) {
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil || len(b) != 4 {
		return 0, NewError(KindUnknownOneTimeKey, "parse_key_id", err)
	}
	return KeyID(binary.BigEndian.Uint32(b)), nil
}

// MessageType tells a receiver how to frame-decode a ciphertext.
type MessageType uint8

const (
	// MessageHandshake carries key-agreement material for the responder.
	MessageHandshake MessageType = 0
	// MessageOrdinary is any message on an established ratchet.
	MessageOrdinary MessageType = 1
)

// String returns the type name.
func (t MessageType) String() string {
	switch t {
	case MessageHandshake:
		return "handshake"
	case MessageOrdinary:
		return "ordinary"
	default:
		return "invalid"
	}
}

// Role records which side of the handshake a session was created on.
type Role uint8

const (
	RoleInitiator Role = iota + 1
	RoleResponder
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "unknown"
	}
}
