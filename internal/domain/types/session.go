package types

// SessionState is the full serialisable state of a pairwise session.
//
// BaseKey is the initiator's ephemeral public key and OneTimeKey the
// responder's consumed one-time key; together with both identity keys they
// name the session.
type SessionState struct {
	Role            Role
	LocalIdentity   X25519Public
	PeerIdentity    X25519Public
	BaseKey         X25519Public
	OneTimeKeyID    KeyID
	OneTimeKey      X25519Public
	ReceivedMessage bool
	Ratchet         RatchetState
}

// Handshake is the key-agreement material carried by a handshake message.
type Handshake struct {
	IdentityKey  X25519Public
	BaseKey      X25519Public
	OneTimeKeyID KeyID
	OneTimeKey   X25519Public
}

// Envelope is the relay wire format for one message.
type Envelope struct {
	ID        string      `json:"id,omitempty"`
	From      Username    `json:"from"`
	To        Username    `json:"to"`
	Type      MessageType `json:"type"`
	Body      []byte      `json:"body"`
	Timestamp int64       `json:"timestamp"`
}

// DecryptedMessage is what the message service hands back to callers.
type DecryptedMessage struct {
	From      Username `json:"from"`
	To        Username `json:"to"`
	Plaintext []byte   `json:"plaintext"`
	Timestamp int64    `json:"timestamp"`
}

// PublishedKeys is the key directory entry a relay serves for one user.
type PublishedKeys struct {
	IdentityKeys IdentityKeys      `json:"identity_keys"`
	OneTimeKeys  map[string]string `json:"one_time_keys,omitempty"`
}

// ClaimedKey is a single one-time key handed out by the relay.
type ClaimedKey struct {
	KeyID string `json:"key_id"`
	Key   string `json:"key"`
}
