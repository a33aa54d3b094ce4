package types

import (
	"encoding/base64"
	"encoding/json"
)

// Identity holds an account's long-term X25519 and Ed25519 keys.
type Identity struct {
	XPub   X25519Public
	XPriv  X25519Private
	EdPub  Ed25519Public
	EdPriv Ed25519Private
}

// IdentityKeys is the public half of an Identity.
type IdentityKeys struct {
	Curve25519 X25519Public
	Ed25519    Ed25519Public
}

type identityKeysJSON struct {
	Curve25519 string `json:"curve25519"`
	Ed25519    string `json:"ed25519"`
}

// MarshalJSON encodes both keys as unpadded base64.
func (k IdentityKeys) MarshalJSON() ([]byte, error) {
	return json.Marshal(identityKeysJSON{
		Curve25519: base64.RawStdEncoding.EncodeToString(k.Curve25519[:]),
		Ed25519:    base64.RawStdEncoding.EncodeToString(k.Ed25519[:]),
	})
}

// UnmarshalJSON mirrors MarshalJSON.
func (k *IdentityKeys) UnmarshalJSON(data []byte) error {
	var aux identityKeysJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	curve, err := decodeKey(aux.Curve25519)
	if err != nil {
		return err
	}
	ed, err := decodeKey(aux.Ed25519)
	if err != nil {
		return err
	}
	if k.Curve25519, err = ParseX25519Public(curve); err != nil {
		return err
	}
	k.Ed25519, err = ParseEd25519Public(ed)
	return err
}

// KeyState tracks a one-time key through its lifetime.
type KeyState uint8

const (
	KeyUnpublished KeyState = iota
	KeyPublished
	KeyUsed
)

// String returns the state name.
func (s KeyState) String() string {
	switch s {
	case KeyUnpublished:
		return "unpublished"
	case KeyPublished:
		return "published"
	case KeyUsed:
		return "used"
	default:
		return "invalid"
	}
}

// OneTimeKey is a locally held one-time prekey. Priv is zeroed once the key
// is used.
type OneTimeKey struct {
	ID    KeyID
	Priv  X25519Private
	Pub   X25519Public
	State KeyState
}

// OneTimeKeyPublic is the published half of a one-time key, as a peer sees it.
type OneTimeKeyPublic struct {
	ID  KeyID
	Key X25519Public
}

// AccountState is the full serialisable state of an account.
type AccountState struct {
	Identity    Identity
	NextKeyID   KeyID
	OneTimeKeys []OneTimeKey
}

func decodeKey(s string) ([]byte, error) {
	b, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, NewError(KindMalformedKeyMaterial, "decode_key", err)
	}
	return b, nil
}

// DecodeKey decodes an unpadded base64 key as used in the key JSON shapes.
// Padded input is accepted too.
func DecodeKey(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return decodeKey(s)
}

// EncodeKey renders key bytes as unpadded base64.
func EncodeKey(b []byte) string { return base64.RawStdEncoding.EncodeToString(b) }
