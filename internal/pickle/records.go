package pickle

import (
	"fmt"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/util/memzero"
)

// Records use integer keys so the encoding stays compact and stable. Key
// material is carried as byte strings and checked for length on decode.

type oneTimeKeyRecord struct {
	ID    uint32 `cbor:"1,keyasint"`
	Priv  []byte `cbor:"2,keyasint"`
	Pub   []byte `cbor:"3,keyasint"`
	State uint8  `cbor:"4,keyasint"`
}

type accountRecord struct {
	XPub      []byte             `cbor:"1,keyasint"`
	XPriv     []byte             `cbor:"2,keyasint"`
	EdPub     []byte             `cbor:"3,keyasint"`
	EdPriv    []byte             `cbor:"4,keyasint"`
	NextKeyID uint32             `cbor:"5,keyasint"`
	Keys      []oneTimeKeyRecord `cbor:"6,keyasint"`
}

type senderChainRecord struct {
	RatchetPriv []byte `cbor:"1,keyasint"`
	RatchetPub  []byte `cbor:"2,keyasint"`
	ChainKey    []byte `cbor:"3,keyasint"`
	Index       uint32 `cbor:"4,keyasint"`
}

type receiverChainRecord struct {
	RatchetKey []byte `cbor:"1,keyasint"`
	ChainKey   []byte `cbor:"2,keyasint"`
	Index      uint32 `cbor:"3,keyasint"`
}

type skippedKeyRecord struct {
	RatchetKey []byte `cbor:"1,keyasint"`
	Index      uint32 `cbor:"2,keyasint"`
	MessageKey []byte `cbor:"3,keyasint"`
}

type sessionRecord struct {
	Role            uint8                 `cbor:"1,keyasint"`
	LocalIdentity   []byte                `cbor:"2,keyasint"`
	PeerIdentity    []byte                `cbor:"3,keyasint"`
	BaseKey         []byte                `cbor:"4,keyasint"`
	OneTimeKeyID    uint32                `cbor:"5,keyasint"`
	OneTimeKey      []byte                `cbor:"6,keyasint"`
	ReceivedMessage bool                  `cbor:"7,keyasint"`
	RootKey         []byte                `cbor:"8,keyasint"`
	Sender          *senderChainRecord    `cbor:"9,keyasint,omitempty"`
	Receivers       []receiverChainRecord `cbor:"10,keyasint"`
	Skipped         []skippedKeyRecord    `cbor:"11,keyasint"`
}

func accountToRecord(st domain.AccountState) accountRecord {
	rec := accountRecord{
		XPub:      clone(st.Identity.XPub[:]),
		XPriv:     clone(st.Identity.XPriv[:]),
		EdPub:     clone(st.Identity.EdPub[:]),
		EdPriv:    clone(st.Identity.EdPriv[:]),
		NextKeyID: uint32(st.NextKeyID),
		Keys:      make([]oneTimeKeyRecord, 0, len(st.OneTimeKeys)),
	}
	for _, k := range st.OneTimeKeys {
		rec.Keys = append(rec.Keys, oneTimeKeyRecord{
			ID:    uint32(k.ID),
			Priv:  clone(k.Priv[:]),
			Pub:   clone(k.Pub[:]),
			State: uint8(k.State),
		})
	}
	return rec
}

func (r *accountRecord) state() (domain.AccountState, error) {
	var st domain.AccountState
	if err := fill(st.Identity.XPub[:], r.XPub, "identity curve25519"); err != nil {
		return st, err
	}
	if err := fill(st.Identity.XPriv[:], r.XPriv, "identity curve25519 private"); err != nil {
		return st, err
	}
	if err := fill(st.Identity.EdPub[:], r.EdPub, "identity ed25519"); err != nil {
		return st, err
	}
	if err := fill(st.Identity.EdPriv[:], r.EdPriv, "identity ed25519 private"); err != nil {
		return st, err
	}
	st.NextKeyID = domain.KeyID(r.NextKeyID)
	if len(r.Keys) > 0 {
		st.OneTimeKeys = make([]domain.OneTimeKey, len(r.Keys))
	}
	for i, k := range r.Keys {
		otk := &st.OneTimeKeys[i]
		otk.ID = domain.KeyID(k.ID)
		otk.State = domain.KeyState(k.State)
		if err := fill(otk.Priv[:], k.Priv, "one-time private"); err != nil {
			return st, err
		}
		if err := fill(otk.Pub[:], k.Pub, "one-time public"); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (r *accountRecord) wipe() {
	memzero.Zero(r.XPriv)
	memzero.Zero(r.EdPriv)
	for _, k := range r.Keys {
		memzero.Zero(k.Priv)
	}
}

func sessionToRecord(st domain.SessionState) sessionRecord {
	rs := st.Ratchet
	rec := sessionRecord{
		Role:            uint8(st.Role),
		LocalIdentity:   clone(st.LocalIdentity[:]),
		PeerIdentity:    clone(st.PeerIdentity[:]),
		BaseKey:         clone(st.BaseKey[:]),
		OneTimeKeyID:    uint32(st.OneTimeKeyID),
		OneTimeKey:      clone(st.OneTimeKey[:]),
		ReceivedMessage: st.ReceivedMessage,
		RootKey:         clone(rs.RootKey[:]),
		Receivers:       make([]receiverChainRecord, 0, len(rs.ReceiverChains)),
		Skipped:         make([]skippedKeyRecord, 0, len(rs.SkippedKeys)),
	}
	if sc := rs.SenderChain; sc != nil {
		rec.Sender = &senderChainRecord{
			RatchetPriv: clone(sc.RatchetPriv[:]),
			RatchetPub:  clone(sc.RatchetPub[:]),
			ChainKey:    clone(sc.ChainKey[:]),
			Index:       sc.Index,
		}
	}
	for _, c := range rs.ReceiverChains {
		rec.Receivers = append(rec.Receivers, receiverChainRecord{
			RatchetKey: clone(c.RatchetKey[:]),
			ChainKey:   clone(c.ChainKey[:]),
			Index:      c.Index,
		})
	}
	for _, k := range rs.SkippedKeys {
		rec.Skipped = append(rec.Skipped, skippedKeyRecord{
			RatchetKey: clone(k.RatchetKey[:]),
			Index:      k.Index,
			MessageKey: clone(k.MessageKey[:]),
		})
	}
	return rec
}

func (r *sessionRecord) state() (domain.SessionState, error) {
	st := domain.SessionState{
		Role:            domain.Role(r.Role),
		OneTimeKeyID:    domain.KeyID(r.OneTimeKeyID),
		ReceivedMessage: r.ReceivedMessage,
	}
	for _, f := range []struct {
		dst  []byte
		src  []byte
		name string
	}{
		{st.LocalIdentity[:], r.LocalIdentity, "local identity"},
		{st.PeerIdentity[:], r.PeerIdentity, "peer identity"},
		{st.BaseKey[:], r.BaseKey, "base key"},
		{st.OneTimeKey[:], r.OneTimeKey, "one-time key"},
		{st.Ratchet.RootKey[:], r.RootKey, "root key"},
	} {
		if err := fill(f.dst, f.src, f.name); err != nil {
			return st, err
		}
	}

	if r.Sender != nil {
		sc := &domain.SenderChain{Index: r.Sender.Index}
		if err := fill(sc.RatchetPriv[:], r.Sender.RatchetPriv, "sender ratchet private"); err != nil {
			return st, err
		}
		if err := fill(sc.RatchetPub[:], r.Sender.RatchetPub, "sender ratchet public"); err != nil {
			return st, err
		}
		if err := fill(sc.ChainKey[:], r.Sender.ChainKey, "sender chain key"); err != nil {
			return st, err
		}
		st.Ratchet.SenderChain = sc
	}
	if len(r.Receivers) > 0 {
		st.Ratchet.ReceiverChains = make([]domain.ReceiverChain, len(r.Receivers))
	}
	for i, c := range r.Receivers {
		rc := &st.Ratchet.ReceiverChains[i]
		rc.Index = c.Index
		if err := fill(rc.RatchetKey[:], c.RatchetKey, "receiver ratchet key"); err != nil {
			return st, err
		}
		if err := fill(rc.ChainKey[:], c.ChainKey, "receiver chain key"); err != nil {
			return st, err
		}
	}
	if len(r.Skipped) > 0 {
		st.Ratchet.SkippedKeys = make([]domain.SkippedKey, len(r.Skipped))
	}
	for i, k := range r.Skipped {
		sk := &st.Ratchet.SkippedKeys[i]
		sk.Index = k.Index
		if err := fill(sk.RatchetKey[:], k.RatchetKey, "skipped ratchet key"); err != nil {
			return st, err
		}
		if err := fill(sk.MessageKey[:], k.MessageKey, "skipped message key"); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (r *sessionRecord) wipe() {
	memzero.Zero(r.RootKey)
	if r.Sender != nil {
		memzero.Zero(r.Sender.RatchetPriv)
		memzero.Zero(r.Sender.ChainKey)
	}
	for _, c := range r.Receivers {
		memzero.Zero(c.ChainKey)
	}
	for _, k := range r.Skipped {
		memzero.Zero(k.MessageKey)
	}
}

func fill(dst, src []byte, name string) error {
	if len(src) != len(dst) {
		return types.NewError(types.KindMalformedKeyMaterial, "unpickle",
			fmt.Errorf("%s: want %d bytes, got %d", name, len(dst), len(src)))
	}
	copy(dst, src)
	return nil
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

// wipeAccountState zeroes every private key held by st.
func wipeAccountState(st *domain.AccountState) {
	memzero.Zero32((*[32]byte)(&st.Identity.XPriv))
	memzero.Zero64((*[64]byte)(&st.Identity.EdPriv))
	for i := range st.OneTimeKeys {
		memzero.Zero32((*[32]byte)(&st.OneTimeKeys[i].Priv))
	}
}
