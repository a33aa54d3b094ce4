package account

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
	"olmkit/internal/util/memzero"
)

// MaxOneTimeKeys bounds the unpublished plus published keys an account holds.
const MaxOneTimeKeys = 100

// maxUsedKeys bounds the used records kept for bookkeeping.
const maxUsedKeys = MaxOneTimeKeys

// firstKeyID is the id given to the first generated key.
const firstKeyID domain.KeyID = 1

var basepoint = domain.X25519Public{9}

// Account is a long-term identity plus its one-time key pool.
type Account struct {
	prim     domain.Primitives
	identity domain.Identity
	keys     []domain.OneTimeKey // ascending id
	nextID   domain.KeyID
}

// New creates an account with a fresh identity.
func New(p domain.Primitives) (*Account, error) {
	xPriv, xPub, err := p.GenerateX25519()
	if err != nil {
		return nil, err
	}
	edPriv, edPub, err := p.GenerateEd25519()
	if err != nil {
		memzero.Zero32((*[32]byte)(&xPriv))
		return nil, err
	}
	return &Account{
		prim: p,
		identity: domain.Identity{
			XPub:   xPub,
			XPriv:  xPriv,
			EdPub:  edPub,
			EdPriv: edPriv,
		},
		nextID: firstKeyID,
	}, nil
}

// Primitives returns the primitives the account was built with.
func (a *Account) Primitives() domain.Primitives { return a.prim }

// IdentityKeys returns the public identity keys.
func (a *Account) IdentityKeys() domain.IdentityKeys {
	return domain.IdentityKeys{Curve25519: a.identity.XPub, Ed25519: a.identity.EdPub}
}

// IdentityKeysJSON renders the identity keys as
// {"curve25519": "...", "ed25519": "..."}.
func (a *Account) IdentityKeysJSON() ([]byte, error) {
	return json.Marshal(a.IdentityKeys())
}

// Identity returns the full identity including private halves. It exists
// for session establishment; callers must not retain it.
func (a *Account) Identity() domain.Identity { return a.identity }

// Sign returns an Ed25519 signature over msg.
func (a *Account) Sign(msg []byte) []byte {
	return a.prim.SignEd25519(a.identity.EdPriv, msg)
}

// MaxOneTimeKeys reports how many unpublished and published keys the
// account can hold.
func (a *Account) MaxOneTimeKeys() int { return MaxOneTimeKeys }

// Outstanding counts the unpublished and published keys.
func (a *Account) Outstanding() int {
	n := 0
	for _, k := range a.keys {
		if k.State != domain.KeyUsed {
			n++
		}
	}
	return n
}

// GenerateOneTimeKeys appends count fresh unpublished keys. It fails with
// ErrCapacityExceeded, leaving the pool unchanged, when the result would
// hold more than MaxOneTimeKeys outstanding keys.
func (a *Account) GenerateOneTimeKeys(count int) error {
	const op = "generate_one_time_keys"
	if count < 0 {
		return types.NewError(types.KindCapacityExceeded, op, fmt.Errorf("negative count %d", count))
	}
	if out := a.Outstanding(); out+count > MaxOneTimeKeys {
		return types.NewError(types.KindCapacityExceeded, op,
			fmt.Errorf("%d outstanding + %d requested exceeds %d", out, count, MaxOneTimeKeys))
	}
	if uint64(a.nextID)+uint64(count) > math.MaxUint32 {
		return types.NewError(types.KindCapacityExceeded, op, errIDSpace)
	}

	fresh := make([]domain.OneTimeKey, 0, count)
	for i := 0; i < count; i++ {
		priv, pub, err := a.prim.GenerateX25519()
		if err != nil {
			for j := range fresh {
				memzero.Zero32((*[32]byte)(&fresh[j].Priv))
			}
			return err
		}
		fresh = append(fresh, domain.OneTimeKey{
			ID:    a.nextID + domain.KeyID(i),
			Priv:  priv,
			Pub:   pub,
			State: domain.KeyUnpublished,
		})
	}
	a.keys = append(a.keys, fresh...)
	a.nextID += domain.KeyID(count)
	return nil
}

// OneTimeKeys returns every unpublished and published key. Published keys
// stay listed until consumed so a failed publish can be retried.
func (a *Account) OneTimeKeys() map[domain.KeyID]domain.X25519Public {
	out := make(map[domain.KeyID]domain.X25519Public)
	for _, k := range a.keys {
		if k.State != domain.KeyUsed {
			out[k.ID] = k.Pub
		}
	}
	return out
}

// UnpublishedKeys returns the keys not yet marked as published, by id.
func (a *Account) UnpublishedKeys() []domain.OneTimeKeyPublic {
	var out []domain.OneTimeKeyPublic
	for _, k := range a.keys {
		if k.State == domain.KeyUnpublished {
			out = append(out, domain.OneTimeKeyPublic{ID: k.ID, Key: k.Pub})
		}
	}
	return out
}

// OneTimeKeysJSON renders OneTimeKeys as {"curve25519": {"<id>": "<key>"}}.
func (a *Account) OneTimeKeysJSON() ([]byte, error) {
	m := make(map[string]string)
	for id, pub := range a.OneTimeKeys() {
		m[id.String()] = types.EncodeKey(pub[:])
	}
	return json.Marshal(map[string]map[string]string{"curve25519": m})
}

// MarkKeysAsPublished moves every unpublished key to published and returns
// how many moved. Calling it again is a no-op.
func (a *Account) MarkKeysAsPublished() int {
	n := 0
	for i := range a.keys {
		if a.keys[i].State == domain.KeyUnpublished {
			a.keys[i].State = domain.KeyPublished
			n++
		}
	}
	return n
}

// FindOneTimeKey returns the unused key with id.
func (a *Account) FindOneTimeKey(id domain.KeyID) (domain.OneTimeKey, bool) {
	i := a.index(id)
	if i < 0 || a.keys[i].State == domain.KeyUsed {
		return domain.OneTimeKey{}, false
	}
	return a.keys[i], true
}

// ConsumeOneTimeKey marks the key used and zeroes its private half. Unknown
// or already used ids fail with ErrUnknownOneTimeKey.
func (a *Account) ConsumeOneTimeKey(id domain.KeyID) error {
	i := a.index(id)
	if i < 0 || a.keys[i].State == domain.KeyUsed {
		return types.NewError(types.KindUnknownOneTimeKey, "consume_one_time_key",
			fmt.Errorf("key id %s", id))
	}
	memzero.Zero32((*[32]byte)(&a.keys[i].Priv))
	a.keys[i].State = domain.KeyUsed
	a.pruneUsed()
	return nil
}

// Wipe zeroes every private key. The account is unusable afterwards.
func (a *Account) Wipe() {
	memzero.Zero32((*[32]byte)(&a.identity.XPriv))
	memzero.Zero64((*[64]byte)(&a.identity.EdPriv))
	for i := range a.keys {
		memzero.Zero32((*[32]byte)(&a.keys[i].Priv))
	}
	a.keys = nil
}

func (a *Account) index(id domain.KeyID) int {
	i := sort.Search(len(a.keys), func(i int) bool { return a.keys[i].ID >= id })
	if i < len(a.keys) && a.keys[i].ID == id {
		return i
	}
	return -1
}

// pruneUsed drops the oldest used records beyond maxUsedKeys.
func (a *Account) pruneUsed() {
	used := 0
	for _, k := range a.keys {
		if k.State == domain.KeyUsed {
			used++
		}
	}
	if used <= maxUsedKeys {
		return
	}
	drop := used - maxUsedKeys
	kept := a.keys[:0]
	for _, k := range a.keys {
		if drop > 0 && k.State == domain.KeyUsed {
			drop--
			continue
		}
		kept = append(kept, k)
	}
	a.keys = kept
}
