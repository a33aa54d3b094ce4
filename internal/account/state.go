package account

import (
	"errors"
	"fmt"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

var (
	errIDSpace     = errors.New("key id space exhausted")
	errIdentity    = errors.New("identity public keys do not match private keys")
	errKeyOrder    = errors.New("one-time key ids not strictly increasing")
	errKeyPair     = errors.New("one-time public key does not match private key")
	errUsedPrivate = errors.New("used one-time key retains private half")
)

// State returns a deep copy of the account for pickling.
func (a *Account) State() domain.AccountState {
	return domain.AccountState{
		Identity:    a.identity,
		NextKeyID:   a.nextID,
		OneTimeKeys: append([]domain.OneTimeKey(nil), a.keys...),
	}
}

// FromState rebuilds an account, checking every key pair. A state that
// fails validation yields ErrMalformedKeyMaterial.
func FromState(p domain.Primitives, st domain.AccountState) (*Account, error) {
	if err := validate(p, st); err != nil {
		return nil, types.NewError(types.KindMalformedKeyMaterial, "restore_account", err)
	}
	return &Account{
		prim:     p,
		identity: st.Identity,
		keys:     append([]domain.OneTimeKey(nil), st.OneTimeKeys...),
		nextID:   st.NextKeyID,
	}, nil
}

func validate(p domain.Primitives, st domain.AccountState) error {
	xPub, err := p.X25519(st.Identity.XPriv, basepoint)
	if err != nil {
		return err
	}
	if domain.X25519Public(xPub) != st.Identity.XPub ||
		domain.Ed25519Public(st.Identity.EdPriv[32:]) != st.Identity.EdPub {
		return errIdentity
	}
	if st.NextKeyID < firstKeyID {
		return fmt.Errorf("next key id %d below %d", st.NextKeyID, firstKeyID)
	}

	var prev domain.KeyID
	outstanding, used := 0, 0
	for i, k := range st.OneTimeKeys {
		if (i > 0 && k.ID <= prev) || k.ID < firstKeyID || k.ID >= st.NextKeyID {
			return errKeyOrder
		}
		prev = k.ID
		switch k.State {
		case domain.KeyUnpublished, domain.KeyPublished:
			outstanding++
			pub, err := p.X25519(k.Priv, basepoint)
			if err != nil {
				return err
			}
			if domain.X25519Public(pub) != k.Pub {
				return errKeyPair
			}
		case domain.KeyUsed:
			used++
			if k.Priv != (domain.X25519Private{}) {
				return errUsedPrivate
			}
		default:
			return fmt.Errorf("key %s has invalid state %d", k.ID, k.State)
		}
	}
	if outstanding > MaxOneTimeKeys || used > maxUsedKeys {
		return fmt.Errorf("pool of %d outstanding and %d used keys exceeds capacity", outstanding, used)
	}
	return nil
}
