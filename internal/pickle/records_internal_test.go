package pickle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"olmkit/internal/domain"
)

func TestWipeAccountState(t *testing.T) {
	st := domain.AccountState{
		Identity: domain.Identity{
			XPub:   domain.X25519Public{1},
			XPriv:  domain.X25519Private{2},
			EdPub:  domain.Ed25519Public{3},
			EdPriv: domain.Ed25519Private{4},
		},
		OneTimeKeys: []domain.OneTimeKey{
			{ID: 1, Priv: domain.X25519Private{5}, Pub: domain.X25519Public{6}},
			{ID: 2, Priv: domain.X25519Private{7}, Pub: domain.X25519Public{8}},
		},
	}
	wipeAccountState(&st)

	require.Equal(t, domain.X25519Private{}, st.Identity.XPriv)
	require.Equal(t, domain.Ed25519Private{}, st.Identity.EdPriv)
	for _, k := range st.OneTimeKeys {
		require.Equal(t, domain.X25519Private{}, k.Priv)
	}
	// public halves are left alone
	require.Equal(t, domain.X25519Public{1}, st.Identity.XPub)
	require.Equal(t, domain.X25519Public{6}, st.OneTimeKeys[0].Pub)
}
