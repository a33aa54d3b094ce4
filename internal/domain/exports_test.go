package domain_test

import (
	"testing"

	"olmkit/internal/domain"
	"olmkit/internal/domain/types"
)

func TestKeyStateAliases(t *testing.T) {
	for _, c := range []struct {
		alias, want domain.KeyState
	}{
		{domain.KeyUnpublished, types.KeyUnpublished},
		{domain.KeyPublished, types.KeyPublished},
		{domain.KeyUsed, types.KeyUsed},
	} {
		if c.alias != c.want {
			t.Fatalf("alias %v != %v", c.alias, c.want)
		}
	}
	if domain.KeyUsed.String() != "used" {
		t.Fatalf("KeyUsed.String() = %q", domain.KeyUsed.String())
	}
}
