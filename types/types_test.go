// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package types_test

import (
	"testing"

	"github.com/vaultkit/vault/types"
)

func TestVaultKey_Equality(t *testing.T) {
	a := types.NewVaultKey("db-password").WithVersion("1").WithNamespace("prod")
	b := types.NewVaultKey("db-password").WithVersion("1").WithNamespace("prod")
	c := types.NewVaultKey("db-password").WithVersion("2").WithNamespace("prod")

	if a != b {
		t.Error("identical keys compared unequal")
	}
	if a == c {
		t.Error("keys differing only by version compared equal")
	}
}

func TestVaultKey_CanonicalAAD_StableAcrossCalls(t *testing.T) {
	k := types.NewVaultKey("api-key").WithVersion("3").WithNamespace("staging")
	if string(k.CanonicalAAD()) != string(k.CanonicalAAD()) {
		t.Fatal("CanonicalAAD is not deterministic")
	}
}

func TestVaultKey_CanonicalAAD_DistinguishesNameFromNamespace(t *testing.T) {
	k1 := types.NewVaultKey("a").WithNamespace("b")
	k2 := types.NewVaultKey("b").WithNamespace("a")
	if string(k1.CanonicalAAD()) == string(k2.CanonicalAAD()) {
		t.Error("swapping name and namespace produced the same AAD")
	}
}

func TestSecretRef_Builders(t *testing.T) {
	r := types.NewSecretRef(types.NewVaultKey("x")).
		WithRequired().
		WithAutoRefresh().
		WithAllowInSnapshots()

	if !r.Required || !r.AutoRefresh || !r.AllowInSnapshots {
		t.Errorf("SecretRef flags not all set: %+v", r)
	}
}

func TestSecretExpiration_Variants(t *testing.T) {
	if types.NoExpiration.Kind != types.ExpirationNone {
		t.Error("NoExpiration.Kind != ExpirationNone")
	}
	if got := types.ExpireAfter(0).Kind; got != types.ExpirationTTL {
		t.Errorf("ExpireAfter(...).Kind = %v, want ExpirationTTL", got)
	}
}
