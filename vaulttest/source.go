// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package vaulttest

import (
	"github.com/vaultkit/vault/source"
	"github.com/vaultkit/vault/types"
)

// NewSource returns a source.MockSource seeded with the given name/value
// pairs in the default namespace, for tests that don't need MockSource's
// full VaultKey-keyed seeding.
func NewSource(values map[types.SecretName]string) *source.MockSource {
	seed := make(map[types.VaultKey][]byte, len(values))
	for name, value := range values {
		seed[types.NewVaultKey(name)] = []byte(value)
	}
	return source.NewMockSource(seed)
}
