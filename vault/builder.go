// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package vault

import (
	"github.com/vaultkit/vault/encryption"
	"github.com/vaultkit/vault/source"
	"github.com/vaultkit/vault/store"
	"github.com/vaultkit/vault/types"
)

// Builder is the entry point of the staged Vault builder: with_source →
// with_encryption|without_encryption → with_secret_refs → build. Each
// stage returns a narrower builder type so that, for example, Build
// cannot be called before an encryption strategy has been chosen.
type Builder struct{}

// NewBuilder starts a new staged Vault construction.
func NewBuilder() Builder { return Builder{} }

// WithSource selects the secrets authority the vault will fetch from.
func (Builder) WithSource(s source.Source) BuilderWithSource {
	return BuilderWithSource{source: s}
}

// BuilderWithSource is the builder stage after a source has been chosen.
type BuilderWithSource struct {
	source source.Source
}

// WithEncryption selects an explicit encryption strategy.
func (b BuilderWithSource) WithEncryption(e encryption.Encryption) BuilderWithEncryption {
	return BuilderWithEncryption{source: b.source, encryption: e}
}

// WithoutEncryption opts out of encryption entirely, using the identity
// strategy. This is retained for test parity and explicit opt-out; see
// encryption.NoEncryption.
func (b BuilderWithSource) WithoutEncryption() BuilderWithEncryption {
	return BuilderWithEncryption{source: b.source, encryption: encryption.NoEncryption{}}
}

// BuilderWithEncryption is the builder stage after both a source and an
// encryption strategy have been chosen. It can already Build, with an
// empty registration set, or continue to WithSecretRefs.
type BuilderWithEncryption struct {
	source     source.Source
	encryption encryption.Encryption
}

// WithSecretRefs registers the initial set of refs the vault manages.
// Further refs can still be added after Build via RegisterRefs/AddRef.
func (b BuilderWithEncryption) WithSecretRefs(refs []types.SecretRef) BuilderWithRefs {
	return BuilderWithRefs{source: b.source, encryption: b.encryption, refs: refs}
}

// Build constructs the Vault with an empty registration set.
func (b BuilderWithEncryption) Build() (*Vault, error) {
	return b.WithSecretRefs(nil).Build()
}

// BuilderWithRefs is the final builder stage; Build is fallible only in
// the sense that a future version of this package may validate refs
// up front, but today construction never fails.
type BuilderWithRefs struct {
	source     source.Source
	encryption encryption.Encryption
	refs       []types.SecretRef
}

// Build constructs the Vault.
func (b BuilderWithRefs) Build() (*Vault, error) {
	return &Vault{
		source: b.source,
		store:  store.New(b.encryption),
		refs:   append([]types.SecretRef(nil), b.refs...),
	}, nil
}
