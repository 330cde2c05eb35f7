// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package types defines the data model shared by every package in this
// module: the identifiers used to name a secret, the reference a caller
// registers against a vault, and the metadata that travels alongside a
// secret's value.
package types

import (
	"fmt"
	"time"
)

// SecretName identifies a secret within a namespace. It is opaque and
// non-empty; this package does not interpret its contents.
type SecretName string

// SecretVersion identifies a specific version of a secret. The empty
// SecretVersion means "unversioned" / "whatever the source considers
// current".
type SecretVersion string

// SecretNamespace partitions secrets across sub-sources in a multi-source
// configuration. The empty SecretNamespace is the default namespace.
type SecretNamespace string

// VaultKey is the tuple that identifies a secret within a vault: its name,
// an optional version, and an optional namespace. Two keys are equal iff
// all three components are equal. VaultKey is used both as the VaultStore
// map key and as the seed for the encryption AAD (see the encryption
// package).
type VaultKey struct {
	Name      SecretName
	Version   SecretVersion
	Namespace SecretNamespace
}

// NewVaultKey constructs an unversioned, default-namespace key.
func NewVaultKey(name SecretName) VaultKey {
	return VaultKey{Name: name}
}

// WithVersion returns a copy of k with its version set.
func (k VaultKey) WithVersion(v SecretVersion) VaultKey {
	k.Version = v
	return k
}

// WithNamespace returns a copy of k with its namespace set.
func (k VaultKey) WithNamespace(ns SecretNamespace) VaultKey {
	k.Namespace = ns
	return k
}

// String renders a human-readable, log-safe form of the key. It never
// contains secret material, only identifiers.
func (k VaultKey) String() string {
	s := string(k.Name)
	if k.Namespace != "" {
		s = string(k.Namespace) + "/" + s
	}
	if k.Version != "" {
		s = s + "@" + string(k.Version)
	}
	return s
}

// keyFieldSep separates the namespace, name, and version components when
// building the canonical AAD encoding of a VaultKey. It is a byte that
// cannot legally occur in a SecretName, SecretVersion, or SecretNamespace
// because callers are expected to use printable identifier-like strings;
// the encryption package documents this as the stable encoding for the
// lifetime of a vault process.
const keyFieldSep = "\x1f"

// CanonicalAAD returns the canonical byte encoding of k used as additional
// authenticated data for every encrypt/decrypt operation against this key.
// A key with neither namespace nor version encodes as the UTF-8 of the
// secret name alone. Any other key encodes as namespace, name, and version,
// in that order, joined by a separator that does not occur in ordinary
// identifier text; an absent component is empty but keeps its position, so
// a namespace can never be mistaken for a name or a name for a version.
// Changing this encoding invalidates every ciphertext produced by a prior
// version of this package.
func (k VaultKey) CanonicalAAD() []byte {
	if k.Namespace == "" && k.Version == "" {
		return []byte(k.Name)
	}
	return []byte(string(k.Namespace) + keyFieldSep + string(k.Name) + keyFieldSep + string(k.Version))
}

// SecretRef is a caller-supplied descriptor of a secret a Vault should
// manage: the key to fetch, plus flags controlling refresh and snapshot
// behavior.
type SecretRef struct {
	Key VaultKey

	// Required aborts refresh with a DataNotFoundError if the source has
	// no value for this ref.
	Required bool

	// AutoRefresh selects this ref for inclusion in AutoRefresher's
	// periodic refresh_only cycles.
	AutoRefresh bool

	// AllowInSnapshots gates whether this ref's value may be copied into
	// a Snapshot.
	AllowInSnapshots bool

	// Labels are predefined, caller-supplied tags carried alongside the
	// ref for the caller's own bookkeeping; the vault does not interpret
	// them.
	Labels map[string]string
}

// NewSecretRef returns a SecretRef for key with no flags set.
func NewSecretRef(key VaultKey) SecretRef {
	return SecretRef{Key: key}
}

// WithRequired returns a copy of r with Required set to true.
func (r SecretRef) WithRequired() SecretRef {
	r.Required = true
	return r
}

// WithAutoRefresh returns a copy of r with AutoRefresh set to true.
func (r SecretRef) WithAutoRefresh() SecretRef {
	r.AutoRefresh = true
	return r
}

// WithAllowInSnapshots returns a copy of r with AllowInSnapshots set to
// true.
func (r SecretRef) WithAllowInSnapshots() SecretRef {
	r.AllowInSnapshots = true
	return r
}

// WithLabels returns a copy of r with its labels set to labels.
func (r SecretRef) WithLabels(labels map[string]string) SecretRef {
	r.Labels = labels
	return r
}

// ExpirationKind distinguishes the two ways a SecretExpiration can be
// expressed.
type ExpirationKind int

const (
	// ExpirationNone means the secret carries no expiration information.
	ExpirationNone ExpirationKind = iota
	// ExpirationAtTime means Expiration.Time is an absolute expiry.
	ExpirationAtTime
	// ExpirationTTL means Expiration.TTL is a duration from issuance.
	ExpirationTTL
)

// SecretExpiration is a tagged variant: either an absolute expiry time or
// a time-to-live duration, or neither.
type SecretExpiration struct {
	Kind ExpirationKind
	Time time.Time
	TTL  time.Duration
}

// NoExpiration is the zero-value SecretExpiration.
var NoExpiration = SecretExpiration{}

// ExpireAt returns a SecretExpiration expressed as an absolute time.
func ExpireAt(t time.Time) SecretExpiration {
	return SecretExpiration{Kind: ExpirationAtTime, Time: t}
}

// ExpireAfter returns a SecretExpiration expressed as a TTL.
func ExpireAfter(d time.Duration) SecretExpiration {
	return SecretExpiration{Kind: ExpirationTTL, TTL: d}
}

// SecretMetadata travels alongside a secret's value. CachedAt is always
// set by the vault at insertion time; every other field is sourced from
// the upstream authority when it provides one.
type SecretMetadata struct {
	CachedAt    time.Time
	Key         VaultKey
	Labels      map[string]string
	Annotations map[string]string
	Description string
	Expiration  SecretExpiration
	Version     SecretVersion
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// String renders a log-safe summary of the metadata (no secret material
// ever flows through SecretMetadata, so this is safe to log in full).
func (m SecretMetadata) String() string {
	return fmt.Sprintf("metadata{key=%s version=%s cached_at=%s}", m.Key, m.Version, m.CachedAt.Format(time.RFC3339))
}
