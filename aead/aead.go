// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package aead wraps a Tink AEAD primitive as a data-encryption key (DEK):
// generate one at construction, use it to encrypt/decrypt arbitrarily many
// values under distinct AAD, and optionally wrap/unwrap it under a
// key-encryption key (KEK) for envelope encryption.
package aead

import (
	"bytes"
	"fmt"

	tinkaead "github.com/tink-crypto/tink-go/v2/aead"
	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/tink"
)

// dekContext is the AEAD associated data used when wrapping or unwrapping a
// DEK's keyset under a KEK. It is distinct from any AAD used to encrypt a
// caller's value, so a wrapped DEK can never be confused with a wrapped
// secret value.
const dekContext = "vaultkit DEK v1"

// DEK is a generated data-encryption key, ready to encrypt and decrypt
// values. The zero DEK is not valid; use New.
type DEK struct {
	handle *keyset.Handle
	cipher tink.AEAD
}

// New generates a fresh DEK using XChaCha20-Poly1305, the same AEAD
// primitive family used elsewhere in this stack's Tink-based encrypted
// stores.
func New() (*DEK, error) {
	handle, err := keyset.NewHandle(tinkaead.XChaCha20Poly1305KeyTemplate())
	if err != nil {
		return nil, fmt.Errorf("generating DEK keyset: %w", err)
	}
	cipher, err := tinkaead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("constructing cipher from DEK: %w", err)
	}
	return &DEK{handle: handle, cipher: cipher}, nil
}

// Encrypt encrypts plaintext, authenticating aad alongside it. The
// returned ciphertext includes the authentication tag and any Tink
// framing; it is opaque to callers.
func (d *DEK) Encrypt(plaintext, aad []byte) ([]byte, error) {
	ct, err := d.cipher.Encrypt(plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("encrypting: %w", err)
	}
	return ct, nil
}

// Decrypt decrypts ciphertext, requiring aad to match what was passed to
// Encrypt. A mismatched aad, corrupted ciphertext, or truncated input all
// surface as an error; Decrypt never returns a partial plaintext.
func (d *DEK) Decrypt(ciphertext, aad []byte) ([]byte, error) {
	pt, err := d.cipher.Decrypt(ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return pt, nil
}

// Wrap serializes and encrypts d's keyset under kek, for envelope
// encryption. The result is safe to hold in memory or persist; it cannot
// be used to encrypt or decrypt without kek.
func (d *DEK) Wrap(kek tink.AEAD) ([]byte, error) {
	var buf bytes.Buffer
	w := keyset.NewBinaryWriter(&buf)
	if err := d.handle.WriteWithAssociatedData(w, kek, []byte(dekContext)); err != nil {
		return nil, fmt.Errorf("wrapping DEK: %w", err)
	}
	return buf.Bytes(), nil
}

// Unwrap reverses Wrap: it decrypts wrapped under kek and reconstructs a
// usable DEK.
func Unwrap(wrapped []byte, kek tink.AEAD) (*DEK, error) {
	r := keyset.NewBinaryReader(bytes.NewReader(wrapped))
	handle, err := keyset.ReadWithAssociatedData(r, kek, []byte(dekContext))
	if err != nil {
		return nil, fmt.Errorf("unwrapping DEK: %w", err)
	}
	cipher, err := tinkaead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("constructing cipher from unwrapped DEK: %w", err)
	}
	return &DEK{handle: handle, cipher: cipher}, nil
}
