// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package vaulttest provides test doubles for exercising vault, store, and
// autorefresher without a live cloud KMS or real wall-clock waits.
package vaulttest

import (
	"github.com/tink-crypto/tink-go/v2/testutil"
	"github.com/tink-crypto/tink-go/v2/tink"
)

// DummyKEK returns a tink.AEAD usable as a key-encryption key in tests,
// without talking to a cloud KMS. name distinguishes KEKs within a single
// test so that encryption.KMSEnvelope wrap/unwrap failures can be exercised
// by constructing two different ones.
func DummyKEK(name string) tink.AEAD {
	return &testutil.DummyAEAD{Name: name}
}
