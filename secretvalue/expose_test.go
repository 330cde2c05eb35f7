// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package secretvalue_test

import (
	"context"
	"testing"

	"github.com/vaultkit/vault/secretvalue"
)

func TestExposeString(t *testing.T) {
	sv := secretvalue.New([]byte("plaintext"))
	defer sv.Close()

	var got string
	if err := sv.ExposeString(func(s string) { got = s }); err != nil {
		t.Fatalf("ExposeString: %v", err)
	}
	if got != "plaintext" {
		t.Errorf("ExposeString callback saw %q, want plaintext", got)
	}
}

func TestExposeString_InvalidUTF8(t *testing.T) {
	sv := secretvalue.New([]byte{0xff, 0xfe})
	defer sv.Close()

	called := false
	err := sv.ExposeString(func(string) { called = true })
	if err == nil {
		t.Fatal("ExposeString() error = nil, want ErrInvalidUTF8")
	}
	if called {
		t.Error("ExposeString invoked fn despite invalid UTF-8")
	}
}

func TestExposeBytesContext_Cancelled(t *testing.T) {
	sv := secretvalue.New([]byte("x"))
	defer sv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := sv.ExposeBytesContext(ctx, func(context.Context, []byte) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("ExposeBytesContext() error = nil, want context.Canceled")
	}
	if called {
		t.Error("ExposeBytesContext invoked fn despite cancelled context")
	}
}

type wipeRecorder struct{ wiped *bool }

func (w wipeRecorder) Wipe() { *w.wiped = true }

func TestExposeBytesWiping(t *testing.T) {
	sv := secretvalue.New([]byte("derive-me"))
	defer sv.Close()

	wiped := false
	got := secretvalue.ExposeBytesWiping(sv, func(b []byte) (int, secretvalue.Wipeable) {
		return len(b), wipeRecorder{wiped: &wiped}
	})
	if got != len("derive-me") {
		t.Errorf("ExposeBytesWiping result = %d, want %d", got, len("derive-me"))
	}
	if !wiped {
		t.Error("ExposeBytesWiping did not call Wipe on the returned Wipeable")
	}
}

func TestExposeBytesWiping_NilWipeable(t *testing.T) {
	sv := secretvalue.New([]byte("x"))
	defer sv.Close()

	// Must not panic when fn declines to hand back anything to wipe.
	got := secretvalue.ExposeBytesWiping(sv, func(b []byte) (int, secretvalue.Wipeable) {
		return len(b), nil
	})
	if got != 1 {
		t.Errorf("ExposeBytesWiping result = %d, want 1", got)
	}
}
