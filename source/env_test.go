// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vaultkit/vault/source"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

func TestEnvSource_Found(t *testing.T) {
	t.Setenv("MY_API_KEY", "abc123")

	s := source.EnvSource{}
	ref := types.NewSecretRef(types.NewVaultKey("MY_API_KEY"))

	got, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if err != nil {
		t.Fatalf("GetSecrets: %v", err)
	}
	secret, ok := got[ref]
	if !ok {
		t.Fatal("secret not found in result")
	}
	defer secret.Close()
	str, _ := secret.Value.AsString()
	if str != "abc123" {
		t.Errorf("value = %q, want abc123", str)
	}
}

func TestEnvSource_CaseInsensitiveFallback(t *testing.T) {
	t.Setenv("LOWERISH_KEY", "v")
	s := source.EnvSource{}
	ref := types.NewSecretRef(types.NewVaultKey("lowerish_key"))

	got, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if err != nil {
		t.Fatalf("GetSecrets: %v", err)
	}
	if _, ok := got[ref]; !ok {
		t.Error("case-insensitive fallback did not find the variable")
	}
}

func TestEnvSource_MissingRequired(t *testing.T) {
	s := source.EnvSource{}
	ref := types.NewSecretRef(types.NewVaultKey("DOES_NOT_EXIST_XYZ")).WithRequired()

	_, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if !errors.Is(err, vaulterr.ErrDataNotFound) {
		t.Errorf("err = %v, want DataNotFoundError", err)
	}
}

func TestEnvSource_MissingNotRequired(t *testing.T) {
	s := source.EnvSource{}
	ref := types.NewSecretRef(types.NewVaultKey("DOES_NOT_EXIST_XYZ"))

	got, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if err != nil {
		t.Fatalf("GetSecrets: %v", err)
	}
	if _, ok := got[ref]; ok {
		t.Error("absent non-required ref should be omitted from result")
	}
}

func TestEnvSource_Versioned(t *testing.T) {
	t.Setenv("TOKEN_V2", "versioned-value")
	s := source.EnvSource{}
	ref := types.NewSecretRef(types.NewVaultKey("TOKEN").WithVersion("2"))

	got, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if err != nil {
		t.Fatalf("GetSecrets: %v", err)
	}
	secret, ok := got[ref]
	if !ok {
		t.Fatal("versioned secret not found")
	}
	defer secret.Close()
}
