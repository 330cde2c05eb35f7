// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package acl_test

import (
	"testing"

	"github.com/vaultkit/vault/acl"
)

func TestSecret_Match(t *testing.T) {
	tests := []struct {
		pat    acl.Secret
		val    string
		want   bool
	}{
		{"db-password", "db-password", true},
		{"db-password", "other", false},
		{"db-*", "db-password", true},
		{"db-*", "other", false},
		{"*-password", "db-password", true},
		{"prefix/*/suffix", "prefix/middle/suffix", true},
		{"prefix/*/suffix", "prefix/suffix", false},
		{"*", "anything", true},
	}
	for _, tc := range tests {
		if got := tc.pat.Match(tc.val); got != tc.want {
			t.Errorf("Secret(%q).Match(%q) = %v, want %v", tc.pat, tc.val, got, tc.want)
		}
	}
}

func TestRules_Allow(t *testing.T) {
	rules := acl.Rules{
		{Operation: []acl.Operation{acl.OperationEncrypt, acl.OperationDecrypt}, Secret: []acl.Secret{"db-*"}},
		{Operation: []acl.Operation{acl.OperationRefresh}, Secret: []acl.Secret{"*"}},
	}

	if !rules.Allow(acl.OperationDecrypt, "db-password") {
		t.Error("expected decrypt on db-password to be allowed")
	}
	if rules.Allow(acl.OperationDecrypt, "api-key") {
		t.Error("expected decrypt on api-key to be denied")
	}
	if !rules.Allow(acl.OperationRefresh, "api-key") {
		t.Error("expected refresh on any secret to be allowed")
	}
}

func TestRules_EmptyAllowsEverything(t *testing.T) {
	var rules acl.Rules
	if !rules.Allow(acl.OperationEncrypt, "anything") {
		t.Error("empty Rules should allow everything")
	}
}
