// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package acl implements a glob-style name filter used to decide which
// secret names and which kinds of vault operation are eligible to appear
// in the diagnostic audit log (see package audit). It is not an
// access-control layer in the multi-tenant sense: this module has no
// caller identity to authorize, only a single in-process vault deciding
// what it is willing to log about itself.
package acl

import (
	"fmt"
	"regexp"
	"strings"
)

// Operation identifies a kind of vault activity the audit log can record.
type Operation string

const (
	// OperationEncrypt is logged when an Encryption strategy fails to
	// encrypt a value being inserted into the store.
	OperationEncrypt = Operation("encrypt")

	// OperationDecrypt is logged when an Encryption strategy fails to
	// decrypt a stored value.
	OperationDecrypt = Operation("decrypt")

	// OperationKMSUnwrap names a failure of KMSEnvelope to unwrap its DEK
	// from the configured KEK. No code in this module records entries
	// under it: VaultStore logs such a failure as OperationEncrypt or
	// OperationDecrypt.
	OperationKMSUnwrap = Operation("kms_unwrap")

	// OperationRefresh names a failed Vault refresh against its source.
	// Vault does not write audit entries, so no code in this module
	// records entries under it.
	OperationRefresh = Operation("refresh")
)

// Secret is a secret name pattern that can optionally contain '*'
// wildcard characters. The wildcard means "zero or more of any character
// here."
type Secret string

// Match reports whether the Secret name pattern matches val.
func (pat Secret) Match(val string) bool {
	s := string(pat)
	if !strings.Contains(s, "*") && s == val {
		return true
	}
	// We want the user to use glob-ish syntax, where '*' is the
	// equivalent of regexp's '.*'. We also don't want any other
	// character of the input misinterpreted as a regexp control
	// character.
	//
	// To achieve this, we:
	//  - split each input string on '*'
	//  - regexp-quote the resulting parts
	//  - reassemble the quoted parts around '.*' separators
	parts := strings.Split(s, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	re := regexp.MustCompile(fmt.Sprintf("^%s$", strings.Join(parts, ".*")))
	return re.MatchString(val)
}

// Rules is a set of log-eligibility rules. An empty Rules allows
// everything, so a zero-value Rules behaves as "log everything" rather
// than "log nothing."
type Rules []Rule

// Allow reports whether the rules permit logging op against secret.
func (rr Rules) Allow(op Operation, secret string) bool {
	if len(rr) == 0 {
		return true
	}
	for _, r := range rr {
		if r.Allow(op, secret) {
			return true
		}
	}
	return false
}

// Rule permits logging some operations against some secret name
// patterns. Secrets can contain '*' wildcards, which match zero or more
// characters.
type Rule struct {
	Operation []Operation `json:"operation"`
	Secret    []Secret    `json:"secret"`
}

// Allow reports whether the rule allows logging op against secret.
func (r *Rule) Allow(op Operation, secret string) bool {
	opMatches := func(ops []Operation) bool {
		for _, o := range ops {
			if o == op {
				return true
			}
		}
		return false
	}
	secretMatches := func(secs []Secret) bool {
		for _, s := range secs {
			if s.Match(secret) {
				return true
			}
		}
		return false
	}
	return opMatches(r.Operation) && secretMatches(r.Secret)
}
