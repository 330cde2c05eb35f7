// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package audit_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vaultkit/vault/acl"
	"github.com/vaultkit/vault/audit"
	"github.com/vaultkit/vault/types"
)

func TestWriter(t *testing.T) {
	out := new(testWriter)
	w := audit.New(out, nil)

	entries := []*audit.Entry{
		{Operation: acl.OperationDecrypt, Key: types.NewVaultKey("db-password")},
		{Operation: acl.OperationRefresh, Key: types.NewVaultKey("api-key")},
	}

	if err := w.WriteEntries(entries...); err != nil {
		t.Fatalf("writing audit log entries: %v", err)
	}
	for i, e := range entries {
		if e.ID == 0 {
			t.Fatalf("ID was not set on entry %d", i+1)
		}
		if e.Time.IsZero() {
			t.Fatalf("Time was not set on entry %d", i+1)
		}
	}

	out.syncErr = errors.New("sync failed")
	w.Close()
	if !out.synced {
		t.Error("After Close: Sync was not called")
	}
	if !out.closed {
		t.Error("After Close: Close was not called")
	}

	dec := json.NewDecoder(&out.Buffer)
	var got []*audit.Entry
	for i := 0; i < len(entries); i++ {
		var ent *audit.Entry
		if err := dec.Decode(&ent); err != nil {
			t.Fatalf("decoding audit entry %d: %v", i+1, err)
		}
		got = append(got, ent)
	}

	if diff := cmp.Diff(got, entries); diff != "" {
		t.Fatalf("wrong audit log data on read-back (-got+want):\n%s", diff)
	}
}

func TestWriter_RecordFiltersByRules(t *testing.T) {
	out := new(testWriter)
	rules := acl.Rules{
		{Operation: []acl.Operation{acl.OperationDecrypt}, Secret: []acl.Secret{"db-*"}},
	}
	w := audit.New(out, rules)

	if err := w.Record(acl.OperationDecrypt, types.NewVaultKey("db-password"), errors.New("boom")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := w.Record(acl.OperationDecrypt, types.NewVaultKey("other-secret"), errors.New("boom")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	dec := json.NewDecoder(&out.Buffer)
	var count int
	for {
		var ent audit.Entry
		if err := dec.Decode(&ent); err != nil {
			break
		}
		count++
	}
	if count != 1 {
		t.Fatalf("got %d entries, want 1 (one should have been filtered out)", count)
	}
}

type testWriter struct {
	bytes.Buffer
	syncErr        error
	synced, closed bool
}

func (t *testWriter) Sync() error  { t.synced = true; return t.syncErr }
func (t *testWriter) Close() error { t.closed = true; return nil }
