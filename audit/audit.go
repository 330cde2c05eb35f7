// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package audit provides a diagnostic log writer for vault operation
// failures. Unlike the teacher's audit log, this is not a tamper-evident
// record of who accessed what: it exists so that encrypt and decrypt
// failures recorded by store.VaultStore (a failed KMS unwrap surfaces as
// one of those) leave a structured trail, gated by an acl.Rules
// allowlist so a caller can restrict which secret names are ever
// mentioned in the log. Entries never carry secret values, only names.
package audit

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/vaultkit/vault/acl"
	"github.com/vaultkit/vault/types"
)

// Entry is a single audit log record of a failed vault operation.
type Entry struct {
	// ID is the entry's ID.
	ID uint64 `json:"id"`
	// Time is the entry's timestamp.
	Time time.Time `json:"time"`
	// Operation is the kind of activity that failed.
	Operation acl.Operation `json:"operation"`
	// Key identifies the secret the operation was acting on.
	Key types.VaultKey `json:"key"`
	// Err is the failing operation's error message. It must never
	// contain secret material; callers are responsible for passing only
	// vaulterr-style, pre-redacted error text.
	Err string `json:"err,omitempty"`
}

// Writer is an audit log writer.
type Writer struct {
	w     io.Writer
	enc   *json.Encoder
	rules acl.Rules
}

// New returns a Writer that outputs audit log entries to w as JSON
// objects, filtered by rules. A nil or empty rules allows every entry
// through. If w also implements io.Closer, Writer.Close closes w. If w
// also implements a Sync method with the same signature as os.File,
// Writer.Sync calls w.Sync.
func New(w io.Writer, rules acl.Rules) *Writer {
	return &Writer{
		w:     w,
		enc:   json.NewEncoder(w),
		rules: rules,
	}
}

// NewFile returns a Writer that outputs audit log entries to a file at
// path, creating it if necessary.
func NewFile(path string, rules acl.Rules) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	return New(f, rules), nil
}

// Sync commits the current contents of the file to stable storage if the
// Writer was created with a sink that itself implements Sync, or else
// does nothing successfully.
func (l *Writer) Sync() error {
	if s, ok := l.w.(syncer); ok {
		return s.Sync()
	}
	return nil
}

// Close syncs the Writer and then closes it if the writer was created with
// a sink that implements io.Closer. The sink is closed even when the sync
// fails; any sync and close errors are returned together.
func (l *Writer) Close() error {
	serr := l.Sync()
	if c, ok := l.w.(io.Closer); ok {
		return errors.Join(serr, c.Close())
	}
	return serr
}

type syncer interface {
	Sync() error
}

// Record writes one entry for a failed op against key, if rules allows
// logging about key.Name. It is a no-op, returning nil, when the entry is
// filtered out.
func (l *Writer) Record(op acl.Operation, key types.VaultKey, cause error) error {
	if !l.rules.Allow(op, string(key.Name)) {
		return nil
	}
	entry := &Entry{Operation: op, Key: key}
	if cause != nil {
		entry.Err = cause.Error()
	}
	return l.WriteEntries(entry)
}

// WriteEntries writes entries to the audit log. Each entry's ID and Time
// fields are set prior to writing; any existing value is overwritten.
func (l *Writer) WriteEntries(entries ...*Entry) error {
	for _, e := range entries {
		e.ID = rand.Uint64()
		e.Time = time.Now().UTC()

		if err := l.enc.Encode(e); err != nil {
			return err
		}
	}
	return l.Sync()
}
