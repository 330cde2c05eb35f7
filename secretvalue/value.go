// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package secretvalue holds cleartext secret bytes in locked, wipe-on-exit
// memory and refuses to let them leak through Display, Debug, or logging.
package secretvalue

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"unicode/utf8"

	"github.com/awnumar/memguard"
)

// ErrInvalidUTF8 is reported by AsString when the underlying bytes are not
// valid UTF-8.
var ErrInvalidUTF8 = errors.New("secretvalue: bytes are not valid UTF-8")

// ErrInvalidJSON is reported by ExposeJSON when the underlying bytes cannot
// be parsed as the requested type.
var ErrInvalidJSON = errors.New("secretvalue: invalid JSON")

// redacted is what every rendering of a SecretValue produces, regardless of
// its contents.
const redacted = "***"

// A SecretValue owns a buffer of cleartext bytes. The buffer lives in locked,
// non-swappable memory for as long as the SecretValue is alive, and is
// zeroized by Close, or by the finalizer Track installs if the value is
// garbage collected without Close. A panic unwinding past a SecretValue
// does not by itself close it.
//
// The zero SecretValue is not valid; use New or one of the From* constructors.
type SecretValue struct {
	buf *memguard.LockedBuffer
}

// New takes ownership of b and returns a SecretValue wrapping it. b is
// zeroized and must not be used by the caller after this call returns.
func New(b []byte) *SecretValue {
	return &SecretValue{buf: memguard.NewBufferFromBytes(b)}
}

// FromString constructs a SecretValue from s. Go strings are immutable, so
// the original string's backing bytes cannot be wiped; callers holding
// cleartext in a string should prefer building a []byte and calling New.
func FromString(s string) *SecretValue {
	return New([]byte(s))
}

// FromMutableBytes takes ownership of b exactly like New, but documents the
// caller's intent that b was a transient buffer constructed solely to be
// handed to this function. b is zeroized before this function returns.
func FromMutableBytes(b []byte) *SecretValue {
	return New(b)
}

// Close zeroizes the buffer and releases its locked memory. Close is
// idempotent and safe to call more than once. After Close, the SecretValue
// must not be used.
func (s *SecretValue) Close() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
}

// finalize is registered with the garbage collector as a defense in depth
// for callers that forget to call Close; it is not a substitute for Close,
// since GC timing is not deterministic.
func finalize(s *SecretValue) { s.Close() }

// Track arranges for s's memory to be wiped by the garbage collector if the
// caller never calls Close. This is best-effort and callers should still
// call Close explicitly as soon as the secret is no longer needed.
func Track(s *SecretValue) *SecretValue {
	runtime.SetFinalizer(s, finalize)
	return s
}

// AsBytes returns the underlying cleartext bytes without copying. The
// returned slice is only valid until Close is called; callers must not
// retain it beyond the lifetime of s.
func (s *SecretValue) AsBytes() []byte {
	if s == nil || s.buf == nil {
		return nil
	}
	return s.buf.Bytes()
}

// AsString returns the underlying bytes as a string, returning
// ErrInvalidUTF8 if they are not valid UTF-8. Unlike AsBytes, the result is
// a newly allocated copy in ordinary Go memory: it stays readable after
// Close, and neither Close nor any other method of SecretValue zeroizes it.
func (s *SecretValue) AsString() (string, error) {
	b := s.AsBytes()
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// Len reports the length in bytes of the underlying secret.
func (s *SecretValue) Len() int {
	if s == nil || s.buf == nil {
		return 0
	}
	return len(s.buf.Bytes())
}

// Equal reports whether s and other hold byte-identical cleartext.
func (s *SecretValue) Equal(other *SecretValue) bool {
	if s == nil || other == nil {
		return s == other
	}
	ok, err := s.buf.EqualTo(other.AsBytes())
	return err == nil && ok
}

// Clone returns a new SecretValue holding a copy of s's bytes. The copy is
// independent: closing one does not affect the other.
func (s *SecretValue) Clone() *SecretValue {
	cp := make([]byte, s.Len())
	copy(cp, s.AsBytes())
	return New(cp)
}

// String implements fmt.Stringer. It never reveals the secret's contents.
func (s *SecretValue) String() string { return redacted }

// GoString implements fmt.GoStringer, used by %#v. It never reveals the
// secret's contents.
func (s *SecretValue) GoString() string { return redacted }

// MarshalJSON always fails: a SecretValue must never be serialized
// directly. Callers that need to ship a secret value over the wire must
// explicitly call AsBytes and accept responsibility for the resulting copy.
func (s *SecretValue) MarshalJSON() ([]byte, error) {
	return nil, errors.New("secretvalue: refusing to marshal a SecretValue; call AsBytes explicitly")
}

// ExposeJSON parses the cleartext as JSON into a new value of type T. T
// should itself avoid retaining cleartext longer than necessary; this
// function cannot zeroize the decoded value for the caller.
func ExposeJSON[T any](s *SecretValue) (T, error) {
	var out T
	if err := json.Unmarshal(s.AsBytes(), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return out, nil
}
