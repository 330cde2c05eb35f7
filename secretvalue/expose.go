// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package secretvalue

import "context"

// ExposeBytes invokes fn with a transient view of s's cleartext bytes. The
// carrier passed to fn is only valid for the duration of the call; fn must
// not retain it. The underlying memory is unaffected by fn returning
// normally, returning an error, or panicking — Close (or GC finalization)
// remains the only thing that wipes it, exactly as for AsBytes.
//
// ExposeBytes exists for callers who want the scoped-access idiom without
// holding a raw slice reference beyond the callback, matching the
// closure-based exposure pattern of the system this package's design is
// based on (see SPEC_FULL.md's design notes on scoped acquisition).
func (s *SecretValue) ExposeBytes(fn func([]byte)) {
	fn(s.AsBytes())
}

// ExposeString is ExposeBytes's string-typed counterpart. It returns
// ErrInvalidUTF8 without calling fn if the bytes are not valid UTF-8.
func (s *SecretValue) ExposeString(fn func(string)) error {
	str, err := s.AsString()
	if err != nil {
		return err
	}
	fn(str)
	return nil
}

// ExposeBytesContext is the cancellable form of ExposeBytes for callers that
// may need to abandon the callback mid-flight (e.g. fn itself blocks on
// ctx). If ctx is already done, ExposeBytesContext returns ctx.Err() without
// invoking fn.
func (s *SecretValue) ExposeBytesContext(ctx context.Context, fn func(context.Context, []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.AsBytes())
}

// Wipeable is implemented by transient carriers a caller constructs inside
// an Expose* callback and wants this package to zeroize on their behalf
// once the callback returns.
type Wipeable interface {
	Wipe()
}

// ExposeBytesWiping invokes fn with s's cleartext and, once fn returns,
// wipes the Wipeable value fn produced. This is the "caller returns the
// object to be zeroized" variant: fn is expected to derive some transient
// value (e.g. a reshaped buffer, a derived key) from the exposed bytes and
// hand it back for disposal alongside its own result.
func ExposeBytesWiping[T any](s *SecretValue, fn func([]byte) (T, Wipeable)) T {
	result, wipeable := fn(s.AsBytes())
	if wipeable != nil {
		wipeable.Wipe()
	}
	return result
}
