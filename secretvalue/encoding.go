// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package secretvalue

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/awnumar/memguard"
)

// ZeroString is a string-shaped encoded view of a secret (hex or base64)
// that zeroizes its backing memory when Close is called. Unlike a plain Go
// string, a ZeroString's Close is meaningful: String() borrows memory owned
// by an internal locked buffer.
type ZeroString struct {
	buf *memguard.LockedBuffer
}

// String returns the encoded text. The result is only valid until Close is
// called.
func (z ZeroString) String() string {
	if z.buf == nil {
		return ""
	}
	return string(z.buf.Bytes())
}

// Close zeroizes the encoded text.
func (z ZeroString) Close() {
	if z.buf != nil {
		z.buf.Destroy()
	}
}

func newZeroString(encoded []byte) ZeroString {
	return ZeroString{buf: memguard.NewBufferFromBytes(encoded)}
}

// AsHex returns a zeroizing lowercase hex encoding of s's cleartext.
func (s *SecretValue) AsHex() ZeroString {
	enc := make([]byte, hex.EncodedLen(s.Len()))
	hex.Encode(enc, s.AsBytes())
	return newZeroString(enc)
}

// AsBase64 returns a zeroizing standard base64 encoding of s's cleartext.
func (s *SecretValue) AsBase64() ZeroString {
	enc := make([]byte, base64.StdEncoding.EncodedLen(s.Len()))
	base64.StdEncoding.Encode(enc, s.AsBytes())
	return newZeroString(enc)
}

// FromHex decodes hex-encoded text into a new SecretValue. The decoded
// buffer is zeroized if decoding fails partway.
func FromHex(encoded string) (*SecretValue, error) {
	dec := make([]byte, hex.DecodedLen(len(encoded)))
	n, err := hex.Decode(dec, []byte(encoded))
	if err != nil {
		memguard.WipeBytes(dec)
		return nil, err
	}
	return New(dec[:n]), nil
}

// FromBase64 decodes standard-base64-encoded text into a new SecretValue.
func FromBase64(encoded string) (*SecretValue, error) {
	dec := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(dec, []byte(encoded))
	if err != nil {
		memguard.WipeBytes(dec)
		return nil, err
	}
	return New(dec[:n]), nil
}
