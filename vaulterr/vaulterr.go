// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package vaulterr defines the tagged error kinds returned by this module.
// Every error is a *Error carrying one of a small, closed set of kinds;
// callers that need to branch on failure mode should use errors.Is against
// the Err* sentinels below (or errors.As to *Error and inspect Kind), not
// string matching.
package vaulterr

import "fmt"

// Kind identifies which of the closed set of error variants an error is.
type Kind string

const (
	KindSystem          Kind = "system"
	KindDataNotFound     Kind = "data_not_found"
	KindInvalidParameters Kind = "invalid_parameters"
	KindNetwork          Kind = "network"
	KindEncryption       Kind = "encryption"
	KindMemory           Kind = "memory"
	KindSecretsSource    Kind = "secrets_source"
)

// Public codes. These are stable and safe to expose to callers; they never
// embed secret material.
const (
	CodeSecretNotFound = "SECRET_NOT_FOUND"
	CodeSecretPayload  = "SECRET_PAYLOAD"
	CodeEncryptKey     = "ENCRYPT_KEY"
	CodeEncrypt        = "ENCRYPT"
	CodeDecryptKey     = "DECRYPT_KEY"
	CodeDecrypt        = "DECRYPT"
	CodeEncryption     = "ENCRYPTION"
	CodeMemAlloc       = "MEM_ALLOC"
	CodeMemProtect     = "MEM_PROTECT"
	CodeMemLock        = "MEM_LOCK"
)

// Error is the common shape of every error this module returns. Display
// (via Error()) always yields a bounded, secret-free diagnostic; the
// wrapped cause, if any, is reachable only through Unwrap, never printed
// automatically.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("vault: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("vault: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind and, when
// target's Code is non-empty, the same Code, so that
// errors.Is(err, vaulterr.ErrSystem) style sentinel checks work without
// exposing concrete field values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Kind == t.Kind && e.Code == t.Code
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// System reports an invariant violation or unexpected internal state.
func System(message string, cause error) *Error {
	return newErr(KindSystem, "", message, cause)
}

// DataNotFound reports that a source has no value for a required ref, or
// that a require_* accessor was called on an absent key.
func DataNotFound(code, message string) *Error {
	return newErr(KindDataNotFound, code, message, nil)
}

// InvalidParameters reports missing or malformed configuration. field
// names the offending option.
func InvalidParameters(field, message string) *Error {
	return newErr(KindInvalidParameters, "", fmt.Sprintf("%s: %s", field, message), nil)
}

// Network reports a transient transport failure from a source or KMS.
// Implementations SHOULD treat errors of this kind as safe to retry.
func Network(message string, cause error) *Error {
	return newErr(KindNetwork, "", message, cause)
}

// Encryption reports an AEAD tag mismatch, AAD mismatch, key-wrap/unwrap
// failure, or key-generation failure.
func Encryption(code, message string, cause error) *Error {
	return newErr(KindEncryption, code, message, cause)
}

// Memory reports a page-protection or memory-locking failure from a
// protected-allocation backend.
func Memory(code, message string, cause error) *Error {
	return newErr(KindMemory, code, message, cause)
}

// SecretsSource reports a source-specific failure not classified by any
// other kind. cause, if non-nil, is the adapter's root-cause error.
func SecretsSource(message string, cause error) *Error {
	return newErr(KindSecretsSource, "", message, cause)
}

// Sentinel values for errors.Is comparisons that only care about kind, not
// code or message, e.g. errors.Is(err, vaulterr.ErrDataNotFound).
var (
	ErrSystem            = &Error{Kind: KindSystem}
	ErrDataNotFound      = &Error{Kind: KindDataNotFound}
	ErrInvalidParameters = &Error{Kind: KindInvalidParameters}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrEncryption        = &Error{Kind: KindEncryption}
	ErrMemory            = &Error{Kind: KindMemory}
	ErrSecretsSource     = &Error{Kind: KindSecretsSource}
)
