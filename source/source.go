// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package source defines the SecretsSource contract a Vault fetches
// cleartext values through, and provides a handful of adapters: Env,
// Files, TempGen, Mock, Multi (namespace routing), and cloud-backed
// AWS/GCP Secret Manager sources.
package source

import (
	"context"
	"log"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/types"
)

// Source is implemented by every secrets authority a Vault can fetch
// from.
type Source interface {
	// Name identifies the source for diagnostics and logging.
	Name() string

	// GetSecrets attempts to retrieve a value for each of refs. A ref
	// whose authority has no value is omitted from the result unless
	// ref.Required is set, in which case the whole call fails with a
	// DataNotFoundError. Transport or authentication failures are
	// returned unchanged to the caller.
	GetSecrets(ctx context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error)
}

// logf resolves an adapter's configured logger.Logf to a usable function,
// falling back to the standard logger when the caller left it nil.
func logf(l logger.Logf) logger.Logf {
	if l == nil {
		return log.Printf
	}
	return l
}
