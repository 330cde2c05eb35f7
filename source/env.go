// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"os"
	"strings"
	"time"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// EnvSource reads secret values from process environment variables. It
// exists primarily for local development and tests; production use is
// discouraged since environment variables are visible to the whole
// process and any of its children.
type EnvSource struct {
	Logf logger.Logf
}

var _ Source = EnvSource{}

func (EnvSource) Name() string { return "EnvSource" }

func (s EnvSource) GetSecrets(_ context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	log := logf(s.Logf)
	result := make(map[types.SecretRef]types.Secret, len(refs))

	for _, ref := range refs {
		varName := string(ref.Key.Name)
		if ref.Key.Version != "" {
			varName += "_V" + string(ref.Key.Version)
		}

		val, ok := os.LookupEnv(varName)
		if !ok {
			val, ok = os.LookupEnv(strings.ToUpper(varName))
		}
		if !ok {
			if ref.Required {
				return nil, vaulterr.DataNotFound("ENV_NOT_FOUND", "required secret not found in environment variable "+varName)
			}
			log("EnvSource: %s not set and not required, skipping", varName)
			continue
		}

		result[ref] = types.NewSecret(secretvalue.FromString(val), types.SecretMetadata{
			CachedAt: time.Now(),
			Key:      ref.Key,
		})
	}
	return result, nil
}
