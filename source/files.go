// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// FilesSourceOptions configures FilesSource.
type FilesSourceOptions struct {
	// RootPath is the directory secrets are read from. If empty, paths
	// are resolved relative to the process's working directory.
	RootPath string
}

// FilesSource reads secret values from files on disk, one file per
// secret: <root>/<name> or <root>/<name>_v<version>.
type FilesSource struct {
	Options FilesSourceOptions
	Logf    logger.Logf
}

var _ Source = FilesSource{}

func (FilesSource) Name() string { return "FilesSource" }

func (s FilesSource) GetSecrets(_ context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	log := logf(s.Logf)
	result := make(map[types.SecretRef]types.Secret, len(refs))

	for _, ref := range refs {
		fileName := string(ref.Key.Name)
		if ref.Key.Version != "" {
			fileName += "_v" + string(ref.Key.Version)
		}
		path := fileName
		if s.Options.RootPath != "" {
			path = filepath.Join(s.Options.RootPath, fileName)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			if ref.Required {
				return nil, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound,
					"required secret file not available at "+path+": "+err.Error())
			}
			log("FilesSource: %s not available and not required, skipping: %v", path, err)
			continue
		}

		result[ref] = types.NewSecret(secretvalue.New(content), types.SecretMetadata{
			CachedAt: time.Now(),
			Key:      ref.Key,
		})
	}
	return result, nil
}
