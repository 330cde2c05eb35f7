// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package vaulttest

import (
	"path/filepath"

	"tailscale.com/atomicfile"
)

// WriteFixtureFiles writes each name/content pair under dir, one file per
// secret, for use as a source.FilesSource fixture. Writes are atomic
// (write-to-temp-then-rename), the same guarantee client/setec's on-disk
// cache relied on, so a test exercising FilesSource never observes a
// partially written fixture file.
func WriteFixtureFiles(dir string, files map[string]string) error {
	for name, content := range files {
		if err := atomicfile.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			return err
		}
	}
	return nil
}
