// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// MultiSource composes several named sub-sources, routing each incoming
// ref to the sub-source registered for its namespace. Because a ref's
// namespace is part of its VaultKey, results from different sub-sources
// can never collide: there is no last-writer-wins merge to reason about.
type MultiSource struct {
	bySubspace map[types.SecretNamespace]Source
}

var _ Source = (*MultiSource)(nil)

// NewMultiSource returns a MultiSource routing by namespace according to
// bySubspace. A ref whose namespace has no registered sub-source is
// treated as not found.
func NewMultiSource(bySubspace map[types.SecretNamespace]Source) *MultiSource {
	return &MultiSource{bySubspace: bySubspace}
}

func (m *MultiSource) Name() string {
	names := make([]string, 0, len(m.bySubspace))
	for _, s := range m.bySubspace {
		names = append(names, s.Name())
	}
	return strings.Join(names, ", ")
}

// GetSecrets fans out one GetSecrets call per distinct namespace present
// in refs, concurrently: each sub-source is typically a network call to a
// different backend (AWS, GCP, the environment, ...), so there is no
// reason to wait for the AWS sub-source to finish before starting the GCP
// one. The first sub-source error cancels the remaining in-flight calls
// and is returned; a cancellation propagates to every sub-source via ctx.
func (m *MultiSource) GetSecrets(ctx context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	byNamespace := make(map[types.SecretNamespace][]types.SecretRef)
	for _, ref := range refs {
		byNamespace[ref.Key.Namespace] = append(byNamespace[ref.Key.Namespace], ref)
	}

	var (
		mu     sync.Mutex
		result = make(map[types.SecretRef]types.Secret, len(refs))
	)
	g, gctx := errgroup.WithContext(ctx)
	for ns, nsRefs := range byNamespace {
		ns, nsRefs := ns, nsRefs
		sub, ok := m.bySubspace[ns]
		if !ok {
			if missingRequired(nsRefs) {
				return nil, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound,
					fmt.Sprintf("no sub-source registered for namespace %q", ns))
			}
			continue
		}

		g.Go(func() error {
			secrets, err := sub.GetSecrets(gctx, nsRefs)
			if err != nil {
				return err
			}
			mu.Lock()
			for ref, secret := range secrets {
				result[ref] = secret
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func missingRequired(refs []types.SecretRef) bool {
	for _, ref := range refs {
		if ref.Required {
			return true
		}
	}
	return false
}
