// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"fmt"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// GCPSecretManagerSourceOptions configures GCPSecretManagerSource.
type GCPSecretManagerSourceOptions struct {
	// GoogleProjectID is the GCP project secrets are looked up in.
	GoogleProjectID string

	// ReadMetadata, if true, issues a second RPC (GetSecret) per secret
	// to populate SecretMetadata's labels and creation time.
	ReadMetadata bool
}

// GCPSecretManagerSource fetches secret values from Google Cloud Secret
// Manager.
type GCPSecretManagerSource struct {
	client  *secretmanager.Client
	options GCPSecretManagerSourceOptions
	logf    logger.Logf
}

var _ Source = (*GCPSecretManagerSource)(nil)

// NewGCPSecretManagerSource constructs a GCPSecretManagerSource using
// application-default credentials.
func NewGCPSecretManagerSource(ctx context.Context, opts GCPSecretManagerSourceOptions, logf logger.Logf) (*GCPSecretManagerSource, error) {
	if opts.GoogleProjectID == "" {
		return nil, vaulterr.InvalidParameters("google_project_id", "must not be empty")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, vaulterr.Network("constructing GCP Secret Manager client", err)
	}
	return &GCPSecretManagerSource{client: client, options: opts, logf: logf}, nil
}

func (*GCPSecretManagerSource) Name() string { return "GCPSecretManagerSource" }

func (s *GCPSecretManagerSource) GetSecrets(ctx context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	log := logf(s.logf)
	result := make(map[types.SecretRef]types.Secret, len(refs))

	for _, ref := range refs {
		stage := string(ref.Key.Version)
		if stage == "" {
			stage = "latest"
		}
		name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", s.options.GoogleProjectID, ref.Key.Name, stage)

		resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			if status.Code(err) == codes.NotFound {
				if ref.Required {
					return nil, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound,
						fmt.Sprintf("required secret %q not found in GCP Secret Manager", ref.Key.Name))
				}
				log("GCPSecretManagerSource: %s not found and not required, skipping", ref.Key)
				continue
			}
			return nil, classifyGRPCError("accessing secret version", err)
		}

		metadata := types.SecretMetadata{CachedAt: time.Now(), Key: ref.Key}
		if s.options.ReadMetadata {
			if err := s.populateMetadata(ctx, ref, &metadata); err != nil {
				return nil, err
			}
		}

		result[ref] = types.NewSecret(secretvalue.New(resp.GetPayload().GetData()), metadata)
	}
	return result, nil
}

func (s *GCPSecretManagerSource) populateMetadata(ctx context.Context, ref types.SecretRef, metadata *types.SecretMetadata) error {
	name := fmt.Sprintf("projects/%s/secrets/%s", s.options.GoogleProjectID, ref.Key.Name)
	secret, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: name})
	if err != nil {
		return classifyGRPCError("describing secret", err)
	}
	if secret.GetLabels() != nil {
		metadata.Labels = secret.GetLabels()
	}
	if ct := secret.GetCreateTime(); ct != nil {
		metadata.CreatedAt = ct.AsTime()
	}
	return nil
}

// classifyGRPCError maps a gRPC status error to the vaulterr kind the
// spec requires: aborted, cancelled, unavailable, and resource-exhausted
// are transient NetworkErrors; everything else is a SecretsSourceError
// carrying the root cause.
func classifyGRPCError(action string, err error) error {
	switch status.Code(err) {
	case codes.Aborted, codes.Canceled, codes.Unavailable, codes.ResourceExhausted:
		return vaulterr.Network(action, err)
	default:
		return vaulterr.SecretsSource(action, err)
	}
}
