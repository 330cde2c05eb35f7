// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// AWSSecretManagerSourceOptions configures AWSSecretManagerSource.
type AWSSecretManagerSourceOptions struct {
	// AccountID scopes lookups to a specific AWS account, for
	// diagnostics; it is not sent on the wire by this adapter.
	AccountID string

	// Region overrides the region resolved from the ambient AWS config.
	Region string

	// ReadMetadata, if true, issues a second RPC (DescribeSecret) per
	// secret to populate SecretMetadata's description and timestamps.
	ReadMetadata bool
}

// awsSecretsManagerAPI is the subset of *secretsmanager.Client this
// adapter calls, narrowed for testability.
type awsSecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	DescribeSecret(ctx context.Context, in *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
}

// AWSSecretManagerSource fetches secret values from AWS Secrets Manager.
type AWSSecretManagerSource struct {
	client  awsSecretsManagerAPI
	options AWSSecretManagerSourceOptions
	logf    logger.Logf
}

var _ Source = (*AWSSecretManagerSource)(nil)

// NewAWSSecretManagerSource constructs an AWSSecretManagerSource using
// the ambient AWS credential chain.
func NewAWSSecretManagerSource(ctx context.Context, opts AWSSecretManagerSourceOptions, logf logger.Logf) (*AWSSecretManagerSource, error) {
	var cfgOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, vaulterr.InvalidParameters("region", "unable to load AWS config: "+err.Error())
	}
	return &AWSSecretManagerSource{
		client:  secretsmanager.NewFromConfig(cfg),
		options: opts,
		logf:    logf,
	}, nil
}

func (*AWSSecretManagerSource) Name() string { return "AWSSecretManagerSource" }

func (s *AWSSecretManagerSource) GetSecrets(ctx context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	log := logf(s.logf)
	result := make(map[types.SecretRef]types.Secret, len(refs))

	for _, ref := range refs {
		in := &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(string(ref.Key.Name)),
		}
		if ref.Key.Version != "" {
			in.VersionStage = aws.String(string(ref.Key.Version))
		}

		out, err := s.client.GetSecretValue(ctx, in)
		if err != nil {
			if isAWSNotFound(err) {
				if ref.Required {
					return nil, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound,
						fmt.Sprintf("required secret %q not found in AWS Secrets Manager", ref.Key.Name))
				}
				log("AWSSecretManagerSource: %s not found and not required, skipping", ref.Key)
				continue
			}
			return nil, vaulterr.Network("fetching secret from AWS Secrets Manager", err)
		}

		var raw []byte
		if out.SecretString != nil {
			raw = []byte(*out.SecretString)
		} else {
			raw = out.SecretBinary
		}

		metadata := types.SecretMetadata{CachedAt: time.Now(), Key: ref.Key}
		if s.options.ReadMetadata {
			if err := s.populateMetadata(ctx, ref, &metadata); err != nil {
				return nil, err
			}
		}

		result[ref] = types.NewSecret(secretvalue.New(raw), metadata)
	}
	return result, nil
}

func (s *AWSSecretManagerSource) populateMetadata(ctx context.Context, ref types.SecretRef, metadata *types.SecretMetadata) error {
	desc, err := s.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(string(ref.Key.Name)),
	})
	if err != nil {
		return vaulterr.Network("describing secret in AWS Secrets Manager", err)
	}
	if desc.Description != nil {
		metadata.Description = *desc.Description
	}
	if desc.CreatedDate != nil {
		metadata.CreatedAt = *desc.CreatedDate
	}
	if desc.LastChangedDate != nil {
		metadata.UpdatedAt = *desc.LastChangedDate
	}
	return nil
}

func isAWSNotFound(err error) bool {
	var nf *smtypes.ResourceNotFoundException
	return errors.As(err, &nf)
}
