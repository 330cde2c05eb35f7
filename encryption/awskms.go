// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package encryption

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/tink-crypto/tink-go-awskms/integration/awskms"
	"github.com/tink-crypto/tink-go/v2/tink"
)

// AWSKEKOptions configures the AWS KMS-backed key-encryption key used by
// KMSEnvelope.
type AWSKEKOptions struct {
	// KeyARN is the ARN of the customer master key in AWS KMS that wraps
	// this vault's DEK.
	KeyARN string
	// Region overrides the region resolved from the ambient AWS config,
	// if set.
	Region string
}

// NewAWSKEK constructs a Tink AEAD primitive backed by the AWS KMS key
// named by opts.KeyARN. The ambient AWS credential chain (environment,
// shared config, EC2/ECS metadata) is used to authenticate; callers that
// need an explicit credential source should configure it through the
// standard AWS environment/config mechanisms before calling this
// function.
func NewAWSKEK(ctx context.Context, opts AWSKEKOptions) (tink.AEAD, error) {
	if opts.KeyARN == "" {
		return nil, fmt.Errorf("encryption: AWSKEKOptions.KeyARN must not be empty")
	}

	var cfgOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client, err := awskms.NewClientWithOptions(opts.KeyARN, awskms.WithAWSConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("constructing AWS KMS client: %w", err)
	}
	kek, err := client.GetAEAD(opts.KeyARN)
	if err != nil {
		return nil, fmt.Errorf("resolving AWS KMS key %q: %w", opts.KeyARN, err)
	}
	return kek, nil
}

