// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

// NewAWSSecretManagerSourceForTest constructs an AWSSecretManagerSource
// around a caller-provided fake client, bypassing the ambient AWS
// credential chain NewAWSSecretManagerSource uses. It exists only for
// this package's own tests.
func NewAWSSecretManagerSourceForTest(client awsSecretsManagerAPI, opts AWSSecretManagerSourceOptions) *AWSSecretManagerSource {
	return &AWSSecretManagerSource{client: client, options: opts}
}
