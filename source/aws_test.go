// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

type fakeAWSClient struct {
	values map[string]string
}

func (f *fakeAWSClient) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	v, ok := f.values[aws.ToString(in.SecretId)]
	if !ok {
		return nil, &smtypes.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func (f *fakeAWSClient) DescribeSecret(_ context.Context, in *secretsmanager.DescribeSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	return &secretsmanager.DescribeSecretOutput{Description: aws.String("test secret")}, nil
}

func TestAWSSecretManagerSource_Found(t *testing.T) {
	client := &fakeAWSClient{values: map[string]string{"db-password": "s3cret"}}
	s := NewAWSSecretManagerSourceForTest(client, AWSSecretManagerSourceOptions{})
	ref := types.NewSecretRef(types.NewVaultKey("db-password"))

	got, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if err != nil {
		t.Fatalf("GetSecrets: %v", err)
	}
	secret, ok := got[ref]
	if !ok {
		t.Fatal("secret not found")
	}
	defer secret.Close()
	str, _ := secret.Value.AsString()
	if str != "s3cret" {
		t.Errorf("value = %q, want s3cret", str)
	}
}

func TestAWSSecretManagerSource_MissingRequired(t *testing.T) {
	client := &fakeAWSClient{values: map[string]string{}}
	s := NewAWSSecretManagerSourceForTest(client, AWSSecretManagerSourceOptions{})
	ref := types.NewSecretRef(types.NewVaultKey("absent")).WithRequired()

	_, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if !errors.Is(err, vaulterr.ErrDataNotFound) {
		t.Errorf("err = %v, want DataNotFoundError", err)
	}
}

func TestAWSSecretManagerSource_ReadMetadata(t *testing.T) {
	client := &fakeAWSClient{values: map[string]string{"k": "v"}}
	s := NewAWSSecretManagerSourceForTest(client, AWSSecretManagerSourceOptions{ReadMetadata: true})
	ref := types.NewSecretRef(types.NewVaultKey("k"))

	got, err := s.GetSecrets(context.Background(), []types.SecretRef{ref})
	if err != nil {
		t.Fatalf("GetSecrets: %v", err)
	}
	if got[ref].Metadata.Description != "test secret" {
		t.Errorf("Description = %q, want %q", got[ref].Metadata.Description, "test secret")
	}
}
