// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package s3_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/leseb/docchat/pkg/filestore"
	"github.com/leseb/docchat/pkg/filestore/filestoretest"
	fss3 "github.com/leseb/docchat/pkg/filestore/s3"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		location   string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{location: "s3://docs/reports/q1.pdf", wantBucket: "docs", wantKey: "reports/q1.pdf"},
		{location: "s3://docs/notes.txt", wantBucket: "docs", wantKey: "notes.txt"},
		{location: "S3://docs/Notes.txt", wantBucket: "docs", wantKey: "Notes.txt"},
		{location: "s3:/docs/notes.txt", wantErr: true},
		{location: "s3:", wantErr: true},
		{location: "s3://docs", wantErr: true},
		{location: "s3://docs/", wantErr: true},
		{location: "/tmp/notes.txt", wantErr: true},
	}
	for _, tt := range tests {
		bucket, key, err := fss3.ParseLocation(tt.location)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLocation(%q) error = %v, wantErr %v", tt.location, err, tt.wantErr)
			continue
		}
		if bucket != tt.wantBucket || key != tt.wantKey {
			t.Errorf("ParseLocation(%q) = (%q, %q), want (%q, %q)", tt.location, bucket, key, tt.wantBucket, tt.wantKey)
		}
	}
}

func TestS3Conformance(t *testing.T) {
	bucket := os.Getenv("DOCCHAT_S3_BUCKET")
	endpoint := os.Getenv("DOCCHAT_S3_ENDPOINT")
	if bucket == "" || endpoint == "" {
		t.Skip("Skipping S3 conformance tests: DOCCHAT_S3_BUCKET and DOCCHAT_S3_ENDPOINT must be set (e.g. with MinIO)")
	}

	region := os.Getenv("DOCCHAT_S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	filestoretest.RunConformanceTests(t, func(t *testing.T) (filestore.Source, filestoretest.Seeder) {
		store, err := fss3.New(ctx, fss3.Options{Region: region, Endpoint: endpoint})
		if err != nil {
			t.Fatalf("s3.New: %v", err)
		}
		prefix := "test-" + t.Name() + "/"
		return store, func(t *testing.T, name string, content []byte) string {
			_, err := client.PutObject(ctx, &s3.PutObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(prefix + name),
				Body:   bytes.NewReader(content),
			})
			if err != nil {
				t.Fatalf("put object: %v", err)
			}
			return "s3://" + bucket + "/" + prefix + name
		}
	}, "s3://"+bucket+"/absent/notes.txt")
}
