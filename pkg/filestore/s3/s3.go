// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/leseb/docchat/pkg/filestore"
)

func init() {
	filestore.Providers.Register("s3", func(ctx context.Context, params map[string]string) (filestore.Source, error) {
		return New(ctx, Options{
			Region:      params["s3_region"],
			Endpoint:    params["s3_endpoint"],
			MaxFileSize: filestore.MaxFileSize(params),
		})
	})
}

// compile-time check
var _ filestore.Source = (*Store)(nil)

// Options configures the S3 source.
type Options struct {
	Region      string // e.g. "us-east-1"
	Endpoint    string // custom endpoint for MinIO compatibility
	MaxFileSize int64
}

// Store reads documents addressed as s3://<bucket>/<key> from S3 (or MinIO).
type Store struct {
	client  *s3.Client
	maxSize int64
}

// New creates an S3-backed source using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = filestore.DefaultMaxFileSize
	}

	return &Store{
		client:  s3.NewFromConfig(cfg, s3Opts...),
		maxSize: maxSize,
	}, nil
}

// ParseLocation splits s3://bucket/key into its bucket and key. The scheme
// is matched case-insensitively.
func ParseLocation(location string) (bucket, key string, err error) {
	const scheme = "s3://"
	if len(location) < len(scheme) || !strings.EqualFold(location[:len(scheme)], scheme) {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	bucket, key, _ = strings.Cut(location[len(scheme):], "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location %q must be s3://<bucket>/<key>", location)
	}
	return bucket, key, nil
}

// Open downloads the object at location.
func (s *Store) Open(ctx context.Context, location string) (*filestore.Document, error) {
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", location, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("get object %s: %w", location, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > s.maxSize {
		return nil, fmt.Errorf("%s: %d bytes (max %d): %w", location, *out.ContentLength, s.maxSize, filestore.ErrFileTooLarge)
	}

	content, err := io.ReadAll(io.LimitReader(out.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", location, err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, fmt.Errorf("%s: exceeds %d bytes: %w", location, s.maxSize, filestore.ErrFileTooLarge)
	}

	return &filestore.Document{
		Name:     filestore.BaseName(key),
		Location: location,
		Content:  content,
	}, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close(_ context.Context) error {
	return nil
}
