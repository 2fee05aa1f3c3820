// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package source opens the byte streams dicomdump reads from and writes to: local files, "-"
// for stdin/stdout, and s3://bucket/key objects.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const s3Scheme = "s3://"

// S3Config holds configuration for s3:// locations.
type S3Config struct {
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers (e.g. MinIO). Empty uses
	// the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not subdomain).
	UsePathStyle bool
}

// objectAPI is the part of the S3 client used here.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Opener resolves locations to readers and writers. The S3 client is created on first use.
type Opener struct {
	s3cfg  S3Config
	client objectAPI
	log    *zap.Logger
	stdin  io.Reader
	stdout io.Writer
}

// NewOpener returns an Opener using the AWS SDK default credential chain for s3:// locations.
func NewOpener(s3cfg S3Config, log *zap.Logger) *Opener {
	if log == nil {
		log = zap.NewNop()
	}
	return &Opener{s3cfg: s3cfg, log: log, stdin: os.Stdin, stdout: os.Stdout}
}

// IsS3 reports whether location names an S3 object.
func IsS3(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3(uri) {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, s3Scheme), "/", 2)
	if parts[0] == "" {
		return "", "", errors.New("s3 bucket is required")
	}
	if len(parts) < 2 || parts[1] == "" {
		return "", "", fmt.Errorf("s3 object key is required in %q", uri)
	}
	return parts[0], parts[1], nil
}

// Open returns a reader for location.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch {
	case location == "-":
		return io.NopCloser(o.stdin), nil
	case IsS3(location):
		return o.openS3(ctx, location)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

// Create returns a writer for location. S3 objects are uploaded when the writer is closed.
func (o *Opener) Create(ctx context.Context, location string) (io.WriteCloser, error) {
	switch {
	case location == "-":
		return nopWriteCloser{o.stdout}, nil
	case IsS3(location):
		bucket, key, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		client, err := o.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return &objectWriter{ctx: ctx, client: client, bucket: bucket, key: key, log: o.log}, nil
	}
	f, err := os.Create(location)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}

func (o *Opener) openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("getting s3://%s/%s: %w", bucket, key, err)
	}
	o.log.Debug("reading s3 object", zap.String("bucket", bucket), zap.String("key", key))
	return out.Body, nil
}

func (o *Opener) s3Client(ctx context.Context) (objectAPI, error) {
	if o.client != nil {
		return o.client, nil
	}

	var opts []func(*config.LoadOptions) error
	if o.s3cfg.Region != "" {
		opts = append(opts, config.WithRegion(o.s3cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if o.s3cfg.Endpoint != "" {
		endpoint := o.s3cfg.Endpoint
		s3Opts = append(s3Opts, func(opts *s3.Options) {
			opts.BaseEndpoint = &endpoint
		})
	}
	if o.s3cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(opts *s3.Options) {
			opts.UsePathStyle = true
		})
	}
	o.client = s3.NewFromConfig(awsConfig, s3Opts...)
	return o.client, nil
}

// objectWriter buffers an object and uploads it on Close.
type objectWriter struct {
	ctx    context.Context
	client objectAPI
	bucket string
	key    string
	log    *zap.Logger
	buf    bytes.Buffer
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	size := int64(w.buf.Len())
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        &w.bucket,
		Key:           &w.key,
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: &size,
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", w.bucket, w.key, err)
	}
	w.log.Debug("wrote s3 object", zap.String("bucket", w.bucket), zap.String("key", w.key), zap.Int64("bytes", size))
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
