// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tfctl/stepctl/internal/log"
	"github.com/tfctl/stepctl/internal/step"
)

// cacheBucket groups S3 downloads in the cache.
const cacheBucket = "s3"

// S3API is the subset of the S3 client used to fetch dumps.
type S3API interface {
	HeadObject(ctx context.Context, in *s3v2.HeadObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// S3 is a dump stored in S3, addressed as s3://bucket/key with an optional
// ?versionId=... query.
type S3 struct {
	Bucket    string
	Key       string
	VersionID string

	opts options
}

func newS3(spec string, o options) (*S3, error) {
	u, err := url.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid s3 source %q: %w", spec, err)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 source %q: want s3://bucket/key", spec)
	}

	return &S3{
		Bucket:    u.Host,
		Key:       key,
		VersionID: u.Query().Get("versionId"),
		opts:      o,
	}, nil
}

func (s *S3) String() string {
	out := "s3://" + s.Bucket + "/" + s.Key
	if s.VersionID != "" {
		out += "?versionId=" + s.VersionID
	}
	return out
}

// Load fetches the object, serving it from the cache when the object's etag
// (or pinned version) has been seen before.
func (s *S3) Load(ctx context.Context) (*step.File, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	cache := s.opts.cache
	cacheKey := ""
	if cache.Enabled() {
		cacheKey, err = s.cacheKey(ctx, client)
		if err != nil {
			return nil, err
		}
		if data, ok := cache.Get(cacheBucket, cacheKey); ok {
			return decodeAndValidate(data, s.Key, s.opts.validate)
		}
	}

	in := &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.Bucket),
		Key:    awsv2.String(s.Key),
	}
	if s.VersionID != "" {
		in.VersionId = awsv2.String(s.VersionID)
	}

	out, err := client.GetObject(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}
	log.Debugf("s3 fetched: %s bytes=%d", s, len(data))

	if cacheKey != "" {
		if err := cache.Put(cacheBucket, cacheKey, data); err != nil {
			log.WithError(err).Warn("failed to cache s3 object")
		}
	}

	return decodeAndValidate(data, s.Key, s.opts.validate)
}

// cacheKey is bucket/key@version for pinned versions, otherwise
// bucket/key@etag from a HEAD request.
func (s *S3) cacheKey(ctx context.Context, client S3API) (string, error) {
	base := s.Bucket + "/" + s.Key
	if s.VersionID != "" {
		return base + "@" + s.VersionID, nil
	}

	head, err := client.HeadObject(ctx, &s3v2.HeadObjectInput{
		Bucket: awsv2.String(s.Bucket),
		Key:    awsv2.String(s.Key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to head S3 object: %w", err)
	}
	return base + "@" + strings.Trim(awsv2.ToString(head.ETag), `"`), nil
}

func (s *S3) client(ctx context.Context) (S3API, error) {
	if s.opts.client != nil {
		return s.opts.client, nil
	}
	cfg, err := loadAWSConfig(ctx, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s.opts.client = s3v2.NewFromConfig(cfg)
	return s.opts.client, nil
}

// loadAWSConfig inherits the shell's AWS setup (AWS_PROFILE, shared config,
// env, IMDS) with optional profile and region overrides.
func loadAWSConfig(ctx context.Context, o options) (awsv2.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	log.Debugf("aws config: profile=%s region=%s", o.profile, o.region)

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

var _ Source = (*S3)(nil)
var _ Source = (*Local)(nil)
var _ S3API = (*s3v2.Client)(nil)
