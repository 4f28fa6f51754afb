// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tfctl/stepctl/internal/cacheutil"
	"github.com/tfctl/stepctl/internal/log"
	"github.com/tfctl/stepctl/internal/step"
)

// ErrUnsupportedFormat is returned when a dump is neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported dump format")

// Source is somewhere a record dump can be loaded from.
type Source interface {
	Load(ctx context.Context) (*step.File, error)
	String() string
}

type options struct {
	profile  string
	region   string
	client   S3API
	cache    cacheutil.Store
	validate bool
}

// Option customizes NewSource.
type Option func(*options)

// WithProfile sets the shared AWS config profile used for s3:// sources.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion overrides the AWS region used for s3:// sources.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithS3Client supplies the client used for s3:// sources. When unset, one is
// built from the shared AWS config on first use.
func WithS3Client(client S3API) Option {
	return func(o *options) { o.client = client }
}

// WithCache sets the download cache. The default is cacheutil.Open().
func WithCache(store cacheutil.Store) Option {
	return func(o *options) { o.cache = store }
}

// WithValidation runs step.File.Validate after decoding. It is on by default.
func WithValidation(enabled bool) Option {
	return func(o *options) { o.validate = enabled }
}

// NewSource picks the Source implementation for spec. "s3://bucket/key" is
// read from S3, anything else is a local path.
func NewSource(ctx context.Context, spec string, opts ...Option) (Source, error) {
	o := options{cache: cacheutil.Open(), validate: true}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.HasPrefix(spec, "s3://") {
		s, err := newS3(spec, o)
		if err != nil {
			return nil, err
		}
		log.Debugf("source: s3 bucket=%s key=%s", s.Bucket, s.Key)
		return s, nil
	}

	if spec == "" {
		return nil, fmt.Errorf("empty source")
	}
	log.Debugf("source: local path=%s", spec)
	return &Local{Path: spec, validate: o.validate}, nil
}

// Load is shorthand for NewSource followed by Load.
func Load(ctx context.Context, spec string, opts ...Option) (*step.File, error) {
	src, err := NewSource(ctx, spec, opts...)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

// Decode parses a dump. The format follows the extension of name; for other
// extensions, data starting with '{' is JSON and anything else YAML. The
// header's FilePath is set to name.
func Decode(data []byte, name string) (*step.File, error) {
	var f step.File

	switch format(data, name) {
	case "json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to decode %s as json: %w", name, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to decode %s as yaml: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	if f.Header == nil {
		f.Header = &step.Header{}
	}
	f.Header.FilePath = name

	log.Debugf("decoded %s: parts=%d relations=%d", name, len(f.Parts), len(f.Relations))
	return &f, nil
}

func format(data []byte, name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return ""
	case trimmed[0] == '{':
		return "json"
	case trimmed[0] == '<' || trimmed[0] == '[':
		// XML and bare arrays are not dumps.
		return ""
	}
	return "yaml"
}

func decodeAndValidate(data []byte, name string, validate bool) (*step.File, error) {
	f, err := Decode(data, name)
	if err != nil {
		return nil, err
	}
	if validate {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("invalid dump %s: %w", name, err)
		}
	}
	return f, nil
}
