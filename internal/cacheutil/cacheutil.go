// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lukechampine.com/blake3"

	"github.com/tfctl/stepctl/internal/log"
)

// Store is an on-disk, content-addressed cache rooted at a base directory.
// Entries are grouped into buckets (one subdirectory each) and named by the
// blake3 digest of their clear-text key. The zero value is a disabled store.
type Store struct {
	base    string
	enabled bool
}

// Dir resolves the base cache directory.
// Precedence:
//  1. STEPCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/stepctl
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("STEPCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "stepctl"), true
	}
	return "", false
}

// Enabled returns true unless STEPCTL_CACHE is "0" or "false".
func Enabled() bool {
	v := os.Getenv("STEPCTL_CACHE")
	return v != "0" && v != "false"
}

// Open returns a Store configured from the environment. The directory is not
// created until the first Put.
func Open() Store {
	base, ok := Dir()
	return Store{base: base, enabled: ok && Enabled()}
}

// At returns an enabled Store rooted at base.
func At(base string) Store {
	return Store{base: base, enabled: base != ""}
}

// Enabled reports whether reads and writes reach the disk.
func (s Store) Enabled() bool { return s.enabled }

// Base returns the root directory, or "" for a disabled store.
func (s Store) Base() string {
	if !s.enabled {
		return ""
	}
	return s.base
}

// Path returns where the entry for key lives in bucket.
func (s Store) Path(bucket, key string) string {
	return filepath.Join(s.base, bucket, EncodeKey(key))
}

// Get returns the cached bytes for key, if present.
func (s Store) Get(bucket, key string) ([]byte, bool) {
	if !s.enabled {
		return nil, false
	}
	b, err := os.ReadFile(s.Path(bucket, key))
	if err != nil {
		return nil, false
	}
	log.Debugf("cache hit: bucket=%s key=%s", bucket, key)
	return b, true
}

// Put stores data for key in bucket. The write goes through a temporary file
// so concurrent readers never see a partial entry.
func (s Store) Put(bucket, key string, data []byte) error {
	if !s.enabled {
		return nil
	}

	dir := filepath.Join(s.base, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(bucket, key)); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	log.Debugf("cache write: bucket=%s key=%s bytes=%d", bucket, key, len(data))
	return nil
}

// Purge removes entries older than maxAge and returns how many went away.
// A non-positive maxAge is a no-op.
func (s Store) Purge(maxAge time.Duration) (int, error) {
	if maxAge <= 0 || s.base == "" {
		log.Debug("cache purge disabled")
		return 0, nil
	}

	removed := 0
	err := filepath.Walk(s.base, func(path string, info os.FileInfo, walkErr error) error {
		// Entries can vanish underneath us when two runs share a cache.
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if info == nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) <= maxAge {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}

	log.Debugf("cache purged: removed=%d", removed)
	return removed, nil
}

// EncodeKey returns the hex blake3-256 digest used as an entry's file name.
func EncodeKey(key string) string {
	sum := blake3.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
