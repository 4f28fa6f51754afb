// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package source reads the record dumps produced by the external STEP reader.
// A dump is a JSON or YAML document holding the header, parts and relations of
// one exchange file. Dumps come from the local file system or from S3; S3
// downloads go through the local cache.
package source
