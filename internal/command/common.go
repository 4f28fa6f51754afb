// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/attrs"
	"github.com/tfctl/stepctl/internal/cacheutil"
	"github.com/tfctl/stepctl/internal/hlr"
	"github.com/tfctl/stepctl/internal/log"
	"github.com/tfctl/stepctl/internal/meta"
	"github.com/tfctl/stepctl/internal/output"
	"github.com/tfctl/stepctl/internal/revspec"
	"github.com/tfctl/stepctl/internal/source"
	"github.com/tfctl/stepctl/internal/util"
)

// stdout is where command output goes. Tests swap it.
var stdout io.Writer = os.Stdout

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	if cmd.Bool("local") {
		for i := range al {
			al[i].TransformSpec += "t"
		}
	}
	err = al.SetGlobalTransformSpec()
	return
}

// DumpSchemaIfRequested writes the row schema for the provided type to stdout
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitJSONSlice marshals rows to JSON and passes them to the common output
// routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command, w io.Writer,
	postProcess func([]map[string]interface{}) error) error {

	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(results); err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	output.SliceDiceSpit(raw, al, cmd, "", w, postProcess)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr stepctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "stepctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// sourceOptions maps the source flags onto source options.
func sourceOptions(cmd *cli.Command) []source.Option {
	cache := GetMeta(cmd).Cache
	if cmd.Bool("no-cache") {
		cache = cacheutil.Store{}
	}
	return []source.Option{
		source.WithProfile(cmd.String("profile")),
		source.WithRegion(cmd.String("region")),
		source.WithCache(cache),
	}
}

// sourceFor resolves one positional argument. "DIR" or "DIR::REV" picks a
// revision from the dumps in DIR, newest by default; anything else is a file
// path or s3:// URL.
func sourceFor(ctx context.Context, cmd *cli.Command, spec string) (source.Source, error) {
	if dir, rev, err := util.ParseDirSpec(spec); err == nil {
		revs, err := source.Revisions(dir)
		if err != nil {
			return nil, err
		}
		if rev == "" {
			rev = "REV~0"
		}
		picked, err := revspec.Resolve(revs, rev)
		if err != nil {
			return nil, err
		}
		log.Debugf("resolved %s to %s", spec, picked[0].Path)
		spec = picked[0].Path
	}

	return source.NewSource(ctx, spec, sourceOptions(cmd)...)
}

// treeOptions maps --fields and --root onto builder options.
func treeOptions(cmd *cli.Command) ([]hlr.Option, error) {
	keyFn, err := hlr.KeyFuncByName(cmd.String("fields"))
	if err != nil {
		return nil, err
	}
	return []hlr.Option{
		hlr.WithKeyFunc(keyFn),
		hlr.WithRootName(cmd.String("root")),
	}, nil
}

// chopSeparators names the row values chopPrefix works on and the separator
// of their segments.
var chopSeparators = map[string]string{
	"path":             ".",
	"signature":        hlr.Separator,
	"parent_signature": hlr.Separator,
	"from":             hlr.Separator,
}

// chopPrefix removes leading segments that are identical across all rows
// from path and signature values. Starting from the left, it removes each
// segment that matches in all rows and stops at the first position where
// they differ, keeping at least one segment. Removed segments are replaced
// with "..".
func chopPrefix(dataset []map[string]interface{}) {
	if len(dataset) == 0 {
		return
	}

	type segmentedValue struct {
		entryIdx int
		segments []string
	}

	keyValues := make(map[string][]segmentedValue)

	for entryIdx, entry := range dataset {
		for key, val := range entry {
			sep, ok := chopSeparators[key]
			if !ok {
				continue
			}
			if str, ok := val.(string); ok && str != "" {
				keyValues[key] = append(keyValues[key], segmentedValue{entryIdx: entryIdx, segments: strings.Split(str, sep)})
			}
		}
	}

	for key, values := range keyValues {
		sep := chopSeparators[key]

		var commonCount int
		for segIdx := 0; segIdx < len(values[0].segments); segIdx++ {
			expectedSeg := values[0].segments[segIdx]

			allMatch := true
			for _, val := range values {
				if segIdx >= len(val.segments) || val.segments[segIdx] != expectedSeg {
					allMatch = false
					break
				}
			}
			if !allMatch {
				break
			}

			commonCount++
		}

		// Never chop a value down to nothing.
		minSegments := len(values[0].segments)
		for _, val := range values {
			minSegments = min(minSegments, len(val.segments))
		}
		commonCount = min(commonCount, minSegments-1)
		if commonCount < 1 {
			continue
		}

		for _, val := range values {
			dataset[val.entryIdx][key] = ".." + strings.Join(val.segments[commonCount:], sep)
		}
	}
}
