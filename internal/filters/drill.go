// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var drillSegment = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(\[(\d+|\*)?\])?$`)

// Drill follows a dot path through a JSON row. A segment may carry an array
// index, "anomalies[1]"; a one-element array is unwrapped without one and a
// longer array is returned whole. Malformed paths and out of range indexes
// yield an empty result.
func Drill(row string, path string) gjson.Result {
	current := gjson.Parse(row)
	if path == "" {
		return gjson.Result{}
	}

	for _, seg := range strings.Split(path, ".") {
		m := drillSegment.FindStringSubmatch(seg)
		if m == nil {
			return gjson.Result{}
		}

		index := -1
		if m[3] != "" && m[3] != "*" {
			index, _ = strconv.Atoi(m[3])
		}

		val := current.Get(m[1])
		if val.IsArray() {
			arr := val.Array()
			switch {
			case index == -1:
				if len(arr) == 1 {
					val = arr[0]
				}
			case index < len(arr):
				val = arr[index]
			default:
				return gjson.Result{}
			}
		}
		current = val
	}

	return current
}
