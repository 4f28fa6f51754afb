// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tfctl/stepctl/internal/hlr"
	"github.com/tfctl/stepctl/internal/log"
)

// Aliases maps short attr names to their gjson path inside a row. Anything
// not listed is used as a path as-is; a leading '.' forces that.
var Aliases = map[string]string{
	"name":                "part.name",
	"type":                "part.type",
	"rep":                 "part.representation_type",
	"representation_type": "part.representation_type",
	"part_id":             "part.id",
	"label":               "relation.id",
	"relation":            "relation.name",
	"kind":                "relation.type",
	"step_id":             "relation.step_id",
}

var lengthSpec = regexp.MustCompile(`-?\d+`)

// Attr is one column of output: where to find the value in a row, what to
// call it and how to transform it.
type Attr struct {
	// gjson path of the value inside the row.
	Key string `yaml:"key" json:"Key"`
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool `yaml:"include" json:"Include"`
	// Name in json/yaml output and the column title for text output.
	OutputKey string `yaml:"outputKey" json:"OutputKey"`
	// Transformation spec to apply to the output value.
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

// Transform applies the attribute's transform spec to a value. Only string
// values are transformed; everything else passes through.
//
//	t  RFC3339 time to local time
//	T  RFC3339 time to a relative "3 hours ago"
//	d  short digest (for signatures)
//	u  upper case, l lower case (the later one wins)
//	N  truncate to N characters, -N elide the middle to N characters
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok {
		log.Tracef("non-string value: value=%v", value)
		return value
	}

	if strings.ContainsAny(a.TransformSpec, "tT") {
		result = transformTime(result, strings.Contains(a.TransformSpec, "T"))
	}

	if strings.Contains(a.TransformSpec, "d") && result != "" {
		result = hlr.Digest(result)
		log.Tracef("digest: result=%s", result)
	}

	// The later of the case flags wins so an attr's own spec overrides a
	// prepended global one: --attrs '*::U,name::l' is lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same rule for length: the last number wins.
	if match := lengthSpec.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		result = truncate(result, l)
	}

	return result
}

func transformTime(s string, relative bool) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	local := t.In(time.Now().Location())
	if relative {
		return humanize.Time(local)
	}
	return local.Format("2006-01-02T15:04:05MST")
}

// truncate cuts s to l runes. A negative l keeps both ends and joins them
// with "..".
func truncate(s string, l int) string {
	runes := []rune(s)
	abs := int(math.Abs(float64(l)))
	if abs == 0 || len(runes) <= abs {
		return s
	}
	if l > 0 {
		return string(runes[:l])
	}
	side := abs/2 - 1
	if side < 1 {
		return string(runes[:abs])
	}
	return string(runes[:side]) + ".." + string(runes[len(runes)-side:])
}

// AttrList is a collection of Attr used to shape output fields.
type AttrList []Attr

// Set parses a comma separated --attrs value and merges it into the list.
// Each spec is key[:outputKey[:transform]]. A leading '!' keeps the attr for
// filtering and sorting but hides it. The key '*' carries a transform applied
// to every attr.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

	specs := strings.Split(value, ",")
	log.Debugf("specs split: specs=%v", specs)
specloop:
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		fields := strings.Split(spec, ":")
		if len(fields) > transformIdx+1 {
			return fmt.Errorf("invalid attr spec %q: want key[:output[:transform]]", spec)
		}

		attr := Attr{Include: true}
		name := strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(name, "!") {
			attr.Include = false
			name = name[1:]
		}
		if name == "" {
			return fmt.Errorf("invalid attr spec %q: empty key", spec)
		}
		if name == "*" {
			attr.Include = false
		}

		attr.Key = resolveKey(name)

		// Default output key is the name as typed, minus any path.
		segments := strings.Split(strings.TrimPrefix(name, "."), ".")
		attr.OutputKey = segments[len(segments)-1]
		if len(fields) > outputIdx && strings.TrimSpace(fields[outputIdx]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}
		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}
		log.Tracef("attr parsed: key=%s output=%s include=%v spec=%s",
			attr.Key, attr.OutputKey, attr.Include, attr.TransformSpec)

		// A default attr, or one given twice, is updated in place.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == name {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

func resolveKey(name string) string {
	if strings.HasPrefix(name, ".") {
		return name[1:]
	}
	if path, ok := Aliases[name]; ok {
		return path
	}
	return name
}

// SetGlobalTransformSpec prepends the '*' attr's transform to every attr.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for _, attr := range *a {
		if attr.Key == "*" {
			spec = attr.TransformSpec
			break
		}
	}
	if spec == "" {
		return nil
	}
	log.Debugf("global spec: spec=%s", spec)

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	return nil
}

// Included returns the attrs that are shown.
func (a AttrList) Included() AttrList {
	out := make(AttrList, 0, len(a))
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}

// String renders the list in --attrs form.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Type returns the flag type for use with the flag.Value interface.
func (a *AttrList) Type() string { return "list" }
