// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package hlr

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"lukechampine.com/blake3"

	"github.com/tfctl/stepctl/internal/step"
)

// Separator joins the segments of a signature.
const Separator = "/"

// segmentEscaper escapes the characters that carry structure inside a
// signature so that no key, whatever KeyFunc produced it, can forge a path
// or an occurrence suffix.
var segmentEscaper = strings.NewReplacer(
	"%", "%25",
	"/", "%2F",
	"#", "%23",
)

// fieldEscaper escapes the delimiters the built-in keys place around their
// fields.
var fieldEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
)

// KeyFunc computes the equality key of one part occurrence. r is nil for a
// root occurrence. The key must not depend on Part.ID or Relation.RawID.
type KeyFunc func(p step.Part, r *step.Relation) string

// NameKey keys an occurrence by part name only.
func NameKey(p step.Part, _ *step.Relation) string {
	return fieldEscaper.Replace(p.Name)
}

// NameRepKey keys an occurrence by part name and representation kind, e.g.
// "Spider[Shape_Representation]". This is the default.
func NameRepKey(p step.Part, r *step.Relation) string {
	return NameKey(p, r) + "[" + fieldEscaper.Replace(p.RepresentationType) + "]"
}

// NameRepKindKey extends NameRepKey with the kind of the relation that
// attaches the occurrence to its parent, e.g. "Bolt[Shape_Representation]<NAUO>".
func NameRepKindKey(p step.Part, r *step.Relation) string {
	kind := ""
	if r != nil {
		kind = r.Type
	}
	return NameRepKey(p, r) + "<" + fieldEscaper.Replace(kind) + ">"
}

var keyFuncs = map[string]KeyFunc{
	"name":          NameKey,
	"name+rep":      NameRepKey,
	"name+rep+kind": NameRepKindKey,
}

// KeyFuncByName resolves a signature.fields setting. An empty name selects
// NameRepKey.
func KeyFuncByName(name string) (KeyFunc, error) {
	if name == "" {
		return NameRepKey, nil
	}
	if fn, ok := keyFuncs[strings.ToLower(strings.TrimSpace(name))]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown signature fields %q, must be one of %v", name, KeyFuncNames())
}

// KeyFuncNames lists the accepted signature.fields settings.
func KeyFuncNames() []string {
	names := make([]string, 0, len(keyFuncs))
	for k := range keyFuncs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Signature appends the segment for key to parentSignature. The key is
// escaped first. An occurrence above 1 is appended as "#n".
func Signature(parentSignature string, key string, occurrence int) string {
	segment := segmentEscaper.Replace(key)
	if occurrence > 1 {
		segment += "#" + strconv.Itoa(occurrence)
	}
	if parentSignature == "" {
		return segment
	}
	return parentSignature + Separator + segment
}

// Digest returns a short, stable blake3 digest of a signature for compact
// display.
func Digest(signature string) string {
	sum := blake3.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:6])
}
