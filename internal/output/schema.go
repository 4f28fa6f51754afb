// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/apex/log"

	"github.com/tfctl/stepctl/internal/attrs"
)

// schemaTag is one attribute path discovered from a row type's json tags.
type schemaTag struct {
	Name string
	Type string
}

func (t schemaTag) print() string {
	if t.Type == "" {
		return t.Name
	}
	return t.Name + "\t" + t.Type
}

// maxSchemaDepth limits how far nested structs are walked.
const maxSchemaDepth = 1

var textMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// NewTag builds a schemaTag from a json struct tag. h is the holder path of
// the enclosing struct. Fields tagged "-" or without a name yield an empty
// tag.
func NewTag(h string, s string, typ reflect.Type) schemaTag {
	name := strings.Split(s, ",")[0]
	if name == "" || name == "-" {
		return schemaTag{}
	}
	if h != "" {
		name = h + "." + name
	}
	return schemaTag{Name: name, Type: typeName(typ)}
}

func typeName(typ reflect.Type) string {
	if typ == nil {
		return ""
	}
	if typ.Implements(textMarshaler) {
		return "string"
	}
	switch typ.Kind() {
	case reflect.Ptr:
		return typeName(typ.Elem())
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return typ.Kind().String()
	}
}

// DumpSchema writes the attribute paths of a row type, sorted, followed by
// the attr aliases. If w is nil, os.Stdout is used.
func DumpSchema(prefix string, typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w,
		`Row attributes available to the --attrs, --filter and --sort flags.
Nested values are addressed with dots, e.g. part.name.`)
	fmt.Fprintln(w, "")

	tags := dumpSchemaWalker(prefix, typ, 0)
	if len(tags) == 0 {
		log.Debugf("No tags found for type: %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, tag := range tags {
		fmt.Fprintln(tw, tag.print())
	}
	_ = tw.Flush()

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Aliases:")
	names := make([]string, 0, len(attrs.Aliases))
	for name := range attrs.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, attrs.Aliases[name])
	}
	_ = tw.Flush()
}

// dumpSchemaWalker walks a struct type collecting json tagged fields.
// Embedded structs without a tag are flattened into their holder.
func dumpSchemaWalker(holder string, typ reflect.Type, depth int) []schemaTag {
	tags := make([]schemaTag, 0)

	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return tags
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		log.Debugf("field: %s, type: %s in %s", field.Name, field.Type, field.PkgPath)

		tagValue, ok := field.Tag.Lookup("json")
		if field.Anonymous && !ok {
			tags = append(tags, dumpSchemaWalker(holder, field.Type, depth)...)
			continue
		}
		if !ok || !field.IsExported() {
			continue
		}

		tag := NewTag(holder, tagValue, field.Type)
		if tag.Name == "" {
			continue
		}
		tags = append(tags, tag)

		if depth < maxSchemaDepth && tag.Type == "object" {
			tags = append(tags, dumpSchemaWalker(tag.Name, field.Type, depth+1)...)
		}
	}

	return tags
}
