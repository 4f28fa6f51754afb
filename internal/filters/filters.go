// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/tfctl/stepctl/internal/attrs"
	"github.com/tfctl/stepctl/internal/naming"
)

// DerivedKey is the filter key that tests whether a row's relation label was
// derived from its part name by the CAD application.
const DerivedKey = "derived"

// filterRegex splits a filter into key, optional negated operator and target.
// Operators are one of = ^ ~ < > @ /. Examples: "name", "name=Spider",
// "class!=both", "depth<2".
var filterRegex = regexp.MustCompile(`^([^!=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is one parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter spec. Entries are separated by ',' or by
// STEPCTL_FILTER_DELIM when set. Entries without a key are skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv("STEPCTL_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Error("invalid filter: " + filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		if key == "" {
			log.Error("invalid filter: empty key in " + filterSpec)
			continue
		}

		operand := parts[2]
		negate := strings.HasPrefix(operand, "!")
		operand = strings.TrimPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   parts[3],
		})
	}

	return filters
}

// FilterDataset keeps the rows of candidates that pass every filter in spec
// and projects each onto attrs, keyed by output key. Values are not
// transformed here.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc
	var filtered []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		row := make(map[string]interface{}, len(attrs))
		for _, attr := range attrs {
			row[attr.OutputKey] = Drill(candidate.Raw, attr.Key).Value()
		}
		filtered = append(filtered, row)
	}

	return filtered
}

// applyFilters reports whether candidate passes every filter. A filter key
// is looked up as an attr output key first, then as an alias, then used as a
// path.
func applyFilters(candidate gjson.Result, list attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		if filter.Key == DerivedKey {
			if !checkDerived(candidate, filter) {
				return false
			}
			continue
		}

		result := Drill(candidate.Raw, filterPath(filter.Key, list))
		if !result.Exists() || result.Type == gjson.Null {
			// A missing value only satisfies a negated filter.
			if filter.Negate {
				continue
			}
			return false
		}

		value := result.Value()
		ok := true
		if v, isStr := value.(string); isStr {
			ok = checkStringOperand(v, filter)
		} else if v, isBool := value.(bool); isBool {
			ok = checkStringOperand(strconv.FormatBool(v), filter)
		} else if num, isNum := toFloat64(value); isNum {
			ok = checkNumericOperand(num, filter)
		} else if filter.Operand == "@" {
			ok = checkContainsOperand(value, filter)
		} else if filter.Operand == "" {
			ok = !filter.Negate
		}

		if !ok {
			return false
		}
	}

	return true
}

func filterPath(key string, list attrs.AttrList) string {
	for _, attr := range list {
		if attr.OutputKey == key {
			return attr.Key
		}
	}
	if path, ok := attrs.Aliases[key]; ok {
		return path
	}
	return strings.TrimPrefix(key, ".")
}

// checkDerived handles the derived key. "derived" and "derived=true" keep
// rows whose relation label is the CAD default for the part name,
// "derived=false" keeps hand-named occurrences. Roots have no label and never
// count as derived.
func checkDerived(candidate gjson.Result, filter Filter) bool {
	part := Drill(candidate.Raw, "part.name").String()
	label := Drill(candidate.Raw, "relation.id").String()

	found := naming.IsDerivedLabel(part, label)

	want := filter.Value == "" || filter.Value == "true"
	return (found == want) != filter.Negate
}

// checkContainsOperand evaluates '@' against slice or map values.
func checkContainsOperand(value interface{}, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprintf("%v", item) == filter.Value {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Value]
		return found != filter.Negate
	default:
		log.Error(fmt.Sprintf("unsupported type for contains filtering: %T", value))
		return false
	}
}

// checkNumericOperand compares numerically. Supported operands are =, > and
// <; a bare key (no operand) tests for a non-zero value.
func checkNumericOperand(value float64, filter Filter) bool {
	if filter.Operand == "" {
		return (value != 0) != filter.Negate
	}

	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64)
	if err != nil {
		log.Error("invalid numeric value: " + filter.Value)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Error("unsupported numeric operand: " + filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison. A bare key tests for a
// non-empty value.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "":
		return (value != "" && value != "false") != filter.Negate
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Error("invalid regex: " + filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Error("unsupported filtering operand: " + filter.Operand)
		return false
	}
}

// toFloat64 normalizes numeric types to float64.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
