package tfmutate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ValueKind tags the literal form a value renders to.
type ValueKind int

const (
	// KindString renders with surrounding double quotes.
	KindString ValueKind = iota
	// KindNumber renders as a bare numeric literal.
	KindNumber
	// KindBool renders as the bare true/false keyword.
	KindBool
	// KindList renders as a bracketed, comma-joined list.
	KindList
	// KindRaw renders verbatim: variable references, comparisons and other
	// expressions that must not be quoted.
	KindRaw
)

// Value is a classified Terraform value. Classification is deterministic:
// the same input always yields the same Value, and every Value renders to
// exactly one literal.
type Value struct {
	Kind  ValueKind
	Text  string // string contents (unquoted) or the textual form of the literal
	Items []Value
}

// expressionMarkers flag strings that are really HCL expressions. Any
// occurrence anywhere in the string wins over every later rule.
var expressionMarkers = []string{
	"==", "!=", ">", "<", ">=", "<=", "&&", "||", "!",
	"data.", "var.", "local.",
}

var (
	dottedQuadPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+`)
	numberPattern     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	quotedItemPattern = regexp.MustCompile(`"([^"]*)"`)
)

// Classify determines the literal form of an arbitrary value. Strings go
// through the precedence rules below (earlier rules win); native Go values
// map directly onto their literal kind.
//
//  1. Already-delimited string literals pass through unchanged.
//  2. Bracketed list-looking strings are decoded into a list.
//  3. Strings containing an expression marker stay raw (unquoted).
//  4. "true"/"false" (any case) become bare booleans.
//  5. Strings containing '/', ':', '-' or '_', or starting with a dotted
//     quad, are quoted even when they would otherwise look numeric. CIDR
//     ranges, addresses and dashed identifiers land here.
//  6. Strict integer/decimal strings become bare numbers.
//  7. Everything else is a quoted string.
func Classify(input any) Value {
	switch v := input.(type) {
	case string:
		return classifyString(v)
	case bool:
		return Value{Kind: KindBool, Text: strconv.FormatBool(v)}
	case int:
		return Value{Kind: KindNumber, Text: strconv.Itoa(v)}
	case int64:
		return Value{Kind: KindNumber, Text: strconv.FormatInt(v, 10)}
	case float64:
		return Value{Kind: KindNumber, Text: strconv.FormatFloat(v, 'f', -1, 64)}
	case []any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, classifyListItem(item))
		}
		return Value{Kind: KindList, Items: items}
	default:
		return Value{Kind: KindString, Text: fmt.Sprint(input)}
	}
}

// Format is shorthand for Classify(input).Literal().
func Format(input any) string {
	return Classify(input).Literal()
}

func classifyString(s string) Value {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return Value{Kind: KindString, Text: s[1 : len(s)-1]}
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return classifyListString(s)
	}
	for _, marker := range expressionMarkers {
		if strings.Contains(s, marker) {
			return Value{Kind: KindRaw, Text: s}
		}
	}
	if lower := strings.ToLower(s); lower == "true" || lower == "false" {
		return Value{Kind: KindBool, Text: lower}
	}
	if strings.ContainsAny(s, "/:-_") || dottedQuadPattern.MatchString(s) {
		return Value{Kind: KindString, Text: s}
	}
	if numberPattern.MatchString(s) {
		return Value{Kind: KindNumber, Text: s}
	}
	return Value{Kind: KindString, Text: s}
}

// classifyListItem handles elements of a native list. Items are rendered by
// type, not re-classified: a plain string element is always quoted.
func classifyListItem(item any) Value {
	switch v := item.(type) {
	case string:
		return Value{Kind: KindString, Text: v}
	case bool:
		return Value{Kind: KindBool, Text: strconv.FormatBool(v)}
	case int:
		return Value{Kind: KindNumber, Text: strconv.Itoa(v)}
	case int64:
		return Value{Kind: KindNumber, Text: strconv.FormatInt(v, 10)}
	case float64:
		return Value{Kind: KindNumber, Text: strconv.FormatFloat(v, 'f', -1, 64)}
	case []any:
		items := make([]Value, 0, len(v))
		for _, nested := range v {
			items = append(items, classifyListItem(nested))
		}
		return Value{Kind: KindList, Items: items}
	default:
		return Value{Kind: KindString, Text: fmt.Sprint(item)}
	}
}

// classifyListString decodes a bracketed list-looking string. A strict JSON
// decode is attempted first, then a permissive scan tolerant of
// single-quoted items. When both fail, any quoted substrings are extracted;
// if there are none the raw string passes through unchanged.
func classifyListString(s string) Value {
	var decoded []any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		items := make([]Value, 0, len(decoded))
		for _, item := range decoded {
			items = append(items, Value{Kind: KindString, Text: fmt.Sprint(item)})
		}
		return Value{Kind: KindList, Items: items}
	}

	if items, ok := scanListItems(s); ok {
		return Value{Kind: KindList, Items: items}
	}

	matches := quotedItemPattern.FindAllStringSubmatch(s, -1)
	if len(matches) > 0 {
		items := make([]Value, 0, len(matches))
		for _, m := range matches {
			items = append(items, Value{Kind: KindString, Text: m[1]})
		}
		return Value{Kind: KindList, Items: items}
	}

	return Value{Kind: KindRaw, Text: s}
}

// scanListItems splits the interior of a bracketed string on commas and
// strips matching single or double quotes from each item. It refuses nested
// brackets and stray quotes rather than guessing.
func scanListItems(s string) ([]Value, bool) {
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, true
	}
	parts := strings.Split(inner, ",")
	items := make([]Value, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		switch {
		case len(item) >= 2 && item[0] == '\'' && item[len(item)-1] == '\'':
			item = item[1 : len(item)-1]
		case len(item) >= 2 && item[0] == '"' && item[len(item)-1] == '"':
			item = item[1 : len(item)-1]
		}
		if item == "" || strings.ContainsAny(item, `[]'"`) {
			return nil, false
		}
		items = append(items, Value{Kind: KindString, Text: item})
	}
	return items, true
}

// Literal renders the value as Terraform source text. Rendering is total
// and stable: every Value yields exactly one non-empty literal.
func (v Value) Literal() string {
	switch v.Kind {
	case KindString:
		return `"` + v.Text + `"`
	case KindList:
		parts := make([]string, 0, len(v.Items))
		for _, item := range v.Items {
			parts = append(parts, item.Literal())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.Text
	}
}

// ctyValue converts the value for the structural mutator. Raw expressions
// have no cty representation and report false; the caller splices them as
// raw tokens instead.
func (v Value) ctyValue() (cty.Value, bool) {
	switch v.Kind {
	case KindString:
		return cty.StringVal(v.Text), true
	case KindBool:
		return cty.BoolVal(v.Text == "true"), true
	case KindNumber:
		n, err := cty.ParseNumberVal(v.Text)
		if err != nil {
			return cty.NilVal, false
		}
		return n, true
	case KindList:
		if len(v.Items) == 0 {
			return cty.EmptyTupleVal, true
		}
		elems := make([]cty.Value, 0, len(v.Items))
		for _, item := range v.Items {
			ev, ok := item.ctyValue()
			if !ok {
				return cty.NilVal, false
			}
			elems = append(elems, ev)
		}
		return cty.TupleVal(elems), true
	default:
		return cty.NilVal, false
	}
}
