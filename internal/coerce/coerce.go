// Package coerce infers typed JSON values from untyped strings such as
// Gherkin table cells.
//
// Classification is first-match-wins:
//
//  1. valid JSON whose root is an object or array -> KindJSON
//  2. base-10 integer                             -> KindInt
//  3. finite floating-point number                -> KindFloat
//  4. "true" / "false", any case                  -> KindBool
//  5. anything else, verbatim                     -> KindString
package coerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindString Kind = iota
	KindJSON
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a tagged variant. Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	JSON  json.RawMessage
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

// Coerce classifies raw and returns its best-guess typed value.
func Coerce(raw string) Value {
	if isStructuredJSON(raw) {
		return Value{Kind: KindJSON, JSON: json.RawMessage(strings.TrimSpace(raw))}
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: i}
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil && !hasHexPrefix(raw) && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Value{Kind: KindFloat, Float: f}
	}

	if strings.EqualFold(raw, "true") || strings.EqualFold(raw, "false") {
		return Value{Kind: KindBool, Bool: strings.EqualFold(raw, "true")}
	}

	return Value{Kind: KindString, Str: raw}
}

func isStructuredJSON(raw string) bool {
	if !gjson.Valid(raw) {
		return false
	}
	root := gjson.Parse(raw)
	return root.IsObject() || root.IsArray()
}

// Interface returns the value as a plain Go value suitable for encoding/json.
func (v Value) Interface() any {
	switch v.Kind {
	case KindJSON:
		return v.JSON
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	default:
		return v.Str
	}
}

// MarshalJSON encodes the value as its JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindJSON {
		return compact(v.JSON)
	}
	return json.Marshal(v.Interface())
}

// String renders the value the way it would appear inside a JSON document.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%v", v.Interface())
	}
	return string(b)
}

func compact(raw json.RawMessage) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// hasHexPrefix reports whether raw is written in Go's hex float form,
// which ParseFloat accepts but a query literal never means.
func hasHexPrefix(raw string) bool {
	raw = strings.TrimLeft(raw, "+-")
	return len(raw) > 1 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X')
}
