// Package jsonpath evaluates a practical subset of JSONPath against JSON
// documents by translating it to gjson path syntax.
//
// Supported: $ root, dotted members, ['quoted'] members, [n] indexes and the
// [*] wildcard (which collects the remainder of the path over every element).
// A leading "$" is optional, so "data.id" and "$.data.id" are equivalent.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup evaluates path against json and returns the raw gjson result.
func Lookup(json string, path string) (gjson.Result, error) {
	if json == "" {
		return gjson.Result{}, fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.Valid(json) {
		return gjson.Result{}, fmt.Errorf("response is not valid JSON")
	}

	result := gjson.Get(json, convertToGjsonPath(path))
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// Extract returns the value at path as a string. Strings are returned
// unquoted, null as "null", and objects/arrays as their JSON text.
func Extract(json string, path string) (string, error) {
	result, err := Lookup(json, path)
	if err != nil {
		return "", err
	}
	return stringify(result), nil
}

// ExtractList returns every element of the array at path as strings.
// A scalar at path yields a one-element list.
func ExtractList(json string, path string) ([]string, error) {
	result, err := Lookup(json, path)
	if err != nil {
		return nil, err
	}

	if !result.IsArray() {
		return []string{stringify(result)}, nil
	}

	items := result.Array()
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, stringify(item))
	}
	return values, nil
}

func stringify(result gjson.Result) string {
	if result.Type == gjson.Null {
		return "null"
	}
	return result.String()
}

// convertToGjsonPath converts a JSONPath expression to a gjson path.
//
//	$.users[0].name  -> users.0.name
//	$.users[*].name  -> users.#.name
//	$['user']['id']  -> user.id
func convertToGjsonPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	var segments []string
	for i := 0; i < len(path); {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				segments = append(segments, escapeSegment(path[i+1:]))
				i = len(path)
				continue
			}
			inner := path[i+1 : i+end]
			inner = strings.Trim(inner, `'"`)
			if inner == "*" {
				inner = "#"
			} else if !isIndex(inner) {
				inner = escapeSegment(inner)
			}
			segments = append(segments, inner)
			i += end + 1
		default:
			end := strings.IndexAny(path[i:], ".[")
			if end < 0 {
				end = len(path) - i
			}
			segment := path[i : i+end]
			if segment == "*" {
				segment = "#"
			}
			segments = append(segments, segment)
			i += end
		}
	}

	if len(segments) == 0 {
		return "@this"
	}
	return strings.Join(segments, ".")
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// escapeSegment escapes gjson metacharacters inside a quoted member name.
func escapeSegment(s string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return replacer.Replace(s)
}
