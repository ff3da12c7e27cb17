// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Accessors over decoded JSON (map[string]any / []any). Every helper
// accepts any shape and reports absence instead of failing, so a payload
// with missing or mistyped nested keys degrades field by field.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asInt accepts JSON numbers, json.Number, and decimal strings such as
// DOAJ's "2019".
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func optString(v any) *string {
	s, ok := asString(v)
	if !ok {
		return nil
	}
	return &s
}

func optInt(v any) *int {
	n, ok := asInt(v)
	if !ok {
		return nil
	}
	return &n
}

func first(v any) any {
	s := asSlice(v)
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

// stringList keeps the string elements of a JSON array, in order.
func stringList(v any) []string {
	out := []string{}
	for _, e := range asSlice(v) {
		if s, ok := asString(e); ok {
			out = append(out, s)
		}
	}
	return out
}

// firstMap returns the first candidate that is a non-empty object.
func firstMap(candidates ...any) map[string]any {
	for _, c := range candidates {
		if m := asMap(c); len(m) > 0 {
			return m
		}
	}
	return nil
}

// limit truncates items to the first cap entries.
func limit[T any](items []T, cap int) []T {
	if cap < 0 {
		cap = 0
	}
	if len(items) > cap {
		return items[:cap]
	}
	return items
}
