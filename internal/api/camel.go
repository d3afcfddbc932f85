// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package api

import "strings"

// The modu server speaks snake_case on the wire; every Go type in this
// client is tagged camelCase. CamelizeKeys is applied exactly once, at
// the transport boundary, so downstream code only ever sees camelCase
// keys regardless of which endpoint produced the payload.

// CamelizeKeys recursively converts every map key in a decoded JSON
// value from snake_case to camelCase.
//
// Slices are mapped element-wise preserving order, maps get their keys
// converted and their values recursed, and anything else (strings,
// numbers, bools, nil) passes through untouched. The function is total
// and idempotent: it inspects shape only, never semantics, so
// CamelizeKeys(CamelizeKeys(v)) == CamelizeKeys(v) for any input.
//
// Two keys that collide after conversion (e.g. "a_b" and "aB") are a
// server-side contract violation; the last one written during map
// iteration wins and no error is reported.
func CamelizeKeys(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CamelizeKeys(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[toCamel(k)] = CamelizeKeys(item)
		}
		return out
	default:
		return v
	}
}

// toCamel converts a single key to camelCase: "show_type" -> "showType",
// "a_b" -> "aB", "API-key" -> "apiKey". Already-camel keys come back
// unchanged, which is what makes CamelizeKeys idempotent.
func toCamel(key string) string {
	words := splitWords(key)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(key))
	sb.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		lower := strings.ToLower(w)
		r := []rune(lower)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		sb.WriteString(string(r))
	}
	return sb.String()
}

// splitWords breaks a key into words at separators (underscore, hyphen,
// space) and at lower-to-upper case transitions ("showType" -> "show",
// "Type").
func splitWords(key string) []string {
	var words []string
	var current []rune
	var prev rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case isUpper(r) && (isLower(prev) || isDigit(prev)):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return words
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
