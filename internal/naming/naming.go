// Package naming derives the canonical wire name of a Go type.
package naming

import (
	"reflect"
	"strings"
	"unicode"
)

// Canonical returns the wire name for t: the snake_case form of the type's
// declared name, with generic arguments flattened into the name
// ("Pair[pkg.StructA]" becomes "pair_struct_a"). Pointer types name their
// element and unnamed types fall back to their type literal.
//
// The result contains only lower-case letters, digits and underscores, so
// it never collides with a delimiter of the text format.
//
// Package qualifiers are dropped, so a.Point and b.Point share a name. The
// registry rejects that clash between registered types, but a nested member
// only checks the name, so a same-named type from another package passes.
func Canonical(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return Snake(name)
}

// Snake converts a Go type string to snake_case. Package qualifiers
// (including full import paths) are dropped and every run of other
// punctuation becomes a single underscore: "HTTPHeader" -> "http_header",
// "Pair[github.com/x/y.StructA]" -> "pair_struct_a".
func Snake(s string) string {
	var parts []string
	for _, run := range strings.FieldsFunc(s, func(r rune) bool { return !isQualified(r) }) {
		if i := strings.LastIndexByte(run, '.'); i >= 0 {
			run = run[i+1:]
		}
		// what is left of an import path such as "x/y" without a type
		run = strings.Map(func(r rune) rune {
			if r == '/' || r == '-' {
				return '_'
			}
			return r
		}, run)
		if w := words(run); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, "_")
}

func isQualified(r rune) bool {
	return r == '_' || r == '.' || r == '/' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// words splits one identifier at case boundaries.
func words(id string) string {
	rs := []rune(id)
	var b strings.Builder
	b.Grow(len(id) + 4)
	for i, r := range rs {
		if r == '_' {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSuffix(b.String(), "_")
}
