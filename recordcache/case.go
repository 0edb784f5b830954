package recordcache

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// toSnake converts s to snake_case using ASCII-aware rules. Punctuation
// is stripped rather than kept; characters like '*' or '[' can show up
// in reflected type names and would produce keys some backends reject.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := true

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevBoundary := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			if !lastUnderscore && (prevBoundary || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}

// EntityName derives the default cache namespace for a record type: the
// pluralized snake_case of its type name, matching bun's table naming
// rule so that reflection-derived and bun-derived metadata agree.
func EntityName[T any]() string {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return inflection.Plural(toSnake(typ.Name()))
}
