// Package placeholder implements the %NAME% token grammar used by
// configuration templates.
//
// A token is a leading %, one or more non-% characters, and a trailing %.
// Matching is case-sensitive. A lone % or an empty %% pair never forms a
// token and passes through as literal text. Tokens may appear anywhere a
// string leaf appears in a JSON value tree: object values, array elements,
// or nested structures at arbitrary depth, and a single string may mix
// tokens with literal text.
package placeholder

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// tokenRegex matches one complete %NAME% pair with no % inside the name.
var tokenRegex = regexp.MustCompile(`%([^%]+)%`)

// Scan returns the distinct token names found in string leaves anywhere
// inside value, sorted for deterministic reporting.
func Scan(value any) []string {
	seen := make(map[string]struct{})
	scan(value, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func scan(value any, seen map[string]struct{}) {
	switch v := value.(type) {
	case map[string]any:
		for _, item := range v {
			scan(item, seen)
		}
	case []any:
		for _, item := range v {
			scan(item, seen)
		}
	case string:
		for _, match := range tokenRegex.FindAllStringSubmatch(v, -1) {
			seen[match[1]] = struct{}{}
		}
	}
}

// Lookup resolves a token name to its credential value. The boolean
// reports whether the name is known; unknown tokens keep their literal
// text so the caller can account for them separately.
type Lookup func(name string) (any, bool)

// Rewrite returns a copy of value with every resolvable token replaced.
// A string leaf that is exactly one token takes the credential value's
// native JSON type; a token embedded in surrounding text is coerced to
// its string form. Tokens within one string substitute left to right.
func Rewrite(value any, lookup Lookup) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Rewrite(item, lookup)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Rewrite(item, lookup)
		}
		return out
	case string:
		return rewriteString(v, lookup)
	default:
		return value
	}
}

func rewriteString(s string, lookup Lookup) any {
	if match := tokenRegex.FindStringSubmatch(s); match != nil && match[0] == s {
		// The whole leaf is one token: substitute with the native type.
		if resolved, ok := lookup(match[1]); ok {
			return resolved
		}
		return s
	}
	return tokenRegex.ReplaceAllStringFunc(s, func(token string) string {
		resolved, ok := lookup(token[1 : len(token)-1])
		if !ok {
			return token
		}
		return Stringify(resolved)
	})
}

// Stringify renders a credential value for substitution inside a larger
// string. Scalars keep their JSON text; composite values fall back to
// compact JSON.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
