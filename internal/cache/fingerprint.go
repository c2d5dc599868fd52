package cache

import (
	"fmt"
	"sort"

	"github.com/asteroid-belt/devmatch/internal/hash"
)

// Fingerprint computes the stable cache key for a query: search type
// plus normalized params. Map key order never affects the result, and
// string lists (skill sets and the like) are sorted first so their
// order doesn't either.
func Fingerprint(searchType string, params map[string]any) (string, error) {
	key := struct {
		SearchType string
		Params     map[string]any
	}{searchType, normalizeParams(params)}

	fp, err := hash.Struct(key)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return fp, nil
}

// normalizeParams returns a copy with semantically order-free lists
// sorted, recursing into nested maps.
func normalizeParams(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []string:
		sorted := make([]string, len(val))
		copy(sorted, val)
		sort.Strings(sorted)
		return sorted
	case []any:
		if strs, ok := toStrings(val); ok {
			sort.Strings(strs)
			return strs
		}
		return val
	case map[string]any:
		return normalizeParams(val)
	default:
		return v
	}
}

func toStrings(vals []any) ([]string, bool) {
	out := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
