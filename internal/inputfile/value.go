package inputfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/mpetstudy/internal/params"
)

// formatScalar renders a scalar the way the external tools expect to read it.
// Floats use the shortest representation that round-trips.
func formatScalar(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// listElems flattens the list types a mapping may hold.
func listElems(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

func asMapping(v any) (params.Mapping, bool) {
	switch val := v.(type) {
	case params.Mapping:
		return val, true
	case map[string]any:
		return params.Mapping(val), true
	default:
		return nil, false
	}
}

// orderedKeys returns the keys listed in first that exist in m, followed by
// the remaining keys sorted.
func orderedKeys(m params.Mapping, first []string) []string {
	seen := make(map[string]bool, len(first))
	var keys []string
	for _, k := range first {
		if _, ok := m[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for _, k := range m.Keys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// shellQuote wraps s in single quotes for bash.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
