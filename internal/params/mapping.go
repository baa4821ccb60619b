package params

import "sort"

// Mapping is plain nested key-value configuration data. Values are strings,
// numbers, lists or nested Mappings.
type Mapping map[string]any

// Section returns the nested mapping stored under name, or nil when the key
// is absent or holds a scalar.
func (m Mapping) Section(name string) Mapping {
	switch v := m[name].(type) {
	case Mapping:
		return v
	case map[string]any:
		return Mapping(v)
	default:
		return nil
	}
}

// Keys returns the mapping's keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasString reports whether s is stored anywhere in the mapping, including
// nested mappings and lists.
func (m Mapping) HasString(s string) bool {
	for _, v := range m {
		if hasString(v, s) {
			return true
		}
	}
	return false
}

func hasString(v any, s string) bool {
	switch val := v.(type) {
	case string:
		return val == s
	case Mapping:
		return val.HasString(s)
	case map[string]any:
		return Mapping(val).HasString(s)
	case []string:
		for _, e := range val {
			if e == s {
				return true
			}
		}
	case []any:
		for _, e := range val {
			if hasString(e, s) {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of the mapping. Lists are copied element-wise.
func (m Mapping) Clone() Mapping {
	if m == nil {
		return nil
	}
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Mapping:
		return val.Clone()
	case map[string]any:
		return Mapping(val).Clone()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case []float64:
		return append([]float64(nil), val...)
	case []int:
		return append([]int(nil), val...)
	default:
		return val
	}
}

// Merge deep-merges override into m. Nested mappings are merged key by key,
// every other value in override replaces the one in m.
func (m Mapping) Merge(override Mapping) {
	for k, v := range override {
		src := asMapping(v)
		if src == nil {
			m[k] = cloneValue(v)
			continue
		}
		dst := m.Section(k)
		if dst == nil {
			m[k] = src.Clone()
			continue
		}
		dst.Merge(src)
		m[k] = dst
	}
}

func asMapping(v any) Mapping {
	switch val := v.(type) {
	case Mapping:
		return val
	case map[string]any:
		return Mapping(val)
	default:
		return nil
	}
}
