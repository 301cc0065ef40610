package filetree

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/LDK/javascriv-api/internal/domain/project"
)

// DeepEqual compares two keyed structures independent of key order.
// ok is false when either side is not an object, in which case the result
// is undefined and callers should treat the values as changed.
func DeepEqual(a, b any) (equal, ok bool) {
	ka, okA := keyed(a)
	kb, okB := keyed(b)
	if !okA || !okB {
		return false, false
	}

	keysA := sortedKeys(ka)
	keysB := sortedKeys(kb)
	if len(keysA) != len(keysB) {
		return false, true
	}
	for i := range keysA {
		if keysA[i] != keysB[i] {
			return false, true
		}
	}

	for _, k := range keysA {
		va, vb := ka[k], kb[k]
		_, objA := keyed(va)
		_, objB := keyed(vb)

		switch {
		case objA && objB:
			if eq, ok := DeepEqual(va, vb); !ok || !eq {
				return false, true
			}
		case objA || objB:
			return false, true
		case !strictEqual(va, vb):
			return false, true
		}
	}

	return true, true
}

func keyed(v any) (map[string]any, bool) {
	switch v := v.(type) {
	case map[string]any:
		return v, v != nil
	case project.Settings:
		return v, v != nil
	case []any:
		if v == nil {
			return nil, false
		}
		m := make(map[string]any, len(v))
		for i, item := range v {
			m[strconv.Itoa(i)] = item
		}
		return m, true
	default:
		return nil, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func strictEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
