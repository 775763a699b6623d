//
//  internal/engine/helpers.go
//
//  Helper functions shared by both engines.  The names match what template
//  authors already use in Handlebars projects so a page can move between
//  engines without edits.
//

package engine

import (
	"encoding/json"
	"math"
	"reflect"
)

// inc and dec accept any integer kind, integral floats (what encoding/json
// produces), and json.Number.  Anything else comes back unchanged.
func inc(x any) any { return addInt(x, 1) }

func dec(x any) any { return addInt(x, -1) }

func addInt(x any, d int64) any {
	n, ok := toInt64(x)
	if !ok {
		return x
	}
	return n + d
}

// toInt64 converts x when it holds a whole number that fits in int64.
func toInt64(x any) (int64, bool) {
	if n, ok := x.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	}

	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt64(v.Float())
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func eqStr(a, b string) bool { return a == b }

func neStr(a, b string) bool { return a != b }

// lookupMap returns m[key] or nil.
func lookupMap(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// lookupArray returns s[i] or nil when i is out of range or not a whole
// number.  Any slice or array type is accepted.
func lookupArray(s any, idx any) any {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil
	}
	i, ok := toInt64(idx)
	if !ok || i < 0 || i >= int64(v.Len()) {
		return nil
	}
	return v.Index(int(i)).Interface()
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
