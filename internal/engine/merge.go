package engine

import (
	"reflect"
	"strings"
)

// MergeDelta fills the empty fields of current from delta and returns a new map.
// A value already present in current is never overwritten.
func MergeDelta(current, delta RawIntent) RawIntent {
	out := make(RawIntent, len(current)+len(delta))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range delta {
		if isEmpty(v) {
			continue
		}
		if isEmpty(out[k]) {
			out[k] = v
		}
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
