// FILE: nativeconfig/helper.go
package nativeconfig

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
)

// equalValues compares two Native Values. DeepEqual covers container kinds;
// scalars compare by value.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// rawEqual compares two Raw Values of the same shape.
func rawEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case []string:
		bv, ok := b.([]string)
		return ok && slices.Equal(av, bv)
	case map[string]string:
		bv, ok := b.(map[string]string)
		return ok && maps.Equal(av, bv)
	}
	return reflect.DeepEqual(a, b)
}

// rawEmpty reports whether a Raw Value is present but empty.
func rawEmpty(raw any) bool {
	switch rv := raw.(type) {
	case string:
		return rv == ""
	case []string:
		return len(rv) == 0
	case map[string]string:
		return len(rv) == 0
	}
	return false
}

// cloneValue copies container Native Values so that declaration state can
// never be mutated through a returned default or choice.
func cloneValue(v any) any {
	switch tv := v.(type) {
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = cloneValue(e)
		}
		return out
	}
	return v
}

func cloneChoices(choices []any) []any {
	if choices == nil {
		return nil
	}
	out := make([]any, len(choices))
	for i, ch := range choices {
		out[i] = cloneValue(ch)
	}
	return out
}

var wireNull = json.RawMessage("null")

// isWireNull reports whether a Wire Value is JSON null.
func isWireNull(data json.RawMessage) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// decodeWire parses a Wire Value into the generic JSON shape, keeping numbers
// as json.Number so integer and float kinds can tell them apart.
func decodeWire(data json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
