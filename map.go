// FILE: nativeconfig/map.go
package nativeconfig

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
)

// MapOption represents a string-keyed mapping of values. Element serialization
// and validation are delegated to an inner option, which must not itself be a
// container option.
type MapOption struct {
	spec
	inner Option
}

// NewMapOption declares a mapping option over the given element option.
func NewMapOption(name string, inner Option, params ...Param) (*MapOption, error) {
	if inner == nil {
		return nil, initErrorf("map option '%s' requires an element option", name)
	}
	if inner.Kind() != KindScalar {
		return nil, initErrorf("element option of map option '%s' cannot be a container option", name)
	}
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &MapOption{spec: *s, inner: inner}
	if err := o.spec.finish(o, normStringMap); err != nil {
		return nil, err
	}
	return o, nil
}

func normStringMap(v any) (any, error) {
	if vm, ok := v.(map[string]any); ok {
		return vm, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, validationErrorf("", v, "must be a string-keyed map, got %T", v)
	}
	out := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		out[k.String()] = rv.MapIndex(k).Interface()
	}
	return out, nil
}

func (o *MapOption) Kind() Kind               { return KindMap }
func (o *MapOption) NativeType() reflect.Type { return reflect.TypeOf(map[string]any(nil)) }

func (o *MapOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	vm, ok := v.(map[string]any)
	if !ok {
		return validationErrorf(o.name, v, "must be a map[string]any, got %T", v)
	}
	for _, e := range vm {
		if err := o.inner.Validate(e); err != nil {
			return err
		}
	}
	return o.checkChoices(v)
}

func (o *MapOption) Serialize(v any) (any, error) {
	vm, ok := v.(map[string]any)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a map[string]any, got %T", v)
	}
	raw := make(map[string]string, len(vm))
	for k, e := range vm {
		er, err := o.inner.Serialize(e)
		if err != nil {
			return nil, err
		}
		s, ok := er.(string)
		if !ok {
			return nil, validationErrorf(o.name, e, "element does not serialize to a raw string")
		}
		raw[k] = s
	}
	return raw, nil
}

func (o *MapOption) Deserialize(raw any) (any, error) {
	rm, ok := raw.(map[string]string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a map[string]string, got %T", raw)
	}
	vm := make(map[string]any, len(rm))
	for k, r := range rm {
		e, err := o.inner.Deserialize(r)
		if err != nil {
			return nil, deserializationErrorf(o.name, raw, "cannot deserialize key '%s': %v", k, err)
		}
		vm[k] = e
	}
	return vm, nil
}

// SerializeWire assembles a JSON object from each element's own Wire encoding.
// Keys are written in sorted order for a deterministic encoding.
func (o *MapOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	vm, ok := v.(map[string]any)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a map[string]any, got %T", v)
	}
	keys := make([]string, 0, len(vm))
	for k := range vm {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		kw, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		ew, err := o.inner.SerializeWire(vm[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kw)
		buf.WriteString(": ")
		buf.Write(ew)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *MapOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	var elems map[string]json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON object")
	}
	vm := make(map[string]any, len(elems))
	for k, ew := range elems {
		e, err := o.inner.DeserializeWire(ew)
		if err != nil {
			return nil, err
		}
		vm[k] = e
	}
	return vm, nil
}

func (o *MapOption) Read(c *Config) (map[string]any, Source, error) {
	return readAs[map[string]any](c, o)
}
func (o *MapOption) Get(c *Config) (map[string]any, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *MapOption) Set(c *Config, v map[string]any) error { return c.writeOption(o, v) }
func (o *MapOption) Delete(c *Config)                      { c.deleteOption(o) }
