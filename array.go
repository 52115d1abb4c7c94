// FILE: nativeconfig/array.go
package nativeconfig

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// ArrayOption represents an ordered list of values. Element serialization and
// validation are delegated to an inner option, which must not itself be a
// container option.
type ArrayOption struct {
	spec
	inner Option
}

// NewArrayOption declares an array option over the given element option.
func NewArrayOption(name string, inner Option, params ...Param) (*ArrayOption, error) {
	if inner == nil {
		return nil, initErrorf("array option '%s' requires an element option", name)
	}
	if inner.Kind() != KindScalar {
		return nil, initErrorf("element option of array option '%s' cannot be a container option", name)
	}
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &ArrayOption{spec: *s, inner: inner}
	if err := o.spec.finish(o, normSlice); err != nil {
		return nil, err
	}
	return o, nil
}

func normSlice(v any) (any, error) {
	if vs, ok := v.([]any); ok {
		return vs, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, validationErrorf("", v, "must be a slice, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func (o *ArrayOption) Kind() Kind               { return KindArray }
func (o *ArrayOption) NativeType() reflect.Type { return reflect.TypeOf([]any(nil)) }

func (o *ArrayOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	vs, ok := v.([]any)
	if !ok {
		return validationErrorf(o.name, v, "must be a []any, got %T", v)
	}
	for _, e := range vs {
		if err := o.inner.Validate(e); err != nil {
			return err
		}
	}
	return o.checkChoices(v)
}

func (o *ArrayOption) Serialize(v any) (any, error) {
	vs, ok := v.([]any)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a []any, got %T", v)
	}
	raw := make([]string, len(vs))
	for i, e := range vs {
		er, err := o.inner.Serialize(e)
		if err != nil {
			return nil, err
		}
		s, ok := er.(string)
		if !ok {
			return nil, validationErrorf(o.name, e, "element does not serialize to a raw string")
		}
		raw[i] = s
	}
	return raw, nil
}

func (o *ArrayOption) Deserialize(raw any) (any, error) {
	rs, ok := raw.([]string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a []string, got %T", raw)
	}
	vs := make([]any, len(rs))
	for i, r := range rs {
		e, err := o.inner.Deserialize(r)
		if err != nil {
			return nil, deserializationErrorf(o.name, raw, "cannot deserialize element %d: %v", i, err)
		}
		vs[i] = e
	}
	return vs, nil
}

// SerializeWire assembles a JSON array from each element's own Wire encoding,
// so already-serialized elements are never re-encoded as strings.
func (o *ArrayOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	vs, ok := v.([]any)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a []any, got %T", v)
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range vs {
		if i > 0 {
			buf.WriteString(", ")
		}
		ew, err := o.inner.SerializeWire(e)
		if err != nil {
			return nil, err
		}
		buf.Write(ew)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o *ArrayOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON array")
	}
	vs := make([]any, len(elems))
	for i, ew := range elems {
		e, err := o.inner.DeserializeWire(ew)
		if err != nil {
			return nil, err
		}
		vs[i] = e
	}
	return vs, nil
}

func (o *ArrayOption) Read(c *Config) ([]any, Source, error) { return readAs[[]any](c, o) }
func (o *ArrayOption) Get(c *Config) ([]any, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *ArrayOption) Set(c *Config, v []any) error { return c.writeOption(o, v) }
func (o *ArrayOption) Delete(c *Config)             { c.deleteOption(o) }
