// FILE: nativeconfig/type.go
package nativeconfig

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// readAs adapts the untyped resolution result to a concrete native type for
// the typed accessors below. Absent resolves to the zero value.
func readAs[T any](c *Config, o Option) (T, Source, error) {
	var zero T
	v, src, err := c.readOption(o)
	if err != nil || v == nil {
		return zero, src, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, src, deserializationErrorf(o.Name(), v, "unexpected native type %T", v)
	}
	return t, src, nil
}

//
// StringOption
//

// StringOption represents a plain string value.
type StringOption struct {
	spec
}

// NewStringOption declares a string option. AllowEmpty(false) makes the empty
// string fail validation.
func NewStringOption(name string, params ...Param) (*StringOption, error) {
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &StringOption{spec: *s}
	if err := o.spec.finish(o, normString); err != nil {
		return nil, err
	}
	return o, nil
}

func normString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, validationErrorf("", v, "must be a string, got %T", v)
}

func (o *StringOption) Kind() Kind               { return KindScalar }
func (o *StringOption) NativeType() reflect.Type { return reflect.TypeOf("") }

func (o *StringOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return validationErrorf(o.name, v, "must be a string, got %T", v)
	}
	if !o.allowEmpty && s == "" {
		return validationErrorf(o.name, v, "empty values are not allowed")
	}
	return o.checkChoices(v)
}

func (o *StringOption) Serialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a string, got %T", v)
	}
	return s, nil
}

func (o *StringOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}
	return s, nil
}

func (o *StringOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a string, got %T", v)
	}
	return json.Marshal(s)
}

func (o *StringOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON string")
	}
	return s, nil
}

func (o *StringOption) Read(c *Config) (string, Source, error) { return readAs[string](c, o) }
func (o *StringOption) Get(c *Config) (string, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *StringOption) Set(c *Config, v string) error { return c.writeOption(o, v) }
func (o *StringOption) Delete(c *Config)              { c.deleteOption(o) }

//
// BoolOption
//

// Raw forms accepted by BoolOption.Deserialize, compared case-insensitively.
var (
	trueRawValues  = []string{"1", "YES", "TRUE", "ON"}
	falseRawValues = []string{"0", "NO", "FALSE", "OFF"}
)

// BoolOption represents a boolean value. It decodes a variety of raw forms
// ("1", "yes", "on", ...) but always serializes to "1" or "0".
type BoolOption struct {
	spec
}

// NewBoolOption declares a boolean option.
func NewBoolOption(name string, params ...Param) (*BoolOption, error) {
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &BoolOption{spec: *s}
	if err := o.spec.finish(o, normBool); err != nil {
		return nil, err
	}
	return o, nil
}

func normBool(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, validationErrorf("", v, "must be a bool, got %T", v)
}

func (o *BoolOption) Kind() Kind               { return KindScalar }
func (o *BoolOption) NativeType() reflect.Type { return reflect.TypeOf(false) }

func (o *BoolOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(bool); !ok {
		return validationErrorf(o.name, v, "must be a bool, got %T", v)
	}
	return o.checkChoices(v)
}

func (o *BoolOption) Serialize(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a bool, got %T", v)
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

func (o *BoolOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}
	upper := strings.ToUpper(s)
	for _, t := range trueRawValues {
		if upper == t {
			return true, nil
		}
	}
	for _, f := range falseRawValues {
		if upper == f {
			return false, nil
		}
	}
	return nil, deserializationErrorf(o.name, raw, "must be one of %v or %v", trueRawValues, falseRawValues)
}

func (o *BoolOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a bool, got %T", v)
	}
	return json.Marshal(b)
}

func (o *BoolOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON boolean")
	}
	return b, nil
}

func (o *BoolOption) Read(c *Config) (bool, Source, error) { return readAs[bool](c, o) }
func (o *BoolOption) Get(c *Config) (bool, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *BoolOption) Set(c *Config, v bool) error { return c.writeOption(o, v) }
func (o *BoolOption) Delete(c *Config)            { c.deleteOption(o) }

//
// IntOption
//

// IntOption represents an int64 value.
type IntOption struct {
	spec
}

// NewIntOption declares an integer option. Defaults and choices given as any
// Go integer kind are normalized to int64.
func NewIntOption(name string, params ...Param) (*IntOption, error) {
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &IntOption{spec: *s}
	if err := o.spec.finish(o, normInt); err != nil {
		return nil, err
	}
	return o, nil
}

func normInt(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > uint64(1<<63-1) {
			return nil, validationErrorf("", v, "unsigned value %d overflows int64", u)
		}
		return int64(u), nil
	}
	return nil, validationErrorf("", v, "must be an integer, got %T", v)
}

func (o *IntOption) Kind() Kind               { return KindScalar }
func (o *IntOption) NativeType() reflect.Type { return reflect.TypeOf(int64(0)) }

func (o *IntOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(int64); !ok {
		return validationErrorf(o.name, v, "must be an int64, got %T", v)
	}
	return o.checkChoices(v)
}

func (o *IntOption) Serialize(v any) (any, error) {
	i, ok := v.(int64)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be an int64, got %T", v)
	}
	return strconv.FormatInt(i, 10), nil
}

func (o *IntOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, deserializationErrorf(o.name, raw, "not an integer")
	}
	return i, nil
}

func (o *IntOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	i, ok := v.(int64)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be an int64, got %T", v)
	}
	return json.Marshal(i)
}

func (o *IntOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	v, err := decodeWire(data)
	if err != nil {
		return nil, deserializationErrorf(o.name, string(data), "invalid JSON")
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON number")
	}
	i, err := n.Int64()
	if err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON integer")
	}
	return i, nil
}

func (o *IntOption) Read(c *Config) (int64, Source, error) { return readAs[int64](c, o) }
func (o *IntOption) Get(c *Config) (int64, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *IntOption) Set(c *Config, v int64) error { return c.writeOption(o, v) }
func (o *IntOption) Delete(c *Config)             { c.deleteOption(o) }

//
// FloatOption
//

// FloatOption represents a float64 value.
type FloatOption struct {
	spec
}

// NewFloatOption declares a float option. Integer defaults and choices are
// normalized to float64.
func NewFloatOption(name string, params ...Param) (*FloatOption, error) {
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &FloatOption{spec: *s}
	if err := o.spec.finish(o, normFloat); err != nil {
		return nil, err
	}
	return o, nil
}

func normFloat(v any) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	}
	return nil, validationErrorf("", v, "must be a float, got %T", v)
}

func (o *FloatOption) Kind() Kind               { return KindScalar }
func (o *FloatOption) NativeType() reflect.Type { return reflect.TypeOf(float64(0)) }

func (o *FloatOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(float64); !ok {
		return validationErrorf(o.name, v, "must be a float64, got %T", v)
	}
	return o.checkChoices(v)
}

func (o *FloatOption) Serialize(v any) (any, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a float64, got %T", v)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func (o *FloatOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, deserializationErrorf(o.name, raw, "not a float")
	}
	return f, nil
}

func (o *FloatOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a float64, got %T", v)
	}
	return json.Marshal(f)
}

func (o *FloatOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	v, err := decodeWire(data)
	if err != nil {
		return nil, deserializationErrorf(o.name, string(data), "invalid JSON")
	}
	n, ok := v.(json.Number)
	if !ok {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON number")
	}
	f, err := n.Float64()
	if err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON float")
	}
	return f, nil
}

func (o *FloatOption) Read(c *Config) (float64, Source, error) { return readAs[float64](c, o) }
func (o *FloatOption) Get(c *Config) (float64, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *FloatOption) Set(c *Config, v float64) error { return c.writeOption(o, v) }
func (o *FloatOption) Delete(c *Config)               { c.deleteOption(o) }

//
// PathOption
//

// PathOption represents a filesystem path. Values must be non-empty and in
// cleaned form (filepath.Clean); foreign-written raw values are cleaned on
// deserialization.
type PathOption struct {
	spec
}

// NewPathOption declares a path option.
func NewPathOption(name string, params ...Param) (*PathOption, error) {
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &PathOption{spec: *s}
	if err := o.spec.finish(o, normPath); err != nil {
		return nil, err
	}
	return o, nil
}

func normPath(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, validationErrorf("", v, "must be a string path, got %T", v)
	}
	return filepath.Clean(s), nil
}

func (o *PathOption) Kind() Kind               { return KindScalar }
func (o *PathOption) NativeType() reflect.Type { return reflect.TypeOf("") }

func (o *PathOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return validationErrorf(o.name, v, "must be a string path, got %T", v)
	}
	if s == "" {
		return validationErrorf(o.name, v, "path cannot be empty")
	}
	if s != filepath.Clean(s) {
		return validationErrorf(o.name, v, "path must be in cleaned form")
	}
	return o.checkChoices(v)
}

func (o *PathOption) Serialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a string path, got %T", v)
	}
	return s, nil
}

func (o *PathOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}
	if s == "" {
		return nil, deserializationErrorf(o.name, raw, "path cannot be empty")
	}
	return filepath.Clean(s), nil
}

func (o *PathOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a string path, got %T", v)
	}
	return json.Marshal(s)
}

func (o *PathOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON string")
	}
	return o.Deserialize(s)
}

func (o *PathOption) Read(c *Config) (string, Source, error) { return readAs[string](c, o) }
func (o *PathOption) Get(c *Config) (string, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *PathOption) Set(c *Config, v string) error { return c.writeOption(o, v) }
func (o *PathOption) Delete(c *Config)              { c.deleteOption(o) }

//
// DurationOption
//

// DurationOption represents a time.Duration. Raw and Wire forms use the
// canonical time.Duration string representation ("1h30m").
type DurationOption struct {
	spec
}

// NewDurationOption declares a duration option.
func NewDurationOption(name string, params ...Param) (*DurationOption, error) {
	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}
	o := &DurationOption{spec: *s}
	if err := o.spec.finish(o, normDuration); err != nil {
		return nil, err
	}
	return o, nil
}

func normDuration(v any) (any, error) {
	if d, ok := v.(time.Duration); ok {
		return d, nil
	}
	return nil, validationErrorf("", v, "must be a time.Duration, got %T", v)
}

func (o *DurationOption) Kind() Kind               { return KindScalar }
func (o *DurationOption) NativeType() reflect.Type { return reflect.TypeOf(time.Duration(0)) }

func (o *DurationOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	if _, ok := v.(time.Duration); !ok {
		return validationErrorf(o.name, v, "must be a time.Duration, got %T", v)
	}
	return o.checkChoices(v)
}

func (o *DurationOption) Serialize(v any) (any, error) {
	d, ok := v.(time.Duration)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a time.Duration, got %T", v)
	}
	return d.String(), nil
}

func (o *DurationOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return nil, deserializationErrorf(o.name, raw, "not a duration")
	}
	return d, nil
}

func (o *DurationOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	d, ok := v.(time.Duration)
	if !ok {
		return nil, validationErrorf(o.name, v, "must be a time.Duration, got %T", v)
	}
	return json.Marshal(d.String())
}

func (o *DurationOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, deserializationErrorf(o.name, string(data), "not a JSON string")
	}
	return o.Deserialize(s)
}

func (o *DurationOption) Read(c *Config) (time.Duration, Source, error) {
	return readAs[time.Duration](c, o)
}
func (o *DurationOption) Get(c *Config) (time.Duration, error) {
	v, _, err := o.Read(c)
	return v, err
}
func (o *DurationOption) Set(c *Config, v time.Duration) error { return c.writeOption(o, v) }
func (o *DurationOption) Delete(c *Config)                     { c.deleteOption(o) }
