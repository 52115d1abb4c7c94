// FILE: nativeconfig/enum.go
package nativeconfig

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// EnumMember is one named value of a closed symbolic set.
type EnumMember struct {
	Name  string
	Value any
}

// EnumOption represents a value drawn from a closed set of named members.
//
// When the members' underlying kind is a known primitive (integer, float, or
// string), a matching inner option is synthesized and values round-trip
// through the member's underlying value. Otherwise values round-trip through
// the symbolic member name.
type EnumOption struct {
	spec
	members []EnumMember
	inner   Option
	native  reflect.Type
}

// NewEnumOption declares an enumeration option. All member values must share
// one Go type, and member names must be unique ignoring case. Choices default
// to all members.
func NewEnumOption(name string, members []EnumMember, params ...Param) (*EnumOption, error) {
	if len(members) == 0 {
		return nil, initErrorf("enum option '%s' requires at least one member", name)
	}
	native := reflect.TypeOf(members[0].Value)
	if native == nil {
		return nil, initErrorf("enum option '%s' has a nil member value", name)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m.Name == "" {
			return nil, initErrorf("enum option '%s' has a member with an empty name", name)
		}
		lower := strings.ToLower(m.Name)
		if seen[lower] {
			return nil, initErrorf("enum option '%s' has duplicate member name '%s'", name, m.Name)
		}
		seen[lower] = true
		if reflect.TypeOf(m.Value) != native {
			return nil, initErrorf("enum option '%s': member '%s' has type %T, expected %s",
				name, m.Name, m.Value, native)
		}
	}

	s, err := newSpec(name, params...)
	if err != nil {
		return nil, err
	}

	o := &EnumOption{spec: *s, members: members, native: native}
	switch native.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		o.inner, err = NewIntOption(name)
	case reflect.Float32, reflect.Float64:
		o.inner, err = NewFloatOption(name)
	case reflect.String:
		o.inner, err = NewStringOption(name)
	}
	if err != nil {
		return nil, err
	}

	if o.spec.choices == nil {
		choices := make([]any, len(members))
		for i, m := range members {
			choices[i] = m.Value
		}
		o.spec.choices = choices
	}
	if err := o.spec.finish(o, o.normMember); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *EnumOption) normMember(v any) (any, error) {
	if reflect.TypeOf(v) != o.native {
		return nil, validationErrorf(o.name, v, "must be a %s, got %T", o.native, v)
	}
	return v, nil
}

func (o *EnumOption) Kind() Kind               { return KindScalar }
func (o *EnumOption) NativeType() reflect.Type { return o.native }

// Members returns the declared member set.
func (o *EnumOption) Members() []EnumMember {
	out := make([]EnumMember, len(o.members))
	copy(out, o.members)
	return out
}

func (o *EnumOption) Validate(v any) error {
	if v == nil {
		return nil
	}
	if reflect.TypeOf(v) != o.native {
		return validationErrorf(o.name, v, "must be a %s, got %T", o.native, v)
	}
	if _, ok := o.memberOf(v); !ok {
		return validationErrorf(o.name, v, "not a member of the enumeration")
	}
	return o.checkChoices(v)
}

// underlying converts a (possibly named-type) member value to the primitive
// the inner option works with.
func (o *EnumOption) underlying(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}
	return v
}

func (o *EnumOption) memberOf(v any) (EnumMember, bool) {
	for _, m := range o.members {
		if equalValues(m.Value, v) {
			return m, true
		}
	}
	return EnumMember{}, false
}

func (o *EnumOption) memberByUnderlying(u any) (EnumMember, bool) {
	for _, m := range o.members {
		if equalValues(o.underlying(m.Value), u) {
			return m, true
		}
	}
	return EnumMember{}, false
}

func (o *EnumOption) Serialize(v any) (any, error) {
	m, ok := o.memberOf(v)
	if !ok {
		return nil, validationErrorf(o.name, v, "not a member of the enumeration")
	}
	if o.inner != nil {
		return o.inner.Serialize(o.underlying(m.Value))
	}
	return m.Name, nil
}

// Deserialize tries the inner option's decoding first, then a
// case-insensitive match against member names and string forms.
func (o *EnumOption) Deserialize(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, deserializationErrorf(o.name, raw, "raw value must be a string, got %T", raw)
	}

	if o.inner != nil {
		if u, err := o.inner.Deserialize(s); err == nil {
			if m, ok := o.memberByUnderlying(u); ok {
				return m.Value, nil
			}
		}
	}

	lower := strings.ToLower(s)
	for _, m := range o.members {
		if strings.ToLower(m.Name) == lower || strings.ToLower(fmt.Sprint(o.underlying(m.Value))) == lower {
			return m.Value, nil
		}
	}
	return nil, deserializationErrorf(o.name, raw, "not a member of the enumeration")
}

func (o *EnumOption) SerializeWire(v any) (json.RawMessage, error) {
	if v == nil {
		return wireNull, nil
	}
	m, ok := o.memberOf(v)
	if !ok {
		return nil, validationErrorf(o.name, v, "not a member of the enumeration")
	}
	if o.inner != nil {
		return o.inner.SerializeWire(o.underlying(m.Value))
	}
	return json.Marshal(m.Name)
}

func (o *EnumOption) DeserializeWire(data json.RawMessage) (any, error) {
	if isWireNull(data) {
		return nil, nil
	}

	if o.inner != nil {
		if u, err := o.inner.DeserializeWire(data); err == nil {
			if m, ok := o.memberByUnderlying(u); ok {
				return m.Value, nil
			}
		}
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return o.Deserialize(s)
	}
	return nil, deserializationErrorf(o.name, string(data), "not a member of the enumeration")
}

func (o *EnumOption) Read(c *Config) (any, Source, error) { return c.readOption(o) }
func (o *EnumOption) Get(c *Config) (any, error) {
	v, _, err := c.readOption(o)
	return v, err
}
func (o *EnumOption) Set(c *Config, v any) error { return c.writeOption(o, v) }
func (o *EnumOption) Delete(c *Config)           { c.deleteOption(o) }
