// FILE: nativeconfig/option.go
package nativeconfig

import (
	"encoding/json"
	"reflect"
)

// Kind identifies the storage shape an option persists through.
type Kind int

const (
	// KindScalar options store a single raw string.
	KindScalar Kind = iota
	// KindArray options store an ordered list of raw strings.
	KindArray
	// KindMap options store a string-keyed mapping of raw strings.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// CachePolicy is the per-option cache preference. CacheInherit defers to the
// Config's blanket setting.
type CachePolicy int

const (
	CacheInherit CachePolicy = iota
	CacheAllow
	CacheDeny
)

// Option is a declared, typed, named configuration field.
//
// Every option works with three representations of its value:
//
//  1. Native Value: the typed, application-facing value (int64, string, ...)
//  2. Raw Value: what the backend stores (string, []string, or map[string]string
//     depending on Kind)
//  3. Wire Value: JSON text used for environment overrides, introspection,
//     and snapshots
//
// Options are immutable after construction. A nil Native Value always means
// "absent"; writing nil is equivalent to deleting the stored value.
type Option interface {
	// Name is the unique backend storage key.
	Name() string

	// EnvName is the environment variable that overrides the stored value,
	// or "" when no override is declared.
	EnvName() string

	// Doc is the option's documentation string.
	Doc() string

	// Kind reports the storage shape.
	Kind() Kind

	// NativeType reports the Go type of the option's Native Value.
	NativeType() reflect.Type

	// Default returns the declared default, or nil when there is none.
	Default() any

	// Choices returns the closed set of allowed values, or nil when
	// unrestricted.
	Choices() []any

	// CachePolicy reports the per-option cache preference.
	CachePolicy() CachePolicy

	// DefaultIfEmpty reports whether an explicitly present but empty Raw
	// Value is treated as absent.
	DefaultIfEmpty() bool

	// Validate checks a Native Value against the option's type and choice
	// constraints. A nil value always passes.
	Validate(v any) error

	// Serialize converts a Native Value into a Raw Value.
	Serialize(v any) (any, error)

	// Deserialize converts a Raw Value back into a Native Value.
	Deserialize(raw any) (any, error)

	// SerializeWire converts a Native Value into a Wire Value. A nil value
	// serializes to JSON null.
	SerializeWire(v any) (json.RawMessage, error)

	// DeserializeWire converts a Wire Value back into a Native Value. JSON
	// null deserializes to nil.
	DeserializeWire(data json.RawMessage) (any, error)
}

// spec holds the declaration state shared by every option kind.
type spec struct {
	name           string
	envName        string
	envSet         bool
	doc            string
	def            any
	choices        []any
	choicesSet     bool
	cache          CachePolicy
	defaultIfEmpty bool
	allowEmpty     bool
}

// Param customizes an option declaration.
type Param func(*spec)

// Default declares the option's default value. It must be of the option's
// native type and, if choices are declared, a member of them.
func Default(v any) Param {
	return func(s *spec) { s.def = v }
}

// Choices restricts the option to a closed set of allowed values. Declaring
// an empty set fails construction.
func Choices(vs ...any) Param {
	return func(s *spec) {
		s.choices = vs
		s.choicesSet = true
	}
}

// Env declares an environment variable whose value, parsed as a Wire Value,
// overrides every other source. The name must be non-empty.
func Env(name string) Param {
	return func(s *spec) {
		s.envName = name
		s.envSet = true
	}
}

// Cache declares the option's cache preference, overriding the Config's
// blanket setting.
func Cache(allow bool) Param {
	return func(s *spec) {
		if allow {
			s.cache = CacheAllow
		} else {
			s.cache = CacheDeny
		}
	}
}

// DefaultIfEmpty makes an explicitly present but empty Raw Value resolve to
// the default instead of being deserialized.
func DefaultIfEmpty() Param {
	return func(s *spec) { s.defaultIfEmpty = true }
}

// Doc attaches a documentation string to the option.
func Doc(doc string) Param {
	return func(s *spec) { s.doc = doc }
}

// AllowEmpty controls whether a StringOption accepts the empty string as a
// valid value. Ignored by other kinds. Defaults to true.
func AllowEmpty(allow bool) Param {
	return func(s *spec) { s.allowEmpty = allow }
}

// newSpec applies params and checks the declaration rules common to all kinds.
func newSpec(name string, params ...Param) (*spec, error) {
	s := &spec{name: name, allowEmpty: true}
	for _, p := range params {
		p(s)
	}

	if name == "" {
		return nil, initErrorf("option name cannot be empty")
	}
	if s.envSet && s.envName == "" {
		return nil, initErrorf("environment variable name for option '%s' cannot be empty", name)
	}
	if s.choicesSet && len(s.choices) == 0 {
		return nil, initErrorf("choices for option '%s' cannot be empty", name)
	}
	return s, nil
}

// finish normalizes and validates the declared choices and default using the
// concrete option's own rules. Called at the end of every constructor.
func (s *spec) finish(o Option, normalize func(any) (any, error)) error {
	for i, ch := range s.choices {
		v, err := normalize(ch)
		if err != nil {
			return initErrorf("choice %v for option '%s': %v", ch, s.name, err)
		}
		s.choices[i] = v
	}
	for _, ch := range s.choices {
		if err := o.Validate(ch); err != nil {
			return err
		}
	}
	if s.def != nil {
		v, err := normalize(s.def)
		if err != nil {
			return initErrorf("default %v for option '%s': %v", s.def, s.name, err)
		}
		s.def = v
		if err := o.Validate(s.def); err != nil {
			return err
		}
	}
	return nil
}

func (s *spec) Name() string             { return s.name }
func (s *spec) EnvName() string          { return s.envName }
func (s *spec) Doc() string              { return s.doc }
func (s *spec) Default() any             { return cloneValue(s.def) }
func (s *spec) Choices() []any           { return cloneChoices(s.choices) }
func (s *spec) CachePolicy() CachePolicy { return s.cache }
func (s *spec) DefaultIfEmpty() bool     { return s.defaultIfEmpty }

// checkChoices enforces choice membership. Concrete kinds call it from their
// Validate after the type check.
func (s *spec) checkChoices(v any) error {
	if s.choices == nil {
		return nil
	}
	for _, ch := range s.choices {
		if equalValues(v, ch) {
			return nil
		}
	}
	return validationErrorf(s.name, v, "not one of the choices %v", s.choices)
}

// Must panics when an option declaration fails. Declarations are static
// program facts, so a failure is a programming error.
func Must[T Option](o T, err error) T {
	if err != nil {
		panic(err)
	}
	return o
}
