// FILE: nativeconfig/errors.go
package nativeconfig

import "fmt"

// InitializationError reports a malformed option or registry declaration.
// It is only ever returned at construction time and is never recoverable
// at runtime.
type InitializationError struct {
	Reason string
}

// Error implements the error interface.
func (e *InitializationError) Error() string {
	return "initialization failed: " + e.Reason
}

func initErrorf(format string, args ...any) *InitializationError {
	return &InitializationError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports a Native Value that violates an option's type or
// choice constraints.
type ValidationError struct {
	Option string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for option '%s': %s", e.Value, e.Option, e.Reason)
}

func validationErrorf(name string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{Option: name, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// DeserializationError reports a Raw or Wire Value that cannot be parsed into
// a Native Value.
type DeserializationError struct {
	Option string
	Raw    any
	Reason string
}

// Error implements the error interface.
func (e *DeserializationError) Error() string {
	return fmt.Sprintf("cannot deserialize %v for option '%s': %s", e.Raw, e.Option, e.Reason)
}

func deserializationErrorf(name string, raw any, format string, args ...any) *DeserializationError {
	return &DeserializationError{Option: name, Raw: raw, Reason: fmt.Sprintf(format, args...)}
}

// UnknownOptionError reports by-name access to an option that is not part of
// the registry. Unknown names always fail loudly, they are never silently
// ignored.
type UnknownOptionError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("no option named '%s'", e.Name)
}
