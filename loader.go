// FILE: nativeconfig/loader.go
package nativeconfig

import (
	"encoding/json"
	"os"
)

// Source identifies where a resolved value originated.
type Source string

const (
	// SourceDefault means no other source produced a value.
	SourceDefault Source = "default"
	// SourceConfig means the value was deserialized from the backend.
	SourceConfig Source = "config"
	// SourceOneShot means a staged one-shot override produced the value.
	SourceOneShot Source = "one_shot"
	// SourceEnv means an environment override produced the value.
	SourceEnv Source = "env"
	// SourceResolver means the value came out of the Config's resolve hook
	// after a deserialization or validation failure.
	SourceResolver Source = "resolver"
)

// ResolveFunc is invoked whenever deserialization or post-deserialization
// validation fails for any source consulted while reading an option. It
// receives the failure, the option name, the offending raw or wire value, and
// the source it came from, and decides the value to use instead. Returning an
// error propagates it to the reader.
type ResolveFunc func(c *Config, cause error, name string, value any, source Source) (any, error)

// defaultResolver logs the failure and degrades to the option's default, so a
// corrupted store never blocks the caller.
func defaultResolver(c *Config, cause error, name string, value any, source Source) (any, error) {
	c.log.Error("cannot resolve value, using default",
		"option", name, "value", value, "source", string(source), "error", cause)
	o, ok := c.reg.Option(name)
	if !ok {
		return nil, cause
	}
	return o.Default(), nil
}

// readOption resolves an option's value in strict precedence order:
//
//  1. environment override, parsed as a Wire Value
//  2. staged one-shot override
//  3. backend value, deserialized
//  4. default
//
// Deserialization and validation failures never surface directly; they are
// routed through the Config's resolve hook.
func (c *Config) readOption(o Option) (any, Source, error) {
	name := o.Name()

	if envName := o.EnvName(); envName != "" {
		if val, ok := os.LookupEnv(envName); ok {
			c.log.Debug("value overridden by environment variable",
				"option", name, "var", envName)
			v, err := o.DeserializeWire(json.RawMessage(val))
			if err == nil {
				err = o.Validate(v)
			}
			if err != nil {
				return c.resolveFailed(err, name, val, SourceEnv)
			}
			if v != nil {
				return v, SourceEnv, nil
			}
		}
	}

	if v, ok := c.oneShotValue(name); ok {
		if v != nil {
			return v, SourceOneShot, nil
		}
		// A nil one-shot masks the stored value until the next write.
	} else {
		allowCache := c.effectiveCache(o)
		if raw, ok := c.rawForOption(o, allowCache); ok {
			if !(o.DefaultIfEmpty() && rawEmpty(raw)) {
				v, err := o.Deserialize(raw)
				if err == nil {
					err = o.Validate(v)
				}
				if err != nil {
					return c.resolveFailed(err, name, raw, SourceConfig)
				}
				return v, SourceConfig, nil
			}
		}
	}

	c.log.Debug("no value is set, using default", "option", name)
	return o.Default(), SourceDefault, nil
}

func (c *Config) resolveFailed(cause error, name string, value any, source Source) (any, Source, error) {
	v, err := c.resolver(c, cause, name, value, source)
	if err != nil {
		return nil, SourceResolver, err
	}
	return v, SourceResolver, nil
}

// writeOption validates, serializes and stores a Native Value. A nil value
// deletes the stored value. Any staged one-shot override is cleared first.
// Unlike read-side failures, validation errors propagate to the caller.
func (c *Config) writeOption(o Option, v any) error {
	if v == nil {
		c.deleteOption(o)
		return nil
	}
	c.clearOneShot(o.Name())

	if err := o.Validate(v); err != nil {
		return err
	}
	raw, err := o.Serialize(v)
	if err != nil {
		return err
	}

	allowCache := c.effectiveCache(o)
	switch o.Kind() {
	case KindArray:
		c.SetArrayValue(o.Name(), raw.([]string), allowCache)
	case KindMap:
		c.SetMapValue(o.Name(), raw.(map[string]string), allowCache)
	default:
		c.SetScalarValue(o.Name(), raw.(string), allowCache)
	}
	return nil
}

// deleteOption removes an option's stored value and clears any staged
// one-shot override.
func (c *Config) deleteOption(o Option) {
	c.clearOneShot(o.Name())
	c.DeleteValue(o.Name(), c.effectiveCache(o))
}

// effectiveCache resolves the option's cache tri-state against the Config's
// blanket setting.
func (c *Config) effectiveCache(o Option) bool {
	switch o.CachePolicy() {
	case CacheAllow:
		return true
	case CacheDeny:
		return false
	}
	return c.allowCache
}

// rawForOption fetches the backend value through the cache layer appropriate
// for the option's storage kind.
func (c *Config) rawForOption(o Option, allowCache bool) (any, bool) {
	switch o.Kind() {
	case KindArray:
		raw, ok := c.ArrayValue(o.Name(), allowCache)
		if !ok {
			return nil, false
		}
		return raw, true
	case KindMap:
		raw, ok := c.MapValue(o.Name(), allowCache)
		if !ok {
			return nil, false
		}
		return raw, true
	default:
		raw, ok := c.ScalarValue(o.Name(), allowCache)
		if !ok {
			return nil, false
		}
		return raw, true
	}
}
