// FILE: nativeconfig/decode.go
package nativeconfig

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Scan resolves every registered option and decodes the result into target,
// which must be a non-nil struct pointer. Fields match options by storage
// name through the `config` tag:
//
//	type Settings struct {
//	    Font    string        `config:"Font"`
//	    Timeout time.Duration `config:"Timeout"`
//	}
//
// Values go through the normal resolution order, so environment and one-shot
// overrides are honored. Absent values leave the field zero.
func (c *Config) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	values := make(map[string]any, c.reg.Len())
	for _, o := range c.reg.Options() {
		v, _, err := c.readOption(o)
		if err != nil {
			return err
		}
		if v != nil {
			values[o.Name()] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "config",
		WeaklyTypedInput: true,
		DecodeHook:       scanDecodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	return nil
}

func scanDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}
