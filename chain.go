// FILE: nativeconfig/chain.go
package nativeconfig

import "encoding/json"

// Chain resolves options across several Configs, oldest last. Reads consult
// a synthetic in-memory temporary config first, then each member in order;
// the first value not resolved from an option default wins. When every
// member falls through, the first non-nil default across the members is
// returned.
//
// Writes never touch the member configs. Set, SetOneShot and Delete apply to
// the temporary config only.
type Chain struct {
	temp    *Config
	configs []*Config
}

// NewChain builds a chain over configs, newest first. Every member must
// register the same option names with matching kinds and native types;
// mismatches fail construction.
func NewChain(configs ...*Config) (*Chain, error) {
	if len(configs) == 0 {
		return nil, initErrorf("chain requires at least one config")
	}

	head := configs[0].Registry()
	for _, c := range configs[1:] {
		reg := c.Registry()
		if reg.Len() != head.Len() {
			return nil, initErrorf("chained configs must register the same options")
		}
		for _, o := range head.Options() {
			other, ok := reg.Option(o.Name())
			if !ok {
				return nil, initErrorf("chained config is missing option '%s'", o.Name())
			}
			if other.Kind() != o.Kind() || other.NativeType() != o.NativeType() {
				return nil, initErrorf("chained configs disagree on option '%s'", o.Name())
			}
		}
	}

	// The temporary config skips migration so it starts with nothing stored
	// and never shadows a member's version marker.
	temp, err := New(head, NewMemoryBackend(),
		WithMigration(func(*Config, string) error { return nil }),
	)
	if err != nil {
		return nil, err
	}

	return &Chain{temp: temp, configs: configs}, nil
}

// Temporary returns the chain's scratch config, the target of all writes.
func (ch *Chain) Temporary() *Config { return ch.temp }

// Read resolves an option across the chain, reporting the winning source.
func (ch *Chain) Read(name string) (any, Source, error) {
	v, src, err := ch.temp.Read(name)
	if err != nil {
		return nil, src, err
	}
	if src != SourceDefault && v != nil {
		return v, src, nil
	}

	// Remember the first non-nil default seen; a member without a default
	// must not mask a later member's.
	var firstDefault any
	for _, c := range ch.configs {
		v, src, err := c.Read(name)
		if err != nil {
			return nil, src, err
		}
		if src != SourceDefault {
			return v, src, nil
		}
		if firstDefault == nil {
			firstDefault = v
		}
	}
	return firstDefault, SourceDefault, nil
}

// Get resolves an option's Native Value across the chain.
func (ch *Chain) Get(name string) (any, error) {
	v, _, err := ch.Read(name)
	return v, err
}

// GetWire resolves an option across the chain as a Wire Value.
func (ch *Chain) GetWire(name string) (json.RawMessage, error) {
	o, err := ch.temp.OptionForName(name)
	if err != nil {
		return nil, err
	}
	v, _, err := ch.Read(name)
	if err != nil {
		return nil, err
	}
	return o.SerializeWire(v)
}

// Set stores a value in the temporary config, overriding every member for
// subsequent reads.
func (ch *Chain) Set(name string, v any) error {
	return ch.temp.Set(name, v)
}

// SetOneShot stages a one-shot override in the temporary config.
func (ch *Chain) SetOneShot(name string, v any) error {
	return ch.temp.SetOneShot(name, v)
}

// Delete removes an override from the temporary config, exposing the member
// configs again.
func (ch *Chain) Delete(name string) error {
	return ch.temp.Delete(name)
}
