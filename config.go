// FILE: nativeconfig/config.go
package nativeconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// MigrateFunc upgrades backend contents from a stored version to the current
// one. It runs during Config construction, even when the versions match.
// storedVersion is empty when the backend holds no version marker yet.
type MigrateFunc func(c *Config, storedVersion string) error

// Config binds an option registry to a storage backend. It owns the raw-value
// cache, the per-instance lock serializing backend access, and the resolve
// hook for corrupted values.
//
// The lock is non-reentrant: re-entering the locking API from inside a Locked
// batch deadlocks. Use the *LockFree variants there.
type Config struct {
	reg     *Registry
	backend Backend

	mu      sync.Mutex
	cache   map[string]any // raw value, or nil for a known-absent marker
	oneShot map[string]any

	allowCache bool
	version    string
	resolver   ResolveFunc
	migrateFn  MigrateFunc
	log        *slog.Logger
}

// ConfigOption customizes Config construction.
type ConfigOption func(*Config)

// WithAllowCache sets the Config's blanket cache default. Individual options
// may still opt in or out via their own cache policy.
func WithAllowCache(allow bool) ConfigOption {
	return func(c *Config) { c.allowCache = allow }
}

// WithVersion sets the version written to the ConfigVersion marker by the
// default migration.
func WithVersion(version string) ConfigOption {
	return func(c *Config) { c.version = version }
}

// WithResolver replaces the hook invoked when a stored or overriding value
// cannot be deserialized or validated. The default logs and degrades to the
// option's default; tests typically re-raise instead.
func WithResolver(fn ResolveFunc) ConfigOption {
	return func(c *Config) { c.resolver = fn }
}

// WithMigration replaces the default migration, which rewrites the
// ConfigVersion marker.
func WithMigration(fn MigrateFunc) ConfigOption {
	return func(c *Config) { c.migrateFn = fn }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ConfigOption {
	return func(c *Config) { c.log = l }
}

// New binds a registry to a backend and runs the migration hook.
func New(reg *Registry, backend Backend, opts ...ConfigOption) (*Config, error) {
	if reg == nil {
		return nil, initErrorf("config requires a registry")
	}
	if backend == nil {
		return nil, initErrorf("config requires a backend")
	}

	// The registry enforces name uniqueness at construction; re-check here so
	// a hand-built registry cannot smuggle duplicates past the Config.
	seen := make(map[string]bool, reg.Len())
	for _, o := range reg.Options() {
		if seen[o.Name()] {
			return nil, initErrorf("duplicate option named '%s'", o.Name())
		}
		seen[o.Name()] = true
	}

	c := &Config{
		reg:      reg,
		backend:  backend,
		cache:    make(map[string]any),
		oneShot:  make(map[string]any),
		version:  DefaultConfigVersion,
		resolver: defaultResolver,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.runMigration(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) runMigration() error {
	vo, ok := c.reg.Option(ConfigVersionName)
	if !ok {
		return nil
	}

	stored := ""
	if raw, ok := c.ScalarValue(ConfigVersionName, false); ok {
		stored = raw
	}
	if c.migrateFn != nil {
		return c.migrateFn(c, stored)
	}
	return c.writeOption(vo, c.version)
}

// Registry returns the registry this Config resolves against.
func (c *Config) Registry() *Registry { return c.reg }

// Version returns the version the default migration writes.
func (c *Config) Version() string { return c.version }

//
// By-name access. Unknown names always fail loudly.
//

// OptionForName looks up a registered option.
func (c *Config) OptionForName(name string) (Option, error) {
	o, ok := c.reg.Option(name)
	if !ok {
		return nil, &UnknownOptionError{Name: name}
	}
	return o, nil
}

// Read resolves an option's Native Value by name, reporting the winning
// source.
func (c *Config) Read(name string) (any, Source, error) {
	o, err := c.OptionForName(name)
	if err != nil {
		return nil, SourceDefault, err
	}
	return c.readOption(o)
}

// Get resolves an option's Native Value by name. A nil value means absent.
func (c *Config) Get(name string) (any, error) {
	v, _, err := c.Read(name)
	return v, err
}

// Set validates, serializes and stores a Native Value by name. A nil value
// deletes the stored value.
func (c *Config) Set(name string, v any) error {
	o, err := c.OptionForName(name)
	if err != nil {
		return err
	}
	return c.writeOption(o, v)
}

// Delete removes an option's stored value, so reads fall back to the default.
func (c *Config) Delete(name string) error {
	o, err := c.OptionForName(name)
	if err != nil {
		return err
	}
	c.deleteOption(o)
	return nil
}

// GetRaw resolves an option by name and returns its Raw Value form. Absent
// values return nil.
func (c *Config) GetRaw(name string) (any, error) {
	o, err := c.OptionForName(name)
	if err != nil {
		return nil, err
	}
	v, _, err := c.readOption(o)
	if err != nil || v == nil {
		return nil, err
	}
	return o.Serialize(v)
}

// SetRaw deserializes a Raw Value and stores it by name.
func (c *Config) SetRaw(name string, raw any) error {
	o, err := c.OptionForName(name)
	if err != nil {
		return err
	}
	v, err := o.Deserialize(raw)
	if err != nil {
		return err
	}
	return c.writeOption(o, v)
}

// GetWire resolves an option by name and returns its Wire Value. Absent
// values encode as JSON null.
func (c *Config) GetWire(name string) (json.RawMessage, error) {
	o, err := c.OptionForName(name)
	if err != nil {
		return nil, err
	}
	v, _, err := c.readOption(o)
	if err != nil {
		return nil, err
	}
	return o.SerializeWire(v)
}

// SetWire parses a Wire Value and stores it by name. Writing JSON null is
// exactly equivalent to deleting the option.
func (c *Config) SetWire(name string, data json.RawMessage) error {
	o, err := c.OptionForName(name)
	if err != nil {
		return err
	}
	v, err := o.DeserializeWire(data)
	if err != nil {
		return err
	}
	return c.writeOption(o, v)
}

// SetOneShot stages a transient value that reads prefer over the stored
// value, but never over an environment override. It is cleared by the next
// write or delete of the option. A nil one-shot masks the stored value, so
// reads resolve to the default.
func (c *Config) SetOneShot(name string, v any) error {
	o, err := c.OptionForName(name)
	if err != nil {
		return err
	}
	if v != nil {
		if err := o.Validate(v); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.oneShot[name] = v
	return nil
}

// ValidateValue checks a Native Value against a named option's constraints
// without storing it.
func (c *Config) ValidateValue(name string, v any) error {
	o, err := c.OptionForName(name)
	if err != nil {
		return err
	}
	return o.Validate(v)
}

func (c *Config) oneShotValue(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.oneShot[name]
	return v, ok
}

func (c *Config) clearOneShot(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.oneShot, name)
}

//
// Introspection and snapshots.
//

// Item is one option's resolved Wire Value and its source.
type Item struct {
	Name   string
	Value  json.RawMessage
	Source Source
}

// Options returns every registered option in declaration order.
func (c *Config) Options() []Option { return c.reg.Options() }

// Items resolves every option in registry order.
func (c *Config) Items() ([]Item, error) {
	items := make([]Item, 0, c.reg.Len())
	for _, o := range c.reg.Options() {
		v, src, err := c.readOption(o)
		if err != nil {
			return nil, err
		}
		wire, err := o.SerializeWire(v)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Name: o.Name(), Value: wire, Source: src})
	}
	return items, nil
}

// Snapshot captures the full config as one Wire JSON object keyed by storage
// name in declaration order.
func (c *Config) Snapshot() ([]byte, error) {
	items, err := c.Items()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range items {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(it.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RestoreSnapshot writes a snapshot back, iterating the object's own key
// order through the normal by-name writer. Unknown keys fail.
func (c *Config) RestoreSnapshot(snapshot []byte) error {
	dec := json.NewDecoder(bytes.NewReader(snapshot))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("snapshot must be keyed by option name")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to parse snapshot value for '%s': %w", name, err)
		}
		if err := c.SetWire(name, value); err != nil {
			return err
		}
	}
	return nil
}

//
// Recovery and migrations.
//

// Reset deletes every option's stored value, not merely the cache.
func (c *Config) Reset() {
	for _, o := range c.reg.Options() {
		c.deleteOption(o)
	}
}

// RenameValue migrates a stored raw scalar from one storage name to another,
// optionally transforming it. A missing old value only deletes. Intended for
// use inside a migration hook.
func (c *Config) RenameValue(oldName, newName string, transform func(string) string) {
	if raw, ok := c.ScalarValue(oldName, false); ok {
		if transform != nil {
			raw = transform(raw)
		}
		c.SetScalarValue(newName, raw, false)
	}
	c.DeleteValue(oldName, false)
}

//
// Lock-guarded backend access with the raw-value cache.
//

// Locked runs fn while holding the Config's lock, releasing it on every exit
// path. Use the *LockFree accessors inside fn; calling any locking method
// there deadlocks.
func (c *Config) Locked(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn()
}

// InvalidateCache discards every cached raw value and absent marker.
func (c *Config) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]any)
}

// ScalarValue reads a raw scalar through the cache layer.
func (c *Config) ScalarValue(name string, allowCache bool) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ScalarValueLockFree(name, allowCache)
}

// ScalarValueLockFree is ScalarValue for callers already holding the lock.
func (c *Config) ScalarValueLockFree(name string, allowCache bool) (string, bool) {
	if allowCache {
		if cached, known := c.cache[name]; known {
			s, present := cached.(string)
			return s, present
		}
	}
	raw, ok := c.backend.GetScalar(name)
	if ok {
		c.cache[name] = raw
	} else {
		c.cache[name] = nil
	}
	return raw, ok
}

// SetScalarValue writes a raw scalar through the cache layer. With caching
// allowed, a write equal to the cached value never touches the backend.
func (c *Config) SetScalarValue(name, raw string, allowCache bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetScalarValueLockFree(name, raw, allowCache)
}

// SetScalarValueLockFree is SetScalarValue for callers already holding the
// lock.
func (c *Config) SetScalarValueLockFree(name, raw string, allowCache bool) {
	if cached, known := c.cache[name]; allowCache && known && rawEqual(cached, raw) {
		return
	}
	c.backend.SetScalar(name, raw)
	c.cache[name] = raw
	c.log.Debug("value set", "option", name, "raw", raw)
}

// ArrayValue reads a raw array through the cache layer.
func (c *Config) ArrayValue(name string, allowCache bool) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ArrayValueLockFree(name, allowCache)
}

// ArrayValueLockFree is ArrayValue for callers already holding the lock.
func (c *Config) ArrayValueLockFree(name string, allowCache bool) ([]string, bool) {
	if allowCache {
		if cached, known := c.cache[name]; known {
			vs, present := cached.([]string)
			return vs, present
		}
	}
	raw, ok := c.backend.GetArray(name)
	if ok {
		c.cache[name] = raw
	} else {
		c.cache[name] = nil
	}
	return raw, ok
}

// SetArrayValue writes a raw array through the cache layer.
func (c *Config) SetArrayValue(name string, raw []string, allowCache bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetArrayValueLockFree(name, raw, allowCache)
}

// SetArrayValueLockFree is SetArrayValue for callers already holding the
// lock.
func (c *Config) SetArrayValueLockFree(name string, raw []string, allowCache bool) {
	if cached, known := c.cache[name]; allowCache && known && rawEqual(cached, raw) {
		return
	}
	c.backend.SetArray(name, raw)
	c.cache[name] = raw
	c.log.Debug("array value set", "option", name, "raw", raw)
}

// MapValue reads a raw mapping through the cache layer.
func (c *Config) MapValue(name string, allowCache bool) (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.MapValueLockFree(name, allowCache)
}

// MapValueLockFree is MapValue for callers already holding the lock.
func (c *Config) MapValueLockFree(name string, allowCache bool) (map[string]string, bool) {
	if allowCache {
		if cached, known := c.cache[name]; known {
			vm, present := cached.(map[string]string)
			return vm, present
		}
	}
	raw, ok := c.backend.GetMap(name)
	if ok {
		c.cache[name] = raw
	} else {
		c.cache[name] = nil
	}
	return raw, ok
}

// SetMapValue writes a raw mapping through the cache layer.
func (c *Config) SetMapValue(name string, raw map[string]string, allowCache bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SetMapValueLockFree(name, raw, allowCache)
}

// SetMapValueLockFree is SetMapValue for callers already holding the lock.
func (c *Config) SetMapValueLockFree(name string, raw map[string]string, allowCache bool) {
	if cached, known := c.cache[name]; allowCache && known && rawEqual(cached, raw) {
		return
	}
	c.backend.SetMap(name, raw)
	c.cache[name] = raw
	c.log.Debug("map value set", "option", name, "raw", raw)
}

// DeleteValue removes a raw value through the cache layer. With caching
// allowed, deleting a value already known absent never touches the backend.
func (c *Config) DeleteValue(name string, allowCache bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DeleteValueLockFree(name, allowCache)
}

// DeleteValueLockFree is DeleteValue for callers already holding the lock.
func (c *Config) DeleteValueLockFree(name string, allowCache bool) {
	if cached, known := c.cache[name]; allowCache && known && cached == nil {
		return
	}
	c.backend.Delete(name)
	c.cache[name] = nil
	c.log.Debug("value deleted", "option", name)
}
