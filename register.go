// FILE: nativeconfig/register.go
package nativeconfig

// Field binds an attribute name to its declared option.
type Field struct {
	Attr   string
	Option Option
}

// Registry is the deterministic, ordered, conflict-checked set of options for
// one config type. It is built once and then frozen.
type Registry struct {
	fields []Field
	byName map[string]Option
	byAttr map[string]Option
}

// Name of the built-in option that stores the config version marker.
const ConfigVersionName = "ConfigVersion"

// DefaultConfigVersion is written by the default migration when no version is
// configured explicitly.
const DefaultConfigVersion = "1.0"

func versionField() Field {
	o, err := NewStringOption(ConfigVersionName,
		Default(DefaultConfigVersion),
		Doc("Version of the config."))
	if err != nil {
		panic(err)
	}
	return Field{Attr: ConfigVersionName, Option: o}
}

// NewRegistry merges option declarations into one ordered registry.
//
// Groups are flattened oldest to newest, mirroring a base-to-subclass
// declaration order: when a later group re-declares an existing storage name,
// the old entry is removed and the new one appended, so the last declaration
// wins both value and position. The replacing option must keep the replaced
// option's storage kind and native type; anything else fails construction.
// Two fields naming the same storage key within a single group always fail.
//
// Every registry starts with a ConfigVersion string option as its oldest
// entry.
func NewRegistry(groups ...[]Field) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Option),
		byAttr: make(map[string]Option),
	}
	if err := r.add(versionField()); err != nil {
		panic(err)
	}

	for _, group := range groups {
		names := make(map[string]string, len(group))
		for _, f := range group {
			if f.Option == nil {
				return nil, initErrorf("field '%s' has no option", f.Attr)
			}
			if f.Attr == "" {
				return nil, initErrorf("option '%s' declared without an attribute name", f.Option.Name())
			}
			if prev, dup := names[f.Option.Name()]; dup {
				return nil, initErrorf("fields '%s' and '%s' both declare option '%s'",
					prev, f.Attr, f.Option.Name())
			}
			names[f.Option.Name()] = f.Attr
		}
		for _, f := range group {
			if err := r.add(f); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) add(f Field) error {
	name := f.Option.Name()

	if old, ok := r.byName[name]; ok {
		if f.Option.Kind() != old.Kind() {
			return initErrorf("option '%s' is re-declared as %s kind while expected %s",
				name, f.Option.Kind(), old.Kind())
		}
		if f.Option.NativeType() != old.NativeType() {
			return initErrorf("option '%s' is re-declared with native type %s while expected %s",
				name, f.Option.NativeType(), old.NativeType())
		}
		r.remove(name)
	}

	if old, ok := r.byAttr[f.Attr]; ok {
		if old.Name() != name {
			return initErrorf("attribute '%s' represents different options: '%s' and '%s'",
				f.Attr, old.Name(), name)
		}
		r.removeAttr(f.Attr)
	}

	r.fields = append(r.fields, f)
	r.byName[name] = f.Option
	r.byAttr[f.Attr] = f.Option
	return nil
}

func (r *Registry) remove(name string) {
	for i, f := range r.fields {
		if f.Option.Name() == name {
			delete(r.byAttr, f.Attr)
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			break
		}
	}
	delete(r.byName, name)
}

func (r *Registry) removeAttr(attr string) {
	for i, f := range r.fields {
		if f.Attr == attr {
			delete(r.byName, f.Option.Name())
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			break
		}
	}
	delete(r.byAttr, attr)
}

// Option looks up an option by storage name.
func (r *Registry) Option(name string) (Option, bool) {
	o, ok := r.byName[name]
	return o, ok
}

// OptionForAttr looks up an option by attribute name.
func (r *Registry) OptionForAttr(attr string) (Option, bool) {
	o, ok := r.byAttr[attr]
	return o, ok
}

// Options returns every option in declaration order.
func (r *Registry) Options() []Option {
	out := make([]Option, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Option
	}
	return out
}

// Fields returns every (attribute, option) pair in declaration order.
func (r *Registry) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len reports the number of registered options.
func (r *Registry) Len() int { return len(r.fields) }
