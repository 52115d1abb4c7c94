// FILE: nativeconfig/doc.go

// Package nativeconfig provides typed, validated, persistent configuration
// values stored in interchangeable backends behind one uniform API.
//
// Features:
//   - Typed options (string, bool, int, float, path, duration, enum) plus
//     arrays and string mappings built from any scalar option
//   - Per-value resolution precedence: environment override, staged one-shot
//     value, stored value, declared default
//   - Choice constraints and per-option validation
//   - Ordered registries with inheritance-style merging across groups
//   - Pluggable backends: in-memory, or a JSON/TOML/YAML file written
//     atomically
//   - Raw-value caching with per-option and per-config policies
//   - JSON snapshots and order-preserving restore
//   - Version marker and migration hook for upgrading stored layouts
//   - Chained configs with first-non-default-wins resolution
//
// Quick Start:
//
//	font := nativeconfig.Must(nativeconfig.NewStringOption("Font",
//	    nativeconfig.Default("Menlo"),
//	    nativeconfig.Env("MYAPP_FONT"),
//	))
//	size := nativeconfig.Must(nativeconfig.NewIntOption("FontSize",
//	    nativeconfig.Default(12),
//	))
//
//	reg, err := nativeconfig.NewRegistry([]nativeconfig.Field{
//	    {Attr: "Font", Option: font},
//	    {Attr: "FontSize", Option: size},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := nativeconfig.New(reg, nativeconfig.NewFileBackend("settings.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name, _, _ := font.Read(cfg)
//	_ = size.Set(cfg, 14)
//
// Resolution Precedence (highest to lowest):
//  1. Environment variable (Wire JSON, e.g. MYAPP_FONT='"Monaco"')
//  2. One-shot value staged on the Config
//  3. Value stored in the backend
//  4. Declared default
//
// Thread Safety:
// Each Config serializes backend access behind a non-reentrant mutex. Use
// Locked with the *LockFree accessors to batch several operations under one
// acquisition.
package nativeconfig
