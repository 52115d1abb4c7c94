// FILE: nativeconfig/backend.go
package nativeconfig

// Backend is the minimal storage contract a Config persists through.
//
// Implementations adapt a concrete substrate (a registry-like key store, an
// OS preference store, a structured file, an in-process map) and must absorb
// every substrate failure at this boundary: reads degrade to absent, writes
// and deletes to logged no-ops. Nothing above the adapter ever sees an I/O
// error, so configuration access degrades gracefully instead of crashing the
// caller. Failed writes are never retried.
//
// A value stored under a foreign shape (a scalar where an array is expected,
// and so on) reads as absent.
//
// All operations are cache-free and require no locking beyond what Config
// itself applies. Coordination across processes sharing a substrate is out of
// scope: the last writer wins.
type Backend interface {
	// GetScalar returns the raw string stored under name.
	GetScalar(name string) (string, bool)

	// SetScalar stores a raw string under name.
	SetScalar(name string, raw string)

	// GetArray returns the raw string list stored under name.
	GetArray(name string) ([]string, bool)

	// SetArray stores a raw string list under name. A nil value deletes.
	SetArray(name string, raw []string)

	// GetMap returns the raw string mapping stored under name.
	GetMap(name string) (map[string]string, bool)

	// SetMap stores a raw string mapping under name. A nil value deletes.
	SetMap(name string, raw map[string]string)

	// Delete removes whatever is stored under name.
	Delete(name string)
}
