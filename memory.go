// FILE: nativeconfig/memory.go
package nativeconfig

import (
	"maps"
	"slices"
	"sync"
)

// MemoryBackend stores raw values in an in-process map. It backs the chain
// resolver's temporary layer and is handy in tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]any)}
}

func (b *MemoryBackend) GetScalar(name string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s, ok := b.values[name].(string)
	return s, ok
}

func (b *MemoryBackend) SetScalar(name string, raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[name] = raw
}

func (b *MemoryBackend) GetArray(name string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	vs, ok := b.values[name].([]string)
	if !ok {
		return nil, false
	}
	return slices.Clone(vs), true
}

func (b *MemoryBackend) SetArray(name string, raw []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if raw == nil {
		delete(b.values, name)
		return
	}
	b.values[name] = slices.Clone(raw)
}

func (b *MemoryBackend) GetMap(name string) (map[string]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	vm, ok := b.values[name].(map[string]string)
	if !ok {
		return nil, false
	}
	return maps.Clone(vm), true
}

func (b *MemoryBackend) SetMap(name string, raw map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if raw == nil {
		delete(b.values, name)
		return
	}
	b.values[name] = maps.Clone(raw)
}

func (b *MemoryBackend) Delete(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.values, name)
}

// Len reports the number of stored values.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.values)
}
