// FILE: nativeconfig/io.go
package nativeconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a FileBackend document.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// formatForPath infers the encoding from the file extension, defaulting to
// JSON.
func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".conf":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// FileBackend stores raw values in a single flat document on disk. Scalars
// are strings, arrays are string lists, mappings are string-to-string tables.
// Keys with any other shape read as absent.
//
// Per the backend contract, I/O failures are absorbed: reads degrade to
// absent and writes become logged no-ops. Each write rewrites the whole
// document atomically via a temp file rename.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	format Format
	log    *slog.Logger
}

// FileBackendOption customizes FileBackend construction.
type FileBackendOption func(*FileBackend)

// WithFormat forces the encoding instead of inferring it from the extension.
func WithFormat(f Format) FileBackendOption {
	return func(b *FileBackend) { b.format = f }
}

// WithBackendLogger sets the logger used for absorbed I/O failures.
func WithBackendLogger(l *slog.Logger) FileBackendOption {
	return func(b *FileBackend) { b.log = l }
}

// NewFileBackend creates a backend persisting to path. The file does not
// need to exist yet.
func NewFileBackend(path string, opts ...FileBackendOption) *FileBackend {
	b := &FileBackend{
		path:   path,
		format: formatForPath(path),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Path returns the backing file path.
func (b *FileBackend) Path() string { return b.path }

// load reads and decodes the whole document. Missing files and parse
// failures both degrade to an empty document.
func (b *FileBackend) load() map[string]any {
	doc := make(map[string]any)

	data, err := os.ReadFile(b.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.log.Warn("failed to read config file", "path", b.path, "error", err)
		}
		return doc
	}

	switch b.format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		b.log.Warn("failed to parse config file", "path", b.path, "format", b.format, "error", err)
		return make(map[string]any)
	}
	return doc
}

// store encodes and atomically rewrites the whole document. Failures are
// logged and dropped.
func (b *FileBackend) store(doc map[string]any) {
	var (
		data []byte
		err  error
	)
	switch b.format {
	case FormatTOML:
		var buf bytes.Buffer
		if err = toml.NewEncoder(&buf).Encode(doc); err == nil {
			data = buf.Bytes()
		}
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	default:
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		b.log.Warn("failed to marshal config file", "path", b.path, "format", b.format, "error", err)
		return
	}

	if err := atomicWriteFile(b.path, data); err != nil {
		b.log.Warn("failed to write config file", "path", b.path, "error", err)
	}
}

// GetScalar implements Backend.
func (b *FileBackend) GetScalar(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.load()[name].(string)
	return s, ok
}

// SetScalar implements Backend.
func (b *FileBackend) SetScalar(name, raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := b.load()
	doc[name] = raw
	b.store(doc)
}

// GetArray implements Backend.
func (b *FileBackend) GetArray(name string) ([]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return stringSlice(b.load()[name])
}

// SetArray implements Backend. A nil value deletes the key.
func (b *FileBackend) SetArray(name string, raw []string) {
	if raw == nil {
		b.Delete(name)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc := b.load()
	doc[name] = raw
	b.store(doc)
}

// GetMap implements Backend.
func (b *FileBackend) GetMap(name string) (map[string]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return stringMap(b.load()[name])
}

// SetMap implements Backend. A nil value deletes the key.
func (b *FileBackend) SetMap(name string, raw map[string]string) {
	if raw == nil {
		b.Delete(name)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc := b.load()
	doc[name] = raw
	b.store(doc)
}

// Delete implements Backend.
func (b *FileBackend) Delete(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := b.load()
	if _, ok := doc[name]; !ok {
		return
	}
	delete(doc, name)
	b.store(doc)
}

// stringSlice coerces a decoded document value back to []string. The codecs
// hand lists back as []any (JSON, YAML) or []string round-tripped through
// our own writes.
func stringSlice(v any) ([]string, bool) {
	switch vs := v.(type) {
	case []string:
		return vs, true
	case []any:
		out := make([]string, len(vs))
		for i, e := range vs {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// stringMap coerces a decoded document value back to map[string]string.
func stringMap(v any) (map[string]string, bool) {
	switch vm := v.(type) {
	case map[string]string:
		return vm, true
	case map[string]any:
		out := make(map[string]string, len(vm))
		for k, e := range vm {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// atomicWriteFile writes data to path through a temp file in the same
// directory, so readers never observe a partial document.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
