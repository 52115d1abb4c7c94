// FILE: nativeconfig/loader_test.go
package nativeconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend wraps MemoryBackend and counts calls per operation, so
// tests can observe cache hits and skipped idempotent writes.
type countingBackend struct {
	*MemoryBackend
	gets, sets, deletes int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{MemoryBackend: NewMemoryBackend()}
}

func (b *countingBackend) GetScalar(name string) (string, bool) {
	b.gets++
	return b.MemoryBackend.GetScalar(name)
}

func (b *countingBackend) SetScalar(name, raw string) {
	b.sets++
	b.MemoryBackend.SetScalar(name, raw)
}

func (b *countingBackend) GetArray(name string) ([]string, bool) {
	b.gets++
	return b.MemoryBackend.GetArray(name)
}

func (b *countingBackend) SetArray(name string, raw []string) {
	b.sets++
	b.MemoryBackend.SetArray(name, raw)
}

func (b *countingBackend) GetMap(name string) (map[string]string, bool) {
	b.gets++
	return b.MemoryBackend.GetMap(name)
}

func (b *countingBackend) SetMap(name string, raw map[string]string) {
	b.sets++
	b.MemoryBackend.SetMap(name, raw)
}

func (b *countingBackend) Delete(name string) {
	b.deletes++
	b.MemoryBackend.Delete(name)
}

func newTestConfig(t *testing.T, fields []Field, opts ...ConfigOption) *Config {
	t.Helper()
	reg, err := NewRegistry(fields)
	require.NoError(t, err)
	c, err := New(reg, NewMemoryBackend(), opts...)
	require.NoError(t, err)
	return c
}

// TestResolutionPrecedence walks one option through every source layer.
func TestResolutionPrecedence(t *testing.T) {
	lucky := Must(NewIntOption("LuckyNumber", Default(7), Env("TEST_LUCKY_NUMBER")))
	c := newTestConfig(t, []Field{{Attr: "LuckyNumber", Option: lucky}})

	v, src, err := lucky.Read(c)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
	assert.Equal(t, SourceDefault, src)

	require.NoError(t, lucky.Set(c, 42))
	v, src, err = lucky.Read(c)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, SourceConfig, src)

	require.NoError(t, c.SetOneShot("LuckyNumber", int64(13)))
	v, src, err = lucky.Read(c)
	require.NoError(t, err)
	assert.Equal(t, int64(13), v)
	assert.Equal(t, SourceOneShot, src)

	t.Setenv("TEST_LUCKY_NUMBER", "99")
	v, src, err = lucky.Read(c)
	require.NoError(t, err)
	assert.Equal(t, int64(99), v)
	assert.Equal(t, SourceEnv, src)
}

// TestOneShotSemantics tests the masking and clearing rules of staged
// one-shot values.
func TestOneShotSemantics(t *testing.T) {
	font := Must(NewStringOption("Font", Default("Menlo")))

	t.Run("NilOneShotMasksStoredValue", func(t *testing.T) {
		c := newTestConfig(t, []Field{{Attr: "Font", Option: font}})
		require.NoError(t, font.Set(c, "Monaco"))

		require.NoError(t, c.SetOneShot("Font", nil))
		v, src, err := font.Read(c)
		require.NoError(t, err)
		assert.Equal(t, "Menlo", v)
		assert.Equal(t, SourceDefault, src)
	})

	t.Run("WriteClearsOneShot", func(t *testing.T) {
		c := newTestConfig(t, []Field{{Attr: "Font", Option: font}})
		require.NoError(t, c.SetOneShot("Font", "Courier"))

		require.NoError(t, font.Set(c, "Monaco"))
		v, src, err := font.Read(c)
		require.NoError(t, err)
		assert.Equal(t, "Monaco", v)
		assert.Equal(t, SourceConfig, src)
	})

	t.Run("DeleteClearsOneShot", func(t *testing.T) {
		c := newTestConfig(t, []Field{{Attr: "Font", Option: font}})
		require.NoError(t, c.SetOneShot("Font", "Courier"))

		font.Delete(c)
		v, src, err := font.Read(c)
		require.NoError(t, err)
		assert.Equal(t, "Menlo", v)
		assert.Equal(t, SourceDefault, src)
	})

	t.Run("OneShotValidated", func(t *testing.T) {
		sized := Must(NewIntOption("Size", Choices(10, 12)))
		c := newTestConfig(t, []Field{{Attr: "Size", Option: sized}})
		assert.Error(t, c.SetOneShot("Size", int64(11)))
	})
}

// TestDeleteRestoresDefault tests that stored values never shadow the
// default after deletion.
func TestDeleteRestoresDefault(t *testing.T) {
	font := Must(NewStringOption("Font", Default("Menlo")))
	c := newTestConfig(t, []Field{{Attr: "Font", Option: font}})

	require.NoError(t, font.Set(c, "Monaco"))
	font.Delete(c)

	v, src, err := font.Read(c)
	require.NoError(t, err)
	assert.Equal(t, "Menlo", v)
	assert.Equal(t, SourceDefault, src)
}

// TestDefaultIfEmpty tests that a present-but-empty raw value resolves to
// the default when requested.
func TestDefaultIfEmpty(t *testing.T) {
	font := Must(NewStringOption("Font", Default("Menlo"), DefaultIfEmpty()))
	c := newTestConfig(t, []Field{{Attr: "Font", Option: font}})

	c.SetScalarValue("Font", "", false)

	v, src, err := font.Read(c)
	require.NoError(t, err)
	assert.Equal(t, "Menlo", v)
	assert.Equal(t, SourceDefault, src)
}

// TestCorruptStoreResilience tests that read-side failures go through the
// resolve hook instead of surfacing.
func TestCorruptStoreResilience(t *testing.T) {
	size := Must(NewIntOption("Size", Default(12)))

	t.Run("DefaultResolverDegradesToDefault", func(t *testing.T) {
		c := newTestConfig(t, []Field{{Attr: "Size", Option: size}})
		c.SetScalarValue("Size", "not a number", false)

		v, src, err := size.Read(c)
		require.NoError(t, err)
		assert.Equal(t, int64(12), v)
		assert.Equal(t, SourceResolver, src)
	})

	t.Run("ResolverInvokedExactlyOnce", func(t *testing.T) {
		calls := 0
		resolver := func(c *Config, cause error, name string, value any, source Source) (any, error) {
			calls++
			assert.Equal(t, "Size", name)
			assert.Equal(t, "not a number", value)
			assert.Equal(t, SourceConfig, source)
			return int64(-1), nil
		}
		c := newTestConfig(t, []Field{{Attr: "Size", Option: size}}, WithResolver(resolver))
		c.SetScalarValue("Size", "not a number", false)

		v, src, err := size.Read(c)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), v)
		assert.Equal(t, SourceResolver, src)
		assert.Equal(t, 1, calls)
	})

	t.Run("ResolverCanReRaise", func(t *testing.T) {
		boom := errors.New("boom")
		resolver := func(c *Config, cause error, name string, value any, source Source) (any, error) {
			return nil, boom
		}
		c := newTestConfig(t, []Field{{Attr: "Size", Option: size}}, WithResolver(resolver))
		c.SetScalarValue("Size", "not a number", false)

		_, _, err := size.Read(c)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("StoredChoiceViolationResolved", func(t *testing.T) {
		sized := Must(NewIntOption("Size", Default(12), Choices(10, 12)))
		c := newTestConfig(t, []Field{{Attr: "Size", Option: sized}})
		c.SetScalarValue("Size", "11", false)

		v, src, err := sized.Read(c)
		require.NoError(t, err)
		assert.Equal(t, int64(12), v)
		assert.Equal(t, SourceResolver, src)
	})
}

// TestWriteSideErrorsPropagate tests that writes never go through the
// resolve hook.
func TestWriteSideErrorsPropagate(t *testing.T) {
	sized := Must(NewIntOption("Size", Choices(10, 12)))
	c := newTestConfig(t, []Field{{Attr: "Size", Option: sized}})

	err := sized.Set(c, 11)
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, ok := c.ScalarValue("Size", false)
	assert.False(t, ok)
}

// TestCacheDiscipline tests cache hits, idempotent writes and invalidation
// against a call-counting backend.
func TestCacheDiscipline(t *testing.T) {
	font := Must(NewStringOption("Font", Default("Menlo")))

	newCachedConfig := func(t *testing.T, fields []Field) (*Config, *countingBackend) {
		t.Helper()
		reg, err := NewRegistry(fields)
		require.NoError(t, err)
		backend := newCountingBackend()
		c, err := New(reg, backend, WithAllowCache(true))
		require.NoError(t, err)
		backend.gets, backend.sets, backend.deletes = 0, 0, 0
		return c, backend
	}

	t.Run("RepeatedReadHitsBackendOnce", func(t *testing.T) {
		c, backend := newCachedConfig(t, []Field{{Attr: "Font", Option: font}})
		require.NoError(t, font.Set(c, "Monaco"))
		backend.gets = 0

		for i := 0; i < 3; i++ {
			v, err := font.Get(c)
			require.NoError(t, err)
			assert.Equal(t, "Monaco", v)
		}
		assert.Equal(t, 0, backend.gets) // write primed the cache
	})

	t.Run("KnownAbsentCached", func(t *testing.T) {
		c, backend := newCachedConfig(t, []Field{{Attr: "Font", Option: font}})

		for i := 0; i < 3; i++ {
			v, err := font.Get(c)
			require.NoError(t, err)
			assert.Equal(t, "Menlo", v)
		}
		assert.Equal(t, 1, backend.gets)
	})

	t.Run("IdempotentCachedWrite", func(t *testing.T) {
		c, backend := newCachedConfig(t, []Field{{Attr: "Font", Option: font}})

		require.NoError(t, font.Set(c, "Monaco"))
		require.NoError(t, font.Set(c, "Monaco"))
		require.NoError(t, font.Set(c, "Monaco"))
		assert.Equal(t, 1, backend.sets)

		require.NoError(t, font.Set(c, "Courier"))
		assert.Equal(t, 2, backend.sets)
	})

	t.Run("InvalidateCacheForcesReRead", func(t *testing.T) {
		c, backend := newCachedConfig(t, []Field{{Attr: "Font", Option: font}})
		require.NoError(t, font.Set(c, "Monaco"))

		// Foreign writer changes the backend behind the cache.
		backend.MemoryBackend.SetScalar("Font", "Courier")
		v, err := font.Get(c)
		require.NoError(t, err)
		assert.Equal(t, "Monaco", v)

		c.InvalidateCache()
		v, err = font.Get(c)
		require.NoError(t, err)
		assert.Equal(t, "Courier", v)
	})

	t.Run("CacheDenyOptionBypassesBlanket", func(t *testing.T) {
		uncached := Must(NewStringOption("Live", Default("x"), Cache(false)))
		c, backend := newCachedConfig(t, []Field{{Attr: "Live", Option: uncached}})

		for i := 0; i < 3; i++ {
			_, err := uncached.Get(c)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, backend.gets)
	})

	t.Run("CacheAllowOptionOverridesBlanketOff", func(t *testing.T) {
		cached := Must(NewStringOption("Sticky", Default("x"), Cache(true)))
		reg, err := NewRegistry([]Field{{Attr: "Sticky", Option: cached}})
		require.NoError(t, err)
		backend := newCountingBackend()
		c, err := New(reg, backend, WithAllowCache(false))
		require.NoError(t, err)
		backend.gets = 0

		for i := 0; i < 3; i++ {
			_, err := cached.Get(c)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, backend.gets)
	})

	t.Run("CachedDeleteSkipsBackend", func(t *testing.T) {
		c, backend := newCachedConfig(t, []Field{{Attr: "Font", Option: font}})

		// Prime the known-absent marker.
		_, err := font.Get(c)
		require.NoError(t, err)

		font.Delete(c)
		font.Delete(c)
		assert.Equal(t, 0, backend.deletes)
	})
}

// TestLockedBatch tests the scoped lock with the lock-free accessors.
func TestLockedBatch(t *testing.T) {
	font := Must(NewStringOption("Font", Default("Menlo")))
	c := newTestConfig(t, []Field{{Attr: "Font", Option: font}})

	err := c.Locked(func() error {
		c.SetScalarValueLockFree("Font", "Monaco", false)
		raw, ok := c.ScalarValueLockFree("Font", false)
		assert.True(t, ok)
		assert.Equal(t, "Monaco", raw)
		return nil
	})
	require.NoError(t, err)

	v, err := font.Get(c)
	require.NoError(t, err)
	assert.Equal(t, "Monaco", v)
}
