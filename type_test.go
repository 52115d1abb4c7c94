// FILE: nativeconfig/type_test.go
package nativeconfig

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOptionDeclaration tests declaration-time validation shared by every
// option constructor.
func TestOptionDeclaration(t *testing.T) {
	t.Run("EmptyNameFails", func(t *testing.T) {
		_, err := NewStringOption("")
		require.Error(t, err)
		var ierr *InitializationError
		assert.ErrorAs(t, err, &ierr)
	})

	t.Run("DefaultOutsideChoicesFails", func(t *testing.T) {
		_, err := NewStringOption("Font", Default("Courier"), Choices("Menlo", "Monaco"))
		require.Error(t, err)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("DefaultOfWrongTypeFails", func(t *testing.T) {
		_, err := NewStringOption("Font", Default(42))
		assert.Error(t, err)
	})

	t.Run("EmptyChoiceListFails", func(t *testing.T) {
		_, err := NewIntOption("Size", Choices())
		require.Error(t, err)
		var ierr *InitializationError
		assert.ErrorAs(t, err, &ierr)
	})

	t.Run("EmptyEnvNameFails", func(t *testing.T) {
		_, err := NewStringOption("Font", Env(""))
		require.Error(t, err)
		var ierr *InitializationError
		assert.ErrorAs(t, err, &ierr)
	})

	t.Run("ChoicesNormalizedWithDefault", func(t *testing.T) {
		o, err := NewIntOption("Size", Default(12), Choices(10, 12, 14))
		require.NoError(t, err)
		assert.Equal(t, int64(12), o.Default())
		assert.Equal(t, []any{int64(10), int64(12), int64(14)}, o.Choices())
	})

	t.Run("MetadataAccessors", func(t *testing.T) {
		o, err := NewStringOption("Font",
			Env("MYAPP_FONT"),
			Doc("Editor font"),
			Cache(true),
		)
		require.NoError(t, err)
		assert.Equal(t, "Font", o.Name())
		assert.Equal(t, "MYAPP_FONT", o.EnvName())
		assert.Equal(t, "Editor font", o.Doc())
		assert.Equal(t, CacheAllow, o.CachePolicy())
	})

	t.Run("CacheDefaultsToInherit", func(t *testing.T) {
		o := Must(NewStringOption("Font"))
		assert.Equal(t, CacheInherit, o.CachePolicy())
	})
}

// TestStringOption tests string validation and both codec directions.
func TestStringOption(t *testing.T) {
	t.Run("EmptyAcceptedByDefault", func(t *testing.T) {
		o := Must(NewStringOption("Font"))
		assert.NoError(t, o.Validate(""))
		assert.NoError(t, o.Validate("Menlo"))
	})

	t.Run("AllowEmptyFalseRejects", func(t *testing.T) {
		o := Must(NewStringOption("Suffix", AllowEmpty(false)))
		assert.Error(t, o.Validate(""))
		assert.NoError(t, o.Validate("x"))
	})

	t.Run("ChoiceEnforcement", func(t *testing.T) {
		o := Must(NewStringOption("Font", Choices("Menlo", "Monaco")))
		assert.NoError(t, o.Validate("Menlo"))

		err := o.Validate("Courier")
		require.Error(t, err)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("RawRoundTrip", func(t *testing.T) {
		o := Must(NewStringOption("Font"))
		raw, err := o.Serialize("Menlo")
		require.NoError(t, err)
		assert.Equal(t, "Menlo", raw)

		v, err := o.Deserialize(raw)
		require.NoError(t, err)
		assert.Equal(t, "Menlo", v)
	})

	t.Run("WireRoundTrip", func(t *testing.T) {
		o := Must(NewStringOption("Font"))
		wire, err := o.SerializeWire("Menlo")
		require.NoError(t, err)
		assert.Equal(t, `"Menlo"`, string(wire))

		v, err := o.DeserializeWire(wire)
		require.NoError(t, err)
		assert.Equal(t, "Menlo", v)
	})

	t.Run("WireNull", func(t *testing.T) {
		o := Must(NewStringOption("Font"))
		wire, err := o.SerializeWire(nil)
		require.NoError(t, err)
		assert.Equal(t, "null", string(wire))

		v, err := o.DeserializeWire(json.RawMessage("null"))
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("WireNonStringFails", func(t *testing.T) {
		o := Must(NewStringOption("Font"))
		_, err := o.DeserializeWire(json.RawMessage("42"))
		require.Error(t, err)
		var derr *DeserializationError
		assert.ErrorAs(t, err, &derr)
	})
}

// TestBoolOption tests the permissive raw decoding and canonical encoding.
func TestBoolOption(t *testing.T) {
	o := Must(NewBoolOption("Beep"))

	t.Run("DeserializeForms", func(t *testing.T) {
		tests := []struct {
			raw  string
			want bool
		}{
			{"1", true}, {"YES", true}, {"yes", true}, {"True", true}, {"on", true},
			{"0", false}, {"NO", false}, {"false", false}, {"off", false},
		}
		for _, tt := range tests {
			t.Run(tt.raw, func(t *testing.T) {
				v, err := o.Deserialize(tt.raw)
				require.NoError(t, err)
				assert.Equal(t, tt.want, v)
			})
		}
	})

	t.Run("DeserializeGarbageFails", func(t *testing.T) {
		_, err := o.Deserialize("maybe")
		assert.Error(t, err)
	})

	t.Run("SerializeCanonical", func(t *testing.T) {
		raw, err := o.Serialize(true)
		require.NoError(t, err)
		assert.Equal(t, "1", raw)

		raw, err = o.Serialize(false)
		require.NoError(t, err)
		assert.Equal(t, "0", raw)
	})

	t.Run("WireRoundTrip", func(t *testing.T) {
		wire, err := o.SerializeWire(true)
		require.NoError(t, err)
		assert.Equal(t, "true", string(wire))

		v, err := o.DeserializeWire(wire)
		require.NoError(t, err)
		assert.Equal(t, true, v)
	})
}

// TestIntOption tests int64 normalization and exact round-trips.
func TestIntOption(t *testing.T) {
	o := Must(NewIntOption("Size"))

	t.Run("RawRoundTrip", func(t *testing.T) {
		raw, err := o.Serialize(int64(-42))
		require.NoError(t, err)
		assert.Equal(t, "-42", raw)

		v, err := o.Deserialize(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(-42), v)
	})

	t.Run("DeserializeTrimsSpace", func(t *testing.T) {
		v, err := o.Deserialize(" 7 ")
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("DeserializeGarbageFails", func(t *testing.T) {
		_, err := o.Deserialize("seven")
		assert.Error(t, err)
	})

	t.Run("ValidateRequiresInt64", func(t *testing.T) {
		assert.Error(t, o.Validate(42))
		assert.Error(t, o.Validate("42"))
		assert.NoError(t, o.Validate(int64(42)))
	})

	t.Run("WireLargeValueExact", func(t *testing.T) {
		big := int64(1) << 62
		wire, err := o.SerializeWire(big)
		require.NoError(t, err)

		v, err := o.DeserializeWire(wire)
		require.NoError(t, err)
		assert.Equal(t, big, v)
	})

	t.Run("WireFloatFails", func(t *testing.T) {
		_, err := o.DeserializeWire(json.RawMessage("1.5"))
		assert.Error(t, err)
	})
}

// TestFloatOption tests float64 round-trips.
func TestFloatOption(t *testing.T) {
	o := Must(NewFloatOption("Scale"))

	t.Run("RawRoundTrip", func(t *testing.T) {
		raw, err := o.Serialize(1.25)
		require.NoError(t, err)

		v, err := o.Deserialize(raw)
		require.NoError(t, err)
		assert.Equal(t, 1.25, v)
	})

	t.Run("WireIntegerLiteralAccepted", func(t *testing.T) {
		v, err := o.DeserializeWire(json.RawMessage("2"))
		require.NoError(t, err)
		assert.Equal(t, 2.0, v)
	})

	t.Run("DefaultNormalizedFromInt", func(t *testing.T) {
		o := Must(NewFloatOption("Scale", Default(2)))
		assert.Equal(t, 2.0, o.Default())
	})
}

// TestPathOption tests the cleaned-path invariant.
func TestPathOption(t *testing.T) {
	o := Must(NewPathOption("LogDir"))

	t.Run("DeserializeCleans", func(t *testing.T) {
		v, err := o.Deserialize("/var//log/../log/app/")
		require.NoError(t, err)
		assert.Equal(t, "/var/log/app", v)
	})

	t.Run("EmptyRejected", func(t *testing.T) {
		assert.Error(t, o.Validate(""))
	})

	t.Run("UncleanRejected", func(t *testing.T) {
		assert.Error(t, o.Validate("/var//log"))
		assert.NoError(t, o.Validate("/var/log"))
	})
}

// TestDurationOption tests the time.Duration string forms.
func TestDurationOption(t *testing.T) {
	o := Must(NewDurationOption("Timeout"))

	t.Run("RawRoundTrip", func(t *testing.T) {
		raw, err := o.Serialize(90 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, "1m30s", raw)

		v, err := o.Deserialize(raw)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, v)
	})

	t.Run("DeserializeGarbageFails", func(t *testing.T) {
		_, err := o.Deserialize("ninety seconds")
		assert.Error(t, err)
	})

	t.Run("WireRoundTrip", func(t *testing.T) {
		wire, err := o.SerializeWire(time.Minute)
		require.NoError(t, err)
		assert.Equal(t, `"1m0s"`, string(wire))

		v, err := o.DeserializeWire(wire)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, v)
	})
}
