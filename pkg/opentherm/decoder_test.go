package opentherm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "otmqtt-bridge/pkg/errors"
	"otmqtt-bridge/pkg/logger"
)

func mustField(t *testing.T, p Payload, name string) Field {
	t.Helper()
	f, ok := p.Get(name)
	require.True(t, ok, "payload has no %q: %v", name, p.Names())
	return f
}

func TestFixed8_8RoundTrip(t *testing.T) {
	for v := -40.0; v <= 100.0; v += 0.5 {
		raw := EncodeFixed8_8(v)
		got := DecodeFixed8_8(raw)
		assert.LessOrEqual(t, math.Abs(got-v), 1.0/256, "value %.2f encoded as 0x%04X", v, raw)
	}
}

func TestFixed8_8Negative(t *testing.T) {
	assert.Equal(t, -1.0, DecodeFixed8_8(0xFF00))
	assert.Equal(t, -0.5, DecodeFixed8_8(0xFF80))
	assert.Equal(t, 50.0, DecodeFixed8_8(0x3200))
	assert.Equal(t, uint16(0xFF00), EncodeFixed8_8(-1))
}

func TestDecodeFixed8_8Register(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())

	p, err := DecodeValue(registry.Lookup(25), 0x3200)
	require.NoError(t, err)
	assert.True(t, p.Scalar)
	assert.Equal(t, "50.00", p.Render())

	p, err = DecodeValue(registry.Lookup(27), 0xFB80)
	require.NoError(t, err)
	assert.Equal(t, "-4.50", p.Render())
}

func TestDecodePairs(t *testing.T) {
	u8 := &RegisterSpec{ID: 200, Kind: U8U8Pair, DataObjects: []DataObject{{Name: "first"}, {Name: "second"}}}
	p, err := DecodeValue(u8, 0x1450)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, p.Names())
	assert.Equal(t, 20, mustField(t, p, "first").Int)
	assert.Equal(t, 80, mustField(t, p, "second").Int)
	assert.Equal(t, `{"first": 20, "second": 80}`, p.Render())

	s8 := &RegisterSpec{ID: 201, Kind: S8S8Pair, DataObjects: []DataObject{{Name: "first"}, {Name: "second"}}}
	p, err = DecodeValue(s8, 0xCE50)
	require.NoError(t, err)
	assert.Equal(t, -50, mustField(t, p, "first").Int)
	assert.Equal(t, 80, mustField(t, p, "second").Int)
}

func TestDecodeSixteenBit(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())

	p, err := DecodeValue(registry.Lookup(116), 0xFFFE)
	require.NoError(t, err)
	assert.Equal(t, "65534", p.Render())

	p, err = DecodeValue(registry.Lookup(33), 0xFFFE)
	require.NoError(t, err)
	assert.Equal(t, "-2", p.Render())
}

func TestDecodeStatusFlags(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())
	spec := registry.Lookup(0)

	p, err := DecodeValue(spec, 0x0101)
	require.NoError(t, err)
	assert.False(t, p.Scalar)

	assert.Equal(t, 1, mustField(t, p, "CH_enable").Int)
	assert.Equal(t, 1, mustField(t, p, "Fault").Int)
	for _, name := range []string{"DHW_enable", "Cooling_enable", "OTC_active", "CH2_enable",
		"CH_mode", "DHW_mode", "Flame_status", "Cooling_status", "CH2_mode", "diagnostic"} {
		assert.Equal(t, 0, mustField(t, p, name).Int, name)
		assert.Equal(t, FieldFlag, mustField(t, p, name).Kind, name)
	}
	_, ok := p.Get("reserved")
	assert.False(t, ok)
	assert.Len(t, p.Fields, 12)

	// high flags come first
	assert.Equal(t, "CH_enable", p.Fields[0].Name)
	assert.Equal(t, "Fault", p.Fields[5].Name)
}

func TestDecodeFlags8U8(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())

	p, err := DecodeValue(registry.Lookup(5), 0x0423)
	require.NoError(t, err)
	assert.Equal(t, 1, mustField(t, p, "Low_water_press").Int)
	assert.Equal(t, 0, mustField(t, p, "Service_request").Int)
	assert.Equal(t, 0x23, mustField(t, p, "OEM_fault_code").Int)
	assert.Equal(t, "OEM_fault_code", p.Fields[len(p.Fields)-1].Name)

	// register 2 declares only reserved flags
	p, err = DecodeValue(registry.Lookup(2), 0xFF07)
	require.NoError(t, err)
	assert.Equal(t, []string{"M_MemberIDcode"}, p.Names())
	assert.Equal(t, `{"M_MemberIDcode": 7}`, p.Render())
}

func TestDecodeRemoteOverride(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())

	p, err := DecodeValue(registry.Lookup(100), 0x0302)
	require.NoError(t, err)
	assert.Equal(t, []string{"Remote_override_function", "Manual_change_priority", "Program_change_priority"}, p.Names())
	assert.Equal(t, 3, mustField(t, p, "Remote_override_function").Int)
	assert.Equal(t, 0, mustField(t, p, "Manual_change_priority").Int)
	assert.Equal(t, 1, mustField(t, p, "Program_change_priority").Int)
}

func TestDecodeDayTime(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())

	// Wednesday 14:35
	raw := uint16(3<<13 | 14<<8 | 35)
	p, err := DecodeValue(registry.Lookup(20), raw)
	require.NoError(t, err)
	assert.Equal(t, 3, mustField(t, p, "Day_of_week").Int)
	assert.Equal(t, 14, mustField(t, p, "Hours").Int)
	assert.Equal(t, 35, mustField(t, p, "Minutes").Int)
}

func TestDecodeShortFlagListIsNotAnError(t *testing.T) {
	spec := &RegisterSpec{
		ID:          210,
		Kind:        Flags8Flags8,
		DataObjects: []DataObject{{Name: "status"}},
		HighFlags:   []Flag{{Name: "a", Enabled: true}},
		LowFlags:    []Flag{{Name: "b", Enabled: true}, {Name: "c", Enabled: false}},
	}
	p, err := DecodeValue(spec, 0x0101)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.Names())
}

func TestDecodeTooManyFlagsDegrades(t *testing.T) {
	flags := make([]Flag, 10)
	for i := range flags {
		flags[i] = Flag{Name: string(rune('a' + i)), Enabled: true}
	}
	spec := &RegisterSpec{ID: 211, Kind: Flags8Flags8, DataObjects: []DataObject{{Name: "status"}}, LowFlags: flags}

	p, err := DecodeValue(spec, 0x00FF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bridgeerrors.ErrMetadataMismatch))
	assert.Len(t, p.Fields, 8)
	_, ok := p.Get("i")
	assert.False(t, ok)
}

func TestDecodeMissingObjectDegradesToRaw(t *testing.T) {
	spec := &RegisterSpec{ID: 212, Kind: U8U8Pair, DataObjects: []DataObject{{Name: "only"}}}

	p, err := DecodeValue(spec, 0x1234)
	require.Error(t, err)

	var metaErr *bridgeerrors.MetadataError
	require.True(t, errors.As(err, &metaErr))
	assert.Equal(t, uint8(212), metaErr.RegisterID)

	assert.True(t, p.Degraded)
	assert.Equal(t, "4660", p.Render())
}

func TestDecodeUnspecifiedPanics(t *testing.T) {
	spec := &RegisterSpec{ID: 213, Kind: Unspecified, DataObjects: []DataObject{{Name: "x"}}}
	assert.Panics(t, func() { _, _ = DecodeValue(spec, 0) })
	assert.Panics(t, func() { _, _ = SubValues(spec) })
}

func TestPayloadSetOverwritesInPlace(t *testing.T) {
	var p Payload
	p.Set(Field{Name: "a", Kind: FieldInt, Int: 1})
	p.Set(Field{Name: "b", Kind: FieldInt, Int: 2})
	p.Set(Field{Name: "a", Kind: FieldInt, Int: 3})

	assert.Equal(t, []string{"a", "b"}, p.Names())
	assert.Equal(t, `{"a": 3, "b": 2}`, p.Render())
}

// Every key announced for discovery must exist in the decoded payload
func TestSubValuesMatchDecodedKeys(t *testing.T) {
	registry := NewRegistry(logger.NewMockLogger())

	for _, spec := range registry.All() {
		subValues, err := SubValues(spec)
		require.NoError(t, err, "register %d", spec.ID)

		for _, raw := range []uint16{0x0000, 0xFFFF, 0x1234} {
			p, err := DecodeValue(spec, raw)
			require.NoError(t, err, "register %d", spec.ID)
			require.Len(t, p.Fields, len(subValues), "register %d", spec.ID)
			for i, sv := range subValues {
				assert.Equal(t, sv.Name, p.Fields[i].Name, "register %d", spec.ID)
				assert.Equal(t, sv.IsFlag, p.Fields[i].Kind == FieldFlag, "register %d", spec.ID)
			}
		}
	}
}
