package opentherm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "otmqtt-bridge/pkg/errors"
)

func manualParity(v uint32) uint8 {
	var p uint8
	for i := 0; i < 32; i++ {
		p ^= uint8(v>>uint(i)) & 1
	}
	return p
}

func TestFrameFields(t *testing.T) {
	// Read-Ack, spare 0x5, register 25, value 0x3200 with parity set
	f := Decode(0xC5193200)

	assert.Equal(t, uint32(0xC5193200), f.Raw)
	assert.Equal(t, uint16(0x3200), f.Value())
	assert.Equal(t, uint8(25), f.RegisterID())
	assert.Equal(t, uint8(0x5), f.Spare())
	assert.True(t, f.HasSpareBits())
	assert.Equal(t, ReadAck, f.MessageType())
	assert.Equal(t, uint8(1), f.ParityBit())
}

func TestNewFrameSetsParity(t *testing.T) {
	for _, mt := range []MessageType{ReadData, WriteData, ReadAck, WriteAck} {
		f := NewFrame(mt, 25, 0x3200)
		assert.True(t, f.CheckParity(), "frame %s", f)
		assert.Equal(t, mt, f.MessageType())
		assert.Equal(t, uint8(25), f.RegisterID())
		assert.Equal(t, uint16(0x3200), f.Value())
		assert.False(t, f.HasSpareBits())
	}
}

func TestParityMatchesManualFold(t *testing.T) {
	raw := uint32(0x00010001)
	assert.Equal(t, manualParity(raw), Parity(raw))
	assert.Equal(t, uint8(0), Parity(raw))
	assert.True(t, Decode(raw).CheckParity())

	assert.Equal(t, uint8(1), Parity(0x00000001))
	assert.False(t, Decode(0x00000001).CheckParity())
	assert.Equal(t, uint8(0), Parity(0xFFFFFFFF))
}

func TestMessageTypeNames(t *testing.T) {
	tests := []struct {
		mt    MessageType
		name  string
		short string
		fatal bool
	}{
		{ReadData, "Read-Data", "rd", false},
		{WriteData, "Write-Data", "wd", false},
		{InvalidData, "Invalid-Data", "id", true},
		{Reserved, "-reserved-", "-r", true},
		{ReadAck, "Read-Ack", "ra", false},
		{WriteAck, "Write-Ack", "wa", false},
		{DataInvalid, "Data-Invalid", "iv", true},
		{UnknownDataID, "Unknown-DataId", "ui", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.mt.String())
			assert.Equal(t, tt.short, tt.mt.Short())
			assert.Equal(t, tt.fatal, tt.mt.IsPayloadFatal())
		})
	}
}

func TestClassifyFatalFrames(t *testing.T) {
	mt, err := NewFrame(ReadAck, 25, 0x3200).Classify()
	require.NoError(t, err)
	assert.Equal(t, ReadAck, mt)

	for _, fatal := range []MessageType{InvalidData, Reserved, DataInvalid, UnknownDataID} {
		f := NewFrame(fatal, 70, 0)
		assert.True(t, f.IsPayloadFatal())

		mt, err := f.Classify()
		require.Error(t, err)
		assert.Equal(t, fatal, mt)
		assert.True(t, errors.Is(err, bridgeerrors.ErrPayloadFatal))

		var frameErr *bridgeerrors.FrameError
		require.True(t, errors.As(err, &frameErr))
		assert.Equal(t, uint8(70), frameErr.RegisterID)
		assert.Equal(t, fatal.String(), frameErr.MessageType)
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"controller", "master", "m"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Controller, r)
	}
	for _, s := range []string{"responder", "slave", "s"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Responder, r)
	}
	_, err := ParseRole("boiler")
	assert.Error(t, err)

	assert.Equal(t, "m", Controller.Suffix())
	assert.Equal(t, "s", Responder.Suffix())
}
