// Package opentherm decodes OpenTherm v2.2 frames observed between a room
// controller and a boiler.
//
// The data-link layer (Frame) splits the 32-bit frame into its fields. The
// application layer maps the register id onto a RegisterSpec whose
// DecoderKind selects how the 16-bit value is interpreted.
package opentherm

import (
	"fmt"

	bridgeerrors "otmqtt-bridge/pkg/errors"
)

// MessageType is the 3-bit message type of a frame
type MessageType uint8

const (
	ReadData MessageType = iota
	WriteData
	InvalidData
	Reserved
	ReadAck
	WriteAck
	DataInvalid
	UnknownDataID
)

var messageTypeNames = [8]string{
	"Read-Data",
	"Write-Data",
	"Invalid-Data",
	"-reserved-",
	"Read-Ack",
	"Write-Ack",
	"Data-Invalid",
	"Unknown-DataId",
}

var messageTypeShort = [8]string{"rd", "wd", "id", "-r", "ra", "wa", "iv", "ui"}

// String returns the protocol name of the message type
func (m MessageType) String() string {
	return messageTypeNames[m&0x7]
}

// Short returns the two-letter code used in value topics
func (m MessageType) Short() string {
	return messageTypeShort[m&0x7]
}

// IsPayloadFatal reports whether frames of this type carry no usable payload
func (m MessageType) IsPayloadFatal() bool {
	switch m & 0x7 {
	case InvalidData, Reserved, DataInvalid, UnknownDataID:
		return true
	}
	return false
}

// Frame is one 32-bit OpenTherm data-link message
//
//	bit 31     parity
//	bits 28-30 message type
//	bits 24-27 spare
//	bits 16-23 data id (register)
//	bits 0-15  data value
type Frame struct {
	Raw uint32
}

// Decode wraps a raw 32-bit value. Every value is a representable frame.
func Decode(raw uint32) Frame {
	return Frame{Raw: raw}
}

// NewFrame builds a frame with a correct parity bit
func NewFrame(mt MessageType, registerID uint8, value uint16) Frame {
	raw := uint32(mt&0x7)<<28 | uint32(registerID)<<16 | uint32(value)
	raw |= uint32(Parity(raw)) << 31
	return Frame{Raw: raw}
}

// Value returns the 16-bit data value
func (f Frame) Value() uint16 {
	return uint16(f.Raw & 0xffff)
}

// RegisterID returns the data id
func (f Frame) RegisterID() uint8 {
	return uint8((f.Raw >> 16) & 0xff)
}

// Spare returns the four spare bits, expected to be zero
func (f Frame) Spare() uint8 {
	return uint8((f.Raw >> 24) & 0xf)
}

// MessageType returns the message type bits without validation
func (f Frame) MessageType() MessageType {
	return MessageType((f.Raw >> 28) & 0x7)
}

// ParityBit returns bit 31
func (f Frame) ParityBit() uint8 {
	return uint8(f.Raw >> 31)
}

// IsPayloadFatal reports whether the frame must not be payload-decoded
func (f Frame) IsPayloadFatal() bool {
	return f.MessageType().IsPayloadFatal()
}

// Classify returns the message type, or a *errors.FrameError wrapping
// ErrPayloadFatal when the type forbids payload interpretation.
func (f Frame) Classify() (MessageType, error) {
	mt := f.MessageType()
	if mt.IsPayloadFatal() {
		return mt, bridgeerrors.NewFrameError("classify", f.Raw, f.RegisterID(), mt.String())
	}
	return mt, nil
}

// CheckParity reports whether the parity bit makes the frame even parity.
// Diagnostic only; decoding never depends on it.
func (f Frame) CheckParity() bool {
	return Parity(f.Raw) == 0
}

// HasSpareBits reports whether any spare bit is set
func (f Frame) HasSpareBits() bool {
	return f.Spare() != 0
}

// String formats the frame for logs
func (f Frame) String() string {
	return fmt.Sprintf("%-15s %3d %6d", f.MessageType(), f.RegisterID(), f.Value())
}

// Parity folds v down to one bit: 1 if v has an odd number of set bits
func Parity(v uint32) uint8 {
	y := v ^ (v >> 1)
	y ^= y >> 2
	y ^= y >> 4
	y ^= y >> 8
	y ^= y >> 16
	return uint8(y & 1)
}
