package opentherm

import (
	"fmt"
	"math"
)

type decodeFunc func(spec *RegisterSpec, raw uint16) (Payload, error)

var decoders = map[DecoderKind]decodeFunc{
	Flags8Flags8:   decodeFlags8Flags8,
	Flags8U8:       decodeFlags8U8,
	U8U8Pair:       decodeU8U8,
	S8S8Pair:       decodeS8S8,
	Fixed8_8:       decodeFixed8_8,
	U16:            decodeU16,
	S16:            decodeS16,
	RemoteOverride: decodeRemoteOverride,
	DayTime:        decodeDayTime,
}

func init() {
	for kind := range decoderKindNames {
		if kind == Unspecified {
			continue
		}
		if _, ok := decoders[kind]; !ok {
			panic(fmt.Sprintf("opentherm: decoder kind %s has no implementation", kind))
		}
	}
}

// DecodeValue turns the 16-bit value of a frame into named sub-values.
//
// Metadata that does not fit the decoder kind never aborts decoding: the
// returned payload holds whatever could be decoded (at worst the raw value)
// and the error describes the mismatch. A kind without a decoder is a
// programming error and panics.
func DecodeValue(spec *RegisterSpec, raw uint16) (Payload, error) {
	decode, ok := decoders[spec.Kind]
	if !ok {
		panic(fmt.Sprintf("opentherm: no decoder for kind %s (register %d)", spec.Kind, spec.ID))
	}
	if err := checkObjects(spec); err != nil {
		return rawPayload(spec.ID, raw), err
	}
	return decode(spec, raw)
}

// DecodeFixed8_8 converts a signed 8.8 fixed point word to a float
func DecodeFixed8_8(raw uint16) float64 {
	if raw&0x8000 != 0 {
		return float64(int(raw)-0x10000) / 256.0
	}
	return float64(raw) / 256.0
}

// EncodeFixed8_8 converts v to the nearest signed 8.8 fixed point word
func EncodeFixed8_8(v float64) uint16 {
	return uint16(int16(math.Round(v * 256.0)))
}

func signed8(b uint8) int {
	if b&0x80 != 0 {
		return int(b) - 256
	}
	return int(b)
}

func signed16(v uint16) int {
	if v&0x8000 != 0 {
		return int(v) - 0x10000
	}
	return int(v)
}

func newPayload(spec *RegisterSpec, raw uint16) Payload {
	return Payload{RegisterID: spec.ID, Raw: raw, Scalar: spec.Kind.IsScalar()}
}

func intField(name string, v int) Field {
	return Field{Name: name, Kind: FieldInt, Int: v}
}

func setFlags(p *Payload, spec *RegisterSpec, flags []Flag, b uint8) error {
	flags, err := byteFlags(spec, flags)
	for bit, f := range flags {
		if !f.Active() {
			continue
		}
		p.Set(Field{Name: f.Name, Kind: FieldFlag, Int: int(b>>uint(bit)) & 1})
	}
	return err
}

func decodeFlags8Flags8(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	errHigh := setFlags(&p, spec, spec.HighFlags, uint8(raw>>8))
	errLow := setFlags(&p, spec, spec.LowFlags, uint8(raw))
	return p, firstErr(errHigh, errLow)
}

func decodeFlags8U8(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	err := setFlags(&p, spec, spec.HighFlags, uint8(raw>>8))
	p.Set(intField(spec.DataObjects[1].Name, int(uint8(raw))))
	return p, err
}

func decodeU8U8(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(intField(spec.DataObjects[0].Name, int(uint8(raw>>8))))
	p.Set(intField(spec.DataObjects[1].Name, int(uint8(raw))))
	return p, nil
}

func decodeS8S8(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(intField(spec.DataObjects[0].Name, signed8(uint8(raw>>8))))
	p.Set(intField(spec.DataObjects[1].Name, signed8(uint8(raw))))
	return p, nil
}

func decodeFixed8_8(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(Field{Name: spec.DataObjects[0].Name, Kind: FieldFixed, Float: DecodeFixed8_8(raw)})
	return p, nil
}

func decodeU16(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(intField(spec.DataObjects[0].Name, int(raw)))
	return p, nil
}

func decodeS16(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(intField(spec.DataObjects[0].Name, signed16(raw)))
	return p, nil
}

func decodeRemoteOverride(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(intField(spec.DataObjects[0].Name, int(uint8(raw>>8))))
	err := setFlags(&p, spec, spec.LowFlags, uint8(raw))
	return p, err
}

func decodeDayTime(spec *RegisterSpec, raw uint16) (Payload, error) {
	p := newPayload(spec, raw)
	p.Set(intField(spec.DataObjects[0].Name, int(raw>>13)&0x07))
	p.Set(intField(spec.DataObjects[1].Name, int(raw>>8)&0x1f))
	p.Set(intField(spec.DataObjects[2].Name, int(raw&0xff)))
	return p, nil
}
