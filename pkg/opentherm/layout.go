package opentherm

import (
	"fmt"

	bridgeerrors "otmqtt-bridge/pkg/errors"
)

// SubValue is one key of a decoded payload together with the metadata
// needed to announce it
type SubValue struct {
	Name        string
	Description string
	Unit        string
	DeviceClass string
	IsFlag      bool
	// Object is the data object a flag belongs to; equal to Name otherwise
	Object string
}

// SubValues lists the keys the decoder produces for spec, in decode order.
// Discovery and decoding share this naming, so a descriptor always points at
// a key that exists in the payload.
func SubValues(spec *RegisterSpec) ([]SubValue, error) {
	if err := checkObjects(spec); err != nil {
		return nil, err
	}

	var out []SubValue
	add := func(sv SubValue) {
		for i := range out {
			if out[i].Name == sv.Name {
				out[i] = sv
				return
			}
		}
		out = append(out, sv)
	}
	addObject := func(i int) {
		obj := spec.DataObjects[i]
		add(SubValue{Name: obj.Name, Description: obj.Description, Unit: obj.Unit,
			DeviceClass: obj.DeviceClass, Object: obj.Name})
	}
	addFlags := func(flags []Flag, owner int) error {
		if owner >= len(spec.DataObjects) {
			owner = len(spec.DataObjects) - 1
		}
		flags, err := byteFlags(spec, flags)
		for _, f := range flags {
			if f.Active() {
				add(SubValue{Name: f.Name, Description: f.Name, DeviceClass: f.DeviceClass,
					IsFlag: true, Object: spec.DataObjects[owner].Name})
			}
		}
		return err
	}

	var err error
	switch spec.Kind {
	case Fixed8_8, U16, S16:
		addObject(0)
	case U8U8Pair, S8S8Pair:
		addObject(0)
		addObject(1)
	case Flags8Flags8:
		err = firstErr(addFlags(spec.HighFlags, 0), addFlags(spec.LowFlags, 1))
	case Flags8U8:
		err = addFlags(spec.HighFlags, 0)
		addObject(1)
	case RemoteOverride:
		addObject(0)
		err = addFlags(spec.LowFlags, 1)
	case DayTime:
		addObject(0)
		addObject(1)
		addObject(2)
	default:
		panic(fmt.Sprintf("opentherm: no layout for decoder kind %s (register %d)", spec.Kind, spec.ID))
	}
	return out, err
}

// requiredObjects is the number of data objects a kind reads
func requiredObjects(kind DecoderKind) int {
	switch kind {
	case Fixed8_8, U16, S16, RemoteOverride, Flags8Flags8:
		return 1
	case U8U8Pair, S8S8Pair, Flags8U8:
		return 2
	case DayTime:
		return 3
	}
	return 0
}

func checkObjects(spec *RegisterSpec) error {
	if n := requiredObjects(spec.Kind); len(spec.DataObjects) < n {
		return bridgeerrors.NewMetadataError(spec.ID, spec.Kind.String(),
			fmt.Sprintf("%d data objects declared, %d required", len(spec.DataObjects), n))
	}
	return nil
}

// byteFlags truncates a flag list to the 8 bits of one byte
func byteFlags(spec *RegisterSpec, flags []Flag) ([]Flag, error) {
	if len(flags) <= 8 {
		return flags, nil
	}
	return flags[:8], bridgeerrors.NewMetadataError(spec.ID, spec.Kind.String(),
		fmt.Sprintf("%d flags declared for one byte", len(flags)))
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
