package opentherm

import (
	"encoding/json"
	"fmt"
)

// Access is the read/write capability a register declares
type Access uint8

const (
	ReadOnly Access = iota
	WriteOnly
	ReadWrite
	Unsupported
)

// String returns the table notation: "R -", "- W", "R W" or "- -"
func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "R -"
	case WriteOnly:
		return "- W"
	case ReadWrite:
		return "R W"
	default:
		return "- -"
	}
}

// CanRead reports whether the responder answers reads of the register
func (a Access) CanRead() bool {
	return a == ReadOnly || a == ReadWrite
}

// CanWrite reports whether the controller writes the register
func (a Access) CanWrite() bool {
	return a == WriteOnly || a == ReadWrite
}

// Observable reports whether values of the register flow in the role's direction
func (a Access) Observable(role Role) bool {
	if role == Responder {
		return a.CanRead()
	}
	return a.CanWrite()
}

// MarshalText implements encoding.TextMarshaler
func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// DecoderKind selects the payload decoder for a register
type DecoderKind uint8

const (
	Unspecified DecoderKind = iota
	Flags8Flags8
	Flags8U8
	U8U8Pair
	S8S8Pair
	Fixed8_8
	U16
	S16
	RemoteOverride // register 100: u8 / flag8
	DayTime        // register 20: u3 / u5 / u8
)

var decoderKindNames = map[DecoderKind]string{
	Unspecified:    "unspecified",
	Flags8Flags8:   "flag8/flag8",
	Flags8U8:       "flag8/u8",
	U8U8Pair:       "u8/u8",
	S8S8Pair:       "s8/s8",
	Fixed8_8:       "f8.8",
	U16:            "u16",
	S16:            "s16",
	RemoteOverride: "u8/flag8",
	DayTime:        "u3/u5/u8",
}

// String returns the data type notation of the kind
func (k DecoderKind) String() string {
	if name, ok := decoderKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler
func (k DecoderKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsScalar reports whether the kind yields a single bare value rather than a
// JSON document
func (k DecoderKind) IsScalar() bool {
	switch k {
	case Fixed8_8, U16, S16:
		return true
	}
	return false
}

// Flag is one bit of a flag8 byte
type Flag struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	DeviceClass string `json:"device_class,omitempty"`
}

// DataObject is a named sub-value of a register
type DataObject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit,omitempty"`
	DeviceClass string `json:"device_class,omitempty"`
}

// RegisterSpec describes one OpenTherm data id
type RegisterSpec struct {
	ID          uint8        `json:"id"`
	DataObjects []DataObject `json:"data_objects"`
	Access      Access       `json:"rw"`
	Kind        DecoderKind  `json:"data_type"`
	HighFlags   []Flag       `json:"hflags,omitempty"`
	LowFlags    []Flag       `json:"lflags,omitempty"`
	Placeholder bool         `json:"placeholder,omitempty"`
}

// Names returns the data object names in order
func (s *RegisterSpec) Names() []string {
	names := make([]string, len(s.DataObjects))
	for i, obj := range s.DataObjects {
		names[i] = obj.Name
	}
	return names
}

// Descriptions returns the data object descriptions in order
func (s *RegisterSpec) Descriptions() []string {
	descs := make([]string, len(s.DataObjects))
	for i, obj := range s.DataObjects {
		descs[i] = obj.Description
	}
	return descs
}

// DescriptionText renders descriptions for the informative desc topic:
// a bare string for single-object registers, a JSON list otherwise
func (s *RegisterSpec) DescriptionText() string {
	return textOrList(s.Descriptions())
}

// DataObjectText renders data object names like DescriptionText
func (s *RegisterSpec) DataObjectText() string {
	return textOrList(s.Names())
}

func textOrList(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Sprint(items)
	}
	return string(data)
}

// placeholderSpec is synthesized for ids missing from the table
func placeholderSpec(id uint8) *RegisterSpec {
	return &RegisterSpec{
		ID:          id,
		DataObjects: []DataObject{{Name: "xx", Description: "Unknown register"}},
		Access:      Unsupported,
		Kind:        U16,
		Placeholder: true,
	}
}

// Active reports whether the flag is decoded and announced
func (f Flag) Active() bool {
	return f.Enabled && f.Name != "" && f.Name != "reserved"
}
