package opentherm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldKind tags the value held by a Field
type FieldKind uint8

const (
	FieldFixed FieldKind = iota
	FieldInt
	FieldFlag
)

// Field is one named sub-value of a decoded register
type Field struct {
	Name  string
	Kind  FieldKind
	Int   int
	Float float64
}

// Text formats the field value the way it is published
func (f Field) Text() string {
	if f.Kind == FieldFixed {
		return strconv.FormatFloat(f.Float, 'f', 2, 64)
	}
	return strconv.Itoa(f.Int)
}

// Payload is the ordered result of decoding one register value
type Payload struct {
	RegisterID uint8
	Raw        uint16
	Scalar     bool
	Fields     []Field
	// Degraded is set when metadata did not allow a full decode
	Degraded bool
}

// Set adds a field, overwriting the value of an existing field with the same
// name in place
func (p *Payload) Set(f Field) {
	for i := range p.Fields {
		if p.Fields[i].Name == f.Name {
			p.Fields[i] = f
			return
		}
	}
	p.Fields = append(p.Fields, f)
}

// Get returns the named field
func (p Payload) Get(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in decode order
func (p Payload) Names() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

// Render returns the MQTT payload: the bare value for scalar registers,
// a JSON document keyed by sub-value name otherwise
func (p Payload) Render() string {
	if p.Scalar && len(p.Fields) == 1 {
		return p.Fields[0].Text()
	}
	data, err := p.MarshalJSON()
	if err != nil {
		return strconv.Itoa(int(p.Raw))
	}
	return string(data)
}

// MarshalJSON encodes the fields as an object preserving decode order
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p.Fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.WriteString(f.Text())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func rawPayload(id uint8, raw uint16) Payload {
	return Payload{
		RegisterID: id,
		Raw:        raw,
		Scalar:     true,
		Fields:     []Field{{Name: "raw", Kind: FieldInt, Int: int(raw)}},
		Degraded:   true,
	}
}
