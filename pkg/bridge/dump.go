package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"otmqtt-bridge/pkg/opentherm"
)

// Dump file names written by WriteDump
const (
	ControllerDumpFile = "ot_master.json"
	ResponderDumpFile  = "ot_slave.json"
	RegistryDumpFile   = "OT.json"
)

// WriteDump writes the last raw value per register of each role and the
// register table, placeholders included, as JSON files into dir
func (p *Processor) WriteDump(dir string) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating dump directory: %w", err)
	}

	files := map[string]func() ([]byte, error){
		ControllerDumpFile: func() ([]byte, error) { return p.dumpValues(opentherm.Controller) },
		ResponderDumpFile:  func() ([]byte, error) { return p.dumpValues(opentherm.Responder) },
		RegistryDumpFile:   p.dumpRegistry,
	}
	for _, name := range []string{ControllerDumpFile, ResponderDumpFile, RegistryDumpFile} {
		data, err := files[name]()
		if err != nil {
			return fmt.Errorf("error serializing %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", path, err)
		}
	}

	p.log.LogDebug("Last master/slave transfers have been dumped in '%s'", dir)
	return nil
}

func (p *Processor) dumpValues(role opentherm.Role) ([]byte, error) {
	snapshot := p.Snapshot(role)
	ids := make([]uint8, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return marshalByID(ids, func(id uint8) interface{} { return snapshot[id].Raw })
}

func (p *Processor) dumpRegistry() ([]byte, error) {
	specs := p.registry.All()
	byID := make(map[uint8]*opentherm.RegisterSpec, len(specs))
	ids := make([]uint8, len(specs))
	for i, spec := range specs {
		ids[i] = spec.ID
		byID[spec.ID] = spec
	}
	return marshalByID(ids, func(id uint8) interface{} { return byID[id] })
}

// marshalByID writes an indented JSON object keyed by register id in the
// given order. encoding/json would sort the keys as strings.
func marshalByID(ids []uint8, value func(uint8) interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(value(id))
		if err != nil {
			return nil, fmt.Errorf("register %d: %w", id, err)
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(int(id))))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
