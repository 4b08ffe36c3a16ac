// Package homeassistant builds MQTT discovery documents announcing decoded
// OpenTherm values as Home Assistant entities.
package homeassistant

import (
	"encoding/json"
	"fmt"

	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/opentherm"
	"otmqtt-bridge/pkg/topics"
)

const (
	ComponentSensor       = "sensor"
	ComponentBinarySensor = "binary_sensor"
)

// Availability is one entry of the availability list
type Availability struct {
	Topic               string `json:"topic" yaml:"topic"`
	PayloadAvailable    string `json:"payload_available" yaml:"payload_available"`
	PayloadNotAvailable string `json:"payload_not_available" yaml:"payload_not_available"`
}

// DeviceInfo information about the device
type DeviceInfo struct {
	Name         string   `json:"name" yaml:"name"`
	Identifiers  []string `json:"identifiers" yaml:"identifiers"`
	Manufacturer string   `json:"manufacturer" yaml:"manufacturer"`
	Model        string   `json:"model" yaml:"model"`
	HWVersion    string   `json:"hw_version,omitempty" yaml:"hw_version"`
}

// Origin identifies the software publishing discovery
type Origin struct {
	Name string `json:"name" yaml:"name"`
	SW   string `json:"sw,omitempty" yaml:"sw"`
	URL  string `json:"url,omitempty" yaml:"url"`
}

// Template is the static metadata overlaid on every discovery document.
// The builder copies it verbatim and never derives it.
type Template struct {
	StateClass   string         `json:"state_class,omitempty" yaml:"state_class"`
	Availability []Availability `json:"availability,omitempty" yaml:"availability"`
	Device       DeviceInfo     `json:"device" yaml:"device"`
	Origin       Origin         `json:"origin" yaml:"origin"`
}

// Config parameters of the discovery builder
type Config struct {
	DiscoveryPrefix  string
	NodeID           string
	UniqueIDPrefix   string
	StateTopicPrefix string
	Template         Template
}

// Descriptor announces one decoded sub-value of a register for one role
type Descriptor struct {
	Topic          string
	Component      string
	RegisterID     uint8
	Role           opentherm.Role
	UniqueID       string
	ObjectID       string
	Name           string
	Unit           string
	DeviceClass    string
	StateTopic     string
	ValueTemplate  string
	IsFlag         bool
	EntityCategory string

	template Template
}

// SensorConfig is the JSON document published on a discovery topic
type SensorConfig struct {
	Name              string         `json:"name"`
	ObjectID          string         `json:"object_id"`
	UniqueID          string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	UnitOfMeasurement string         `json:"unit_of_measurement,omitempty"`
	DeviceClass       string         `json:"device_class,omitempty"`
	StateClass        string         `json:"state_class,omitempty"`
	ValueTemplate     string         `json:"value_template"`
	PayloadOn         string         `json:"payload_on,omitempty"`
	PayloadOff        string         `json:"payload_off,omitempty"`
	EntityCategory    string         `json:"entity_category,omitempty"`
	Availability      []Availability `json:"availability,omitempty"`
	Device            DeviceInfo     `json:"device"`
	Origin            Origin         `json:"origin"`
}

// Document overlays the descriptor on the static template
func (d Descriptor) Document() SensorConfig {
	doc := SensorConfig{
		Name:              d.Name,
		ObjectID:          d.ObjectID,
		UniqueID:          d.UniqueID,
		StateTopic:        d.StateTopic,
		UnitOfMeasurement: d.Unit,
		DeviceClass:       d.DeviceClass,
		ValueTemplate:     d.ValueTemplate,
		EntityCategory:    d.EntityCategory,
		Availability:      d.template.Availability,
		Device:            d.template.Device,
		Origin:            d.template.Origin,
	}
	if d.IsFlag {
		doc.PayloadOn = "1"
		doc.PayloadOff = "0"
	} else {
		doc.StateClass = d.template.StateClass
	}
	return doc
}

// Payload serializes the discovery document
func (d Descriptor) Payload() ([]byte, error) {
	data, err := json.Marshal(d.Document())
	if err != nil {
		return nil, fmt.Errorf("error serializing discovery for %s: %w", d.UniqueID, err)
	}
	return data, nil
}

// Builder derives discovery descriptors from register specs
type Builder struct {
	config Config
	log    logger.ILogger
}

// NewBuilder creates a discovery builder
func NewBuilder(config Config, log logger.ILogger) *Builder {
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &Builder{config: config, log: log}
}

// Config returns the builder configuration
func (b *Builder) Config() Config {
	return b.config
}

// Build returns one descriptor per sub-value the decoder produces for spec,
// or nothing when values of the register do not flow in the role's
// direction. The result only depends on its arguments, so rebuilding yields
// identical topics and ids.
//
// A metadata mismatch is returned as error together with the descriptors
// that could still be derived.
func (b *Builder) Build(spec *opentherm.RegisterSpec, role opentherm.Role, msgType opentherm.MessageType) ([]Descriptor, error) {
	if !spec.Access.Observable(role) {
		return nil, nil
	}

	subValues, err := opentherm.SubValues(spec)
	stateTopic := topics.BuildValueTopic(b.config.StateTopicPrefix, spec.ID, role.Suffix(), msgType.Short())

	descriptors := make([]Descriptor, 0, len(subValues))
	for _, sv := range subValues {
		descriptors = append(descriptors, b.describe(spec, role, sv, stateTopic))
	}
	if err != nil {
		b.log.LogWarn("Discovery for register %d (%s) incomplete: %v", spec.ID, role, err)
	}
	return descriptors, err
}

func (b *Builder) describe(spec *opentherm.RegisterSpec, role opentherm.Role, sv opentherm.SubValue, stateTopic string) Descriptor {
	flag := ""
	component := ComponentSensor
	name := sv.Description
	if sv.IsFlag {
		flag = sv.Name
		component = ComponentBinarySensor
		name = "Status " + sv.Name
	}

	valueTemplate := "{{ value }}"
	if !spec.Kind.IsScalar() {
		valueTemplate = fmt.Sprintf("{{ value_json.%s }}", sv.Name)
	}

	configID := topics.BuildConfigID(sv.Object, flag, role.Suffix())
	return Descriptor{
		Topic:         topics.BuildDiscoveryTopic(b.config.DiscoveryPrefix, component, b.config.NodeID, configID),
		Component:     component,
		RegisterID:    spec.ID,
		Role:          role,
		UniqueID:      topics.BuildUniqueID(b.config.UniqueIDPrefix, spec.ID, sv.Object, flag, role.Suffix()),
		ObjectID:      configID,
		Name:          name,
		Unit:          sv.Unit,
		DeviceClass:   sv.DeviceClass,
		StateTopic:    stateTopic,
		ValueTemplate: valueTemplate,
		IsFlag:        sv.IsFlag,
		template:      b.config.Template,
	}
}

// DiagnosticDescriptor announces the bridge diagnostic sensor fed by the
// error handler
func (b *Builder) DiagnosticDescriptor() Descriptor {
	tpl := b.config.Template
	tpl.StateClass = ""
	return Descriptor{
		Topic:          topics.BuildDiagnosticDiscoveryTopic(b.config.DiscoveryPrefix, b.config.NodeID),
		Component:      ComponentSensor,
		UniqueID:       topics.BuildDiagnosticUniqueID(b.config.UniqueIDPrefix),
		ObjectID:       b.config.NodeID + "_diagnostic",
		Name:           "Diagnostic",
		DeviceClass:    "enum",
		StateTopic:     topics.BuildDiagnosticStateTopic(b.config.StateTopicPrefix),
		ValueTemplate:  "{{ value_json.message }}",
		EntityCategory: "diagnostic",
		template:       tpl,
	}
}
