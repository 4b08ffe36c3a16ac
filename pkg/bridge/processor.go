// Package bridge drives OpenTherm frames received from the gateway through
// the decoder and turns them into MQTT publications.
package bridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"otmqtt-bridge/pkg/cache"
	"otmqtt-bridge/pkg/config"
	bridgeerrors "otmqtt-bridge/pkg/errors"
	"otmqtt-bridge/pkg/health"
	"otmqtt-bridge/pkg/homeassistant"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/metrics"
	"otmqtt-bridge/pkg/opentherm"
	"otmqtt-bridge/pkg/topics"
)

// MessageKind tells what a Message announces
type MessageKind uint8

const (
	KindDiscovery MessageKind = iota
	KindInformative
	KindValue
)

// Message is one outbound MQTT publication
type Message struct {
	Kind    MessageKind
	Topic   string
	Payload []byte
	Retain  bool
}

// Processor turns frames into messages. Registry lookup, the informative
// check and the cache update of one frame happen under one lock, so frames
// of both roles may be processed concurrently.
type Processor struct {
	mu       sync.Mutex
	registry *opentherm.Registry
	changes  *cache.ChangeCache
	builder  *homeassistant.Builder
	settings config.BridgeSettings
	metrics  metrics.MetricsCollector
	health   *health.GatewayHealthMonitor
	errors   *bridgeerrors.ErrorHandler
	log      logger.ILogger
}

// NewProcessor creates a frame processor
func NewProcessor(
	settings config.BridgeSettings,
	registry *opentherm.Registry,
	changes *cache.ChangeCache,
	builder *homeassistant.Builder,
	collector metrics.MetricsCollector,
	log logger.ILogger,
) *Processor {
	if collector == nil {
		collector = metrics.NewNullMetrics()
	}
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &Processor{
		registry: registry,
		changes:  changes,
		builder:  builder,
		settings: settings,
		metrics:  collector,
		errors:   bridgeerrors.NewErrorHandler(nil),
		log:      log,
	}
}

// SetErrorHandler replaces the handler receiving frame and metadata errors
func (p *Processor) SetErrorHandler(handler *bridgeerrors.ErrorHandler) {
	p.errors = handler
}

// SetHealthMonitor attaches the monitor fed with frame outcomes
func (p *Processor) SetHealthMonitor(monitor *health.GatewayHealthMonitor) {
	p.health = monitor
}

// ParseFrame parses the hexadecimal frame text sent by the gateway
func ParseFrame(text string) (uint32, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid frame %q: %w", text, err)
	}
	return uint32(raw), nil
}

// ProcessHex parses and processes one frame received as hex text
func (p *Processor) ProcessHex(ctx context.Context, role opentherm.Role, text string) ([]Message, error) {
	raw, err := ParseFrame(text)
	if err != nil {
		p.metrics.IncrementInvalidFrames()
		p.recordRejected()
		return nil, err
	}
	return p.Process(ctx, role, raw)
}

// Process handles one frame of role.
//
// The first frame of a register in a role yields its discovery documents.
// In informative mode the first frame of a register in either role also
// yields the desc, d_obj and rw topics. Every frame whose value differs from
// the last one of the same role and register yields a value update.
//
// Frames whose message type carries no payload are rejected with a
// *errors.FrameError. Metadata mismatches are reported to the error handler
// and never returned.
func (p *Processor) Process(ctx context.Context, role opentherm.Role, raw uint32) ([]Message, error) {
	start := time.Now()
	defer func() { p.metrics.ObserveFrameDuration(time.Since(start)) }()

	p.metrics.IncrementFrames(role.String())
	frame := opentherm.Decode(raw)

	if !frame.CheckParity() {
		p.metrics.IncrementParityErrors()
		p.log.LogDebug("Parity error in %s frame 0x%08X", role, raw)
	}
	if frame.HasSpareBits() {
		p.log.LogDebug("Spare bits 0x%X set in %s frame 0x%08X", frame.Spare(), role, raw)
	}

	msgType, err := frame.Classify()
	if err != nil {
		// relayed intact, so it still counts as traffic
		p.metrics.IncrementInvalidFrames()
		p.recordFrame()
		p.errors.Handle(ctx, err)
		return nil, err
	}

	id := frame.RegisterID()

	p.mu.Lock()
	spec, created := p.registry.Resolve(id)
	firstInAnyRole := !p.changes.Seen(opentherm.Controller, id) && !p.changes.Seen(opentherm.Responder, id)
	obs := p.changes.Observe(role, id, frame.Value())
	p.mu.Unlock()

	if created {
		p.metrics.IncrementUnknownRegisters()
	}

	var msgs []Message
	if obs.FirstSeen {
		msgs = append(msgs, p.discovery(ctx, spec, role, msgType)...)
	}
	if p.settings.Informative && firstInAnyRole {
		msgs = append(msgs, p.informative(spec)...)
	}
	if obs.Changed {
		payload, err := opentherm.DecodeValue(spec, frame.Value())
		if err != nil {
			p.metrics.IncrementDecodeErrors()
			p.errors.Handle(ctx, err)
		}
		topic := topics.BuildValueTopic(p.settings.Topic, id, role.Suffix(), msgType.Short())
		msgs = append(msgs, Message{
			Kind:    KindValue,
			Topic:   topic,
			Payload: []byte(payload.Render()),
		})
		logger.LogTrace("%s updated: 0x%08X -> %s %s", role, raw, topic, payload.Render())
	}

	p.recordFrame()
	return msgs, nil
}

func (p *Processor) discovery(ctx context.Context, spec *opentherm.RegisterSpec, role opentherm.Role, msgType opentherm.MessageType) []Message {
	descriptors, err := p.builder.Build(spec, role, msgType)
	if err != nil {
		p.metrics.IncrementDecodeErrors()
		p.errors.Handle(ctx, err)
	}

	msgs := make([]Message, 0, len(descriptors))
	for _, d := range descriptors {
		payload, err := d.Payload()
		if err != nil {
			p.log.LogError("❌ %v", err)
			continue
		}
		msgs = append(msgs, Message{Kind: KindDiscovery, Topic: d.Topic, Payload: payload})
	}
	if len(msgs) > 0 {
		p.log.LogInfo("Discovery msg for %s_%d", role.Suffix(), spec.ID)
	}
	return msgs
}

func (p *Processor) informative(spec *opentherm.RegisterSpec) []Message {
	return []Message{
		{
			Kind:    KindInformative,
			Topic:   topics.BuildDescTopic(p.settings.Topic, spec.ID),
			Payload: []byte(spec.DescriptionText()),
			Retain:  true,
		},
		{
			Kind:    KindInformative,
			Topic:   topics.BuildDataObjectTopic(p.settings.Topic, spec.ID),
			Payload: []byte(spec.DataObjectText()),
			Retain:  true,
		},
		{
			Kind:    KindInformative,
			Topic:   topics.BuildRWTopic(p.settings.Topic, spec.ID),
			Payload: []byte(spec.Access.String()),
			Retain:  true,
		},
	}
}

func (p *Processor) recordFrame() {
	if p.health != nil {
		p.health.RecordFrame()
	}
}

func (p *Processor) recordRejected() {
	if p.health == nil {
		return
	}
	if p.health.RecordError() {
		p.log.LogWarn("⚠️ Gateway keeps sending unusable frames (%d in a row)", p.health.GetConsecutiveErrors())
	}
}

// Clear forgets every observed value so all registers are announced again
func (p *Processor) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes.ClearAll()
	p.log.LogInfo("🧹 Cleared change cache, discovery will be re-sent")
}

// Snapshot returns the last raw values of role
func (p *Processor) Snapshot(role opentherm.Role) map[uint8]cache.Entry {
	return p.changes.Snapshot(role)
}

// Registry returns the register table used by the processor
func (p *Processor) Registry() *opentherm.Registry {
	return p.registry
}
