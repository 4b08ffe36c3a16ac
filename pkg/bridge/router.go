package bridge

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"otmqtt-bridge/pkg/config"
	"otmqtt-bridge/pkg/health"
	"otmqtt-bridge/pkg/homeassistant"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/metrics"
	"otmqtt-bridge/pkg/mqtt"
	"otmqtt-bridge/pkg/notify"
	"otmqtt-bridge/pkg/opentherm"
	"otmqtt-bridge/pkg/topics"
)

// frameQueueSize bounds the frames waiting per role
const frameQueueSize = 256

// Client is the part of the MQTT client the router needs
type Client interface {
	mqtt.Publisher
	mqtt.Subscriber
}

// Router subscribes to the gateway, bridge and Home Assistant topics and
// publishes what the processor produces. Frames of each role are handled in
// arrival order by one worker per role.
type Router struct {
	client    Client
	processor *Processor
	builder   *homeassistant.Builder
	settings  config.BridgeSettings
	notifier  notify.Notifier
	health    *health.GatewayHealthMonitor
	metrics   metrics.MetricsCollector
	log       logger.ILogger
	tracker   *metrics.PerformanceTracker

	queues map[opentherm.Role]chan string
	wg     sync.WaitGroup
}

// NewRouter creates a router publishing through client
func NewRouter(
	client Client,
	processor *Processor,
	builder *homeassistant.Builder,
	settings config.BridgeSettings,
	notifier notify.Notifier,
	monitor *health.GatewayHealthMonitor,
	collector metrics.MetricsCollector,
	log logger.ILogger,
) *Router {
	if collector == nil {
		collector = metrics.NewNullMetrics()
	}
	if log == nil {
		log = logger.NewStandardLogger()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(log)
	}
	queues := make(map[opentherm.Role]chan string, len(opentherm.Roles))
	for _, role := range opentherm.Roles {
		queues[role] = make(chan string, frameQueueSize)
	}
	return &Router{
		client:    client,
		processor: processor,
		builder:   builder,
		settings:  settings,
		notifier:  notifier,
		health:    monitor,
		metrics:   collector,
		log:       log,
		queues:    queues,
	}
}

// SetPerformanceTracker attaches the tracker logging periodic frame summaries
func (r *Router) SetPerformanceTracker(tracker *metrics.PerformanceTracker) {
	r.tracker = tracker
}

// Subscribe registers the handler of every routed topic
func (r *Router) Subscribe() error {
	routes := map[string]mqtt.MessageHandler{
		topics.BuildBridgeTopic(r.settings.Topic, "dump"):        r.handleDump,
		topics.BuildBridgeTopic(r.settings.Topic, "cmd"):         r.handleCommand,
		topics.BuildGatewayTopic(r.settings.OTGWTopic, "state"):  r.handleGatewayState,
		topics.BuildGatewayTopic(r.settings.OTGWTopic, "master"): r.enqueue(opentherm.Controller),
		topics.BuildGatewayTopic(r.settings.OTGWTopic, "slave"):  r.enqueue(opentherm.Responder),
		topics.BuildGatewayTopic(r.settings.OTGWTopic, "active"): r.handleActive,
		topics.BuildGatewayTopic(r.settings.OTGWTopic, "temp"):   r.handleTemp,
		topics.BuildHAStatusTopic(r.settings.DiscoveryPrefix):    r.handleHAStatus,
	}
	for topic, handler := range routes {
		if err := r.client.Subscribe(topic, handler); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the per-role frame workers. They stop when ctx is done.
func (r *Router) Run(ctx context.Context) {
	for role, queue := range r.queues {
		r.wg.Add(1)
		go r.worker(ctx, role, queue)
	}
}

// Wait blocks until the workers have stopped
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) worker(ctx context.Context, role opentherm.Role, queue <-chan string) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-queue:
			r.HandleFrame(ctx, role, text)
		}
	}
}

func (r *Router) enqueue(role opentherm.Role) mqtt.MessageHandler {
	queue := r.queues[role]
	return func(ctx context.Context, topic string, payload []byte) {
		select {
		case queue <- string(payload):
		default:
			r.log.LogWarn("⚠️ %s frame queue full, dropping %s", role, payload)
		}
	}
}

// HandleFrame processes one hex frame of role and publishes the result
func (r *Router) HandleFrame(ctx context.Context, role opentherm.Role, text string) {
	msgs, err := r.processor.ProcessHex(ctx, role, text)
	if err != nil {
		r.log.LogDebug("%s frame dropped: %v", role, err)
	}
	r.publish(ctx, msgs)

	if r.tracker != nil {
		r.tracker.RecordFrame(role.String(), err == nil)
	}
}

func (r *Router) publish(ctx context.Context, msgs []Message) {
	for _, msg := range msgs {
		if err := r.client.Publish(ctx, msg.Topic, msg.Payload, msg.Retain); err != nil {
			r.log.LogError("❌ Publish to %s failed: %v", msg.Topic, err)
			continue
		}
		if msg.Kind == KindDiscovery {
			r.metrics.IncrementDiscoveryPublished()
		}
	}
}

// OnConnect announces the bridge after every (re)connection and asks the
// gateway to resend its frames
func (r *Router) OnConnect(ctx context.Context, trial int) {
	announce := []Message{
		{Topic: topics.BuildBridgeTopic(r.settings.Topic, "state"), Payload: []byte("online"), Retain: true},
		{Topic: topics.BuildBridgeTopic(r.settings.Topic, "trial"), Payload: []byte(strconv.Itoa(trial))},
		{Topic: topics.BuildGatewayTopic(r.settings.OTGWTopic, "cmd"), Payload: []byte("clear")},
	}
	if r.builder != nil {
		d := r.builder.DiagnosticDescriptor()
		if payload, err := d.Payload(); err == nil {
			announce = append(announce, Message{Kind: KindDiscovery, Topic: d.Topic, Payload: payload})
		}
	}
	r.publish(ctx, announce)
}

// clear drops the local cache and the gateway's, so every register is
// rediscovered
func (r *Router) clear(ctx context.Context) {
	r.processor.Clear()
	r.publish(ctx, []Message{{
		Topic:   topics.BuildGatewayTopic(r.settings.OTGWTopic, "cmd"),
		Payload: []byte("clear"),
	}})
}

func (r *Router) handleCommand(ctx context.Context, topic string, payload []byte) {
	command := strings.TrimSpace(string(payload))
	if command != "clear" {
		r.log.LogDebug("Ignoring command %q", command)
		return
	}
	r.clear(ctx)
	r.log.LogDebug("Cleared otmqtt cache and (re)sent all discovery messages")
}

func (r *Router) handleHAStatus(ctx context.Context, topic string, payload []byte) {
	status := strings.TrimSpace(string(payload))
	r.log.LogInfo("Home Assistant status %s", status)
	if status != "online" {
		return
	}
	r.clear(ctx)
}

func (r *Router) handleDump(ctx context.Context, topic string, payload []byte) {
	if err := r.processor.WriteDump(r.settings.DumpDir); err != nil {
		r.log.LogError("❌ Dump failed: %v", err)
	}
}

func (r *Router) handleGatewayState(ctx context.Context, topic string, payload []byte) {
	state := strings.TrimSpace(string(payload))
	online := strings.HasPrefix(state, "online")
	r.log.LogWarn("Gateway state %s", state)
	r.metrics.SetGatewayStatus(online)

	if r.health != nil && !r.health.SetState(online) {
		return
	}
	if err := r.notifier.Send(ctx, "OT State: "+state); err != nil {
		r.log.LogDebug("Notification failed: %v", err)
	}
}

func (r *Router) handleActive(ctx context.Context, topic string, payload []byte) {
	active := strings.TrimSpace(string(payload))
	r.log.LogDebug("OT timeout: %s", active)
	if err := r.notifier.Send(ctx, "OT Active: "+active); err != nil {
		r.log.LogDebug("Notification failed: %v", err)
	}
}

func (r *Router) handleTemp(ctx context.Context, topic string, payload []byte) {
	r.log.LogInfo("Gateway temperature %s", strings.TrimSpace(string(payload)))
}
