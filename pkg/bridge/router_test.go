package bridge

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otmqtt-bridge/pkg/health"
	"otmqtt-bridge/pkg/metrics"
	"otmqtt-bridge/pkg/mqtt"
	"otmqtt-bridge/pkg/opentherm"
)

type published struct {
	topic   string
	payload string
	retain  bool
}

type fakeClient struct {
	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published []published
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]mqtt.MessageHandler)}
}

func (c *fakeClient) Publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic: topic, payload: string(payload), retain: retain})
	return nil
}

func (c *fakeClient) Subscribe(topic string, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	return nil
}

func (c *fakeClient) deliver(t *testing.T, topic, payload string) {
	t.Helper()
	c.mu.Lock()
	handler, ok := c.handlers[topic]
	c.mu.Unlock()
	require.True(t, ok, "no handler for %s", topic)
	handler(context.Background(), topic, []byte(payload))
}

func (c *fakeClient) messages() []published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.published...)
}

func (c *fakeClient) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = nil
}

func (c *fakeClient) find(topic string) (published, bool) {
	for _, p := range c.messages() {
		if p.topic == topic {
			return p, true
		}
	}
	return published{}, false
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Send(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

type routerFixture struct {
	*fixture
	client   *fakeClient
	notifier *recordingNotifier
	monitor  *health.GatewayHealthMonitor
	router   *Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := newFixture(t, false)
	client := newFakeClient()
	notifier := &recordingNotifier{}
	monitor := health.NewGatewayHealthMonitor(time.Second)
	f.processor.SetHealthMonitor(monitor)

	r := NewRouter(client, f.processor, f.builder, f.settings, notifier, monitor, f.metrics, f.log)
	require.NoError(t, r.Subscribe())
	return &routerFixture{fixture: f, client: client, notifier: notifier, monitor: monitor, router: r}
}

func TestRouterSubscriptions(t *testing.T) {
	rf := newRouterFixture(t)

	want := []string{
		"otgw/dump", "otgw/cmd",
		"esp/mqtt_ot/state", "esp/mqtt_ot/master", "esp/mqtt_ot/slave",
		"esp/mqtt_ot/active", "esp/mqtt_ot/temp",
		"homeassistant/status",
	}
	assert.Len(t, rf.client.handlers, len(want))
	for _, topic := range want {
		assert.Contains(t, rf.client.handlers, topic)
	}
}

func TestRouterOnConnect(t *testing.T) {
	rf := newRouterFixture(t)

	rf.router.OnConnect(context.Background(), 2)

	state, ok := rf.client.find("otgw/state")
	require.True(t, ok)
	assert.Equal(t, "online", state.payload)
	assert.True(t, state.retain)

	trial, ok := rf.client.find("otgw/trial")
	require.True(t, ok)
	assert.Equal(t, "2", trial.payload)

	cmd, ok := rf.client.find("esp/mqtt_ot/cmd")
	require.True(t, ok)
	assert.Equal(t, "clear", cmd.payload)

	_, ok = rf.client.find("homeassistant/sensor/OpenThermGW/OpenThermGW_diagnostic/config")
	assert.True(t, ok)
}

func TestRouterFramesInOrder(t *testing.T) {
	rf := newRouterFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	rf.router.Run(ctx)

	rf.client.deliver(t, "esp/mqtt_ot/slave", "40193200")
	rf.client.deliver(t, "esp/mqtt_ot/slave", "40193300")

	assert.Eventually(t, func() bool {
		n := 0
		for _, p := range rf.client.messages() {
			if p.topic == "otgw/25/s_ra" {
				n++
			}
		}
		return n == 2
	}, time.Second, 5*time.Millisecond)

	var values []string
	for _, p := range rf.client.messages() {
		if p.topic == "otgw/25/s_ra" {
			values = append(values, p.payload)
		}
	}
	assert.Equal(t, []string{"50.00", "51.00"}, values)
	assert.Equal(t, int64(2), rf.metrics.GetStats().FramesTotal)

	cancel()
	rf.router.Wait()
}

func TestRouterClearCommand(t *testing.T) {
	rf := newRouterFixture(t)
	rf.router.HandleFrame(context.Background(), opentherm.Responder, "40193200")
	rf.client.reset()

	rf.client.deliver(t, "otgw/cmd", "clear")

	cmd, ok := rf.client.find("esp/mqtt_ot/cmd")
	require.True(t, ok)
	assert.Equal(t, "clear", cmd.payload)

	rf.router.HandleFrame(context.Background(), opentherm.Responder, "40193200")
	_, ok = rf.client.find("homeassistant/sensor/OpenThermGW/Tboiler_s/config")
	assert.True(t, ok, "expected rediscovery after clear")
}

func TestRouterIgnoresOtherCommands(t *testing.T) {
	rf := newRouterFixture(t)

	rf.client.deliver(t, "otgw/cmd", "reboot")
	assert.Empty(t, rf.client.messages())
}

func TestRouterHomeAssistantStatus(t *testing.T) {
	rf := newRouterFixture(t)

	rf.client.deliver(t, "homeassistant/status", "offline")
	assert.Empty(t, rf.client.messages())

	rf.client.deliver(t, "homeassistant/status", "online")
	_, ok := rf.client.find("esp/mqtt_ot/cmd")
	assert.True(t, ok)
}

func TestRouterGatewayState(t *testing.T) {
	rf := newRouterFixture(t)

	rf.client.deliver(t, "esp/mqtt_ot/state", "online")
	rf.client.deliver(t, "esp/mqtt_ot/state", "online")
	rf.client.deliver(t, "esp/mqtt_ot/state", "offline")

	assert.False(t, rf.monitor.IsOnline())
	assert.False(t, rf.metrics.GetStats().GatewayOnline)
	assert.Equal(t, []string{"OT State: online", "OT State: offline"}, rf.notifier.messages)
	assert.Equal(t, 3, rf.log.CountWarn("Gateway state"))
}

func TestRouterActiveAndTemp(t *testing.T) {
	rf := newRouterFixture(t)

	rf.client.deliver(t, "esp/mqtt_ot/active", "1")
	rf.client.deliver(t, "esp/mqtt_ot/temp", "21.5")

	assert.Equal(t, []string{"OT Active: 1"}, rf.notifier.messages)
	assert.Empty(t, rf.client.messages())
}

func TestRouterDump(t *testing.T) {
	rf := newRouterFixture(t)
	rf.router.HandleFrame(context.Background(), opentherm.Responder, "40193200")

	rf.client.deliver(t, "otgw/dump", "")

	for _, name := range []string{ControllerDumpFile, ResponderDumpFile, RegistryDumpFile} {
		_, err := os.Stat(filepath.Join(rf.settings.DumpDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRouterDropsUnparsableFrames(t *testing.T) {
	rf := newRouterFixture(t)

	rf.router.HandleFrame(context.Background(), opentherm.Controller, "not-hex")

	assert.Empty(t, rf.client.messages())
	assert.Equal(t, int64(1), rf.metrics.GetStats().InvalidFramesTotal)
}

func TestRouterTracksPerformance(t *testing.T) {
	rf := newRouterFixture(t)
	tracker := metrics.NewPerformanceTracker(time.Hour, rf.log)
	rf.router.SetPerformanceTracker(tracker)

	rf.router.HandleFrame(context.Background(), opentherm.Responder, "40193200")
	rf.router.HandleFrame(context.Background(), opentherm.Responder, "70190000")

	stats := tracker.GetStats()
	assert.Equal(t, 1, stats.DecodedFrames)
	assert.Equal(t, 1, stats.RejectedFrames)
}
