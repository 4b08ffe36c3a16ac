package builder

import (
	"context"
	"sync"
	"testing"
	"time"

	"otmqtt-bridge/pkg/config"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/metrics"
	"otmqtt-bridge/pkg/mqtt"
)

type fakeClient struct {
	mu         sync.Mutex
	connected  bool
	handlers   map[string]mqtt.MessageHandler
	onConnect  []mqtt.ConnectHandler
	published  map[string]string
	diagnostic []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		handlers:  make(map[string]mqtt.MessageHandler),
		published: make(map[string]string),
	}
}

func (c *fakeClient) Publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[topic] = string(payload)
	return nil
}

func (c *fakeClient) Subscribe(topic string, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	return nil
}

func (c *fakeClient) PublishDiagnostic(ctx context.Context, code int, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostic = append(c.diagnostic, message)
	return nil
}

func (c *fakeClient) OnConnect(handler mqtt.ConnectHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, handler)
}

func (c *fakeClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.connected = true
	handlers := append([]mqtt.ConnectHandler(nil), c.onConnect...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(ctx, 1)
	}
	return nil
}

func (c *fakeClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) get(topic string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.published[topic]
	return v, ok
}

type nopNotifier struct{}

func (nopNotifier) Send(ctx context.Context, message string) error { return nil }

func TestBuildRequiresConfig(t *testing.T) {
	if _, err := NewApplicationBuilder(nil).Build(); err == nil {
		t.Error("Expected error for missing config")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MQTT.Broker = ""
	if _, err := NewApplicationBuilder(cfg).Build(); err == nil {
		t.Error("Expected validation error")
	}
}

func TestBuildDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsPort = 0

	app, err := NewApplicationBuilder(cfg).WithClient(newFakeClient()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if app.GetProcessor() == nil || app.GetRouter() == nil || app.GetHealthMonitor() == nil {
		t.Error("Expected all components to be created")
	}
	if _, ok := app.GetMetrics().(*metrics.NullMetrics); !ok {
		t.Errorf("Expected NullMetrics when metrics are disabled, got %T", app.GetMetrics())
	}
	if app.GetConfig() != cfg {
		t.Error("Expected config to be kept")
	}
}

func TestApplicationLifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.Bridge.HeartbeatInterval = 0

	client := newFakeClient()
	pm := metrics.NewPrometheusMetrics()
	app, err := NewApplicationBuilder(cfg).
		WithClient(client).
		WithMetrics(pm).
		WithNotifier(nopNotifier{}).
		WithLogger(logger.NewMockLogger()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if state, _ := client.get("otgw/state"); state != "online" {
		t.Errorf("Expected online state after connect, got %q", state)
	}
	if len(client.handlers) != 8 {
		t.Errorf("Expected 8 subscriptions, got %d", len(client.handlers))
	}

	client.mu.Lock()
	slave := client.handlers["esp/mqtt_ot/slave"]
	client.mu.Unlock()
	slave(context.Background(), "esp/mqtt_ot/slave", []byte("40193200"))

	deadline := time.Now().Add(time.Second)
	for {
		if v, ok := client.get("otgw/25/s_ra"); ok {
			if v != "50.00" {
				t.Errorf("Expected 50.00, got %q", v)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected frame to be published")
		}
		time.Sleep(5 * time.Millisecond)
	}

	app.Stop()

	if state, _ := client.get("otgw/state"); state != "offline" {
		t.Errorf("Expected offline state after stop, got %q", state)
	}
	if client.IsConnected() {
		t.Error("Expected client disconnected")
	}
}
