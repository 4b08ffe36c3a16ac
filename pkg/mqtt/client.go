package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"otmqtt-bridge/pkg/config"
	bridgeerrors "otmqtt-bridge/pkg/errors"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/metrics"
)

// ConnectHandler runs after every successful (re)connection
type ConnectHandler func(ctx context.Context, trial int)

// Client wraps the paho client with retrying connect, last will and a
// subscription table that is restored after reconnects
type Client struct {
	client   paho.Client
	settings config.MQTTSettings
	metrics  metrics.MetricsCollector
	log      logger.ILogger

	mu            sync.RWMutex
	subscriptions map[string]MessageHandler
	onConnect     []ConnectHandler
	trial         int
	ctx           context.Context
}

// NewClient creates a client for the configured broker
func NewClient(settings config.MQTTSettings, collector metrics.MetricsCollector, log logger.ILogger) *Client {
	c := newClient(settings, collector, log)

	opts := paho.NewClientOptions()
	scheme := "tcp"
	if settings.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, settings.Broker, settings.Port))
	opts.SetClientID(settings.ClientID)
	opts.SetUsername(settings.Username)
	opts.SetPassword(settings.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(settings.KeepAlive)
	opts.SetPingTimeout(10 * time.Second)

	// Set Last Will and Testament to automatically mark as offline on disconnect
	opts.SetWill(settings.WillTopic, settings.WillMessage, 1, settings.WillRetain)

	opts.SetOnConnectHandler(func(client paho.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		c.log.LogError("❌ MQTT connection lost: %v", err)
		c.metrics.SetBrokerStatus(false)
	})

	c.client = paho.NewClient(opts)
	return c
}

func newClient(settings config.MQTTSettings, collector metrics.MetricsCollector, log logger.ILogger) *Client {
	if collector == nil {
		collector = metrics.NewNullMetrics()
	}
	if log == nil {
		log = logger.NewStandardLogger()
	}
	return &Client{
		settings:      settings,
		metrics:       collector,
		log:           log,
		subscriptions: make(map[string]MessageHandler),
		ctx:           context.Background(),
	}
}

// OnConnect registers a handler run after every (re)connection
func (c *Client) OnConnect(handler ConnectHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, handler)
}

// Trial returns how many times the client has connected
func (c *Client) Trial() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trial
}

func (c *Client) handleConnect() {
	c.mu.Lock()
	c.trial++
	trial := c.trial
	ctx := c.ctx
	handlers := append([]ConnectHandler(nil), c.onConnect...)
	subs := make(map[string]MessageHandler, len(c.subscriptions))
	for topic, handler := range c.subscriptions {
		subs[topic] = handler
	}
	c.mu.Unlock()

	c.log.LogInfo("✅ Connected to MQTT broker %s:%d (trial %d)", c.settings.Broker, c.settings.Port, trial)
	c.metrics.SetBrokerStatus(true)

	for topic, handler := range subs {
		if err := c.subscribe(topic, handler); err != nil {
			c.log.LogError("❌ Resubscribe to %s failed: %v", topic, err)
		}
	}

	// Handlers publish, so they must not block paho's connect callback
	for _, handler := range handlers {
		go handler(ctx, trial)
	}
}

// Connect connects to the broker, retrying every RetryDelay until success,
// context cancellation, or ReconnectMaxTrials failed attempts (0 = unlimited)
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	retryDelay := c.settings.RetryDelay
	maxTrials := c.settings.ReconnectMaxTrials
	broker := fmt.Sprintf("%s:%d", c.settings.Broker, c.settings.Port)

	attempt := 1
	for {
		logger.LogDebug("🔄 Attempting to connect to MQTT broker %s (attempt %d)...", broker, attempt)

		token := c.client.Connect()
		if token.Wait() && token.Error() == nil {
			return nil
		}

		c.log.LogError("❌ MQTT connection failed (attempt %d): %v", attempt, token.Error())
		if maxTrials > 0 && attempt >= maxTrials {
			return bridgeerrors.NewMQTTError("connect",
				fmt.Errorf("giving up after %d trials: %w", attempt, token.Error()), broker)
		}
		c.log.LogInfo("⏳ Retrying in %.0f seconds...", retryDelay.Seconds())

		select {
		case <-ctx.Done():
			return fmt.Errorf("MQTT connection cancelled: %w", ctx.Err())
		case <-time.After(retryDelay):
			attempt++
		}
	}
}

// Disconnect disconnects from the broker
func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.client.Disconnect(250)
	}
	c.metrics.SetBrokerStatus(false)
}

// IsConnected reports the broker connection state
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Publish publishes payload with QoS 0 and waits for completion or ctx
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	if !c.client.IsConnected() {
		c.metrics.IncrementMQTTErrors()
		return c.publishError(topic, fmt.Errorf("client not connected"))
	}

	token := c.client.Publish(topic, 0, retain, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if err := token.Error(); err != nil {
			c.metrics.IncrementMQTTErrors()
			return c.publishError(topic, err)
		}
	}

	c.metrics.IncrementMQTTPublishes()
	logger.LogTrace("📤 %s %s", topic, payload)
	return nil
}

func (c *Client) publishError(topic string, err error) error {
	mqttErr := bridgeerrors.NewMQTTError("publish", err, c.settings.Broker)
	mqttErr.Topic = topic
	return mqttErr
}

// Subscribe registers handler for topic. The subscription is restored on
// every reconnect.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	c.subscriptions[topic] = handler
	c.mu.Unlock()

	if !c.client.IsConnected() {
		return nil
	}
	return c.subscribe(topic, handler)
}

func (c *Client) subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, 0, func(client paho.Client, msg paho.Message) {
		c.dispatch(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		mqttErr := bridgeerrors.NewMQTTError("subscribe", token.Error(), c.settings.Broker)
		mqttErr.Topic = topic
		return mqttErr
	}
	logger.LogDebug("📥 Subscribed to %s", topic)
	return nil
}

func (c *Client) dispatch(topic string, payload []byte) {
	c.mu.RLock()
	handler, ok := c.subscriptions[topic]
	ctx := c.ctx
	c.mu.RUnlock()

	if !ok {
		c.log.LogDebug("No handler for %s", topic)
		return
	}
	logger.LogDebug("rcvd: %-20s %s", topic, payload)
	handler(ctx, topic, payload)
}
