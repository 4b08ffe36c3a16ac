package builder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"otmqtt-bridge/pkg/bridge"
	"otmqtt-bridge/pkg/cache"
	"otmqtt-bridge/pkg/config"
	bridgeerrors "otmqtt-bridge/pkg/errors"
	"otmqtt-bridge/pkg/health"
	"otmqtt-bridge/pkg/homeassistant"
	bridgehttp "otmqtt-bridge/pkg/http"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/metrics"
	"otmqtt-bridge/pkg/mqtt"
	"otmqtt-bridge/pkg/notify"
	"otmqtt-bridge/pkg/opentherm"
	"otmqtt-bridge/pkg/services"
	"otmqtt-bridge/pkg/topics"
)

// ClientInterface defines the contract for the MQTT transport
// Enables mocking and testing
type ClientInterface interface {
	mqtt.BridgeClient
	OnConnect(handler mqtt.ConnectHandler)
}

// ApplicationBuilder provides a fluent interface for constructing Application instances
// Following Builder pattern to enable dependency injection and improve testability
type ApplicationBuilder struct {
	config           *config.Config
	client           ClientInterface
	notifier         notify.Notifier
	metrics          metrics.MetricsCollector
	healthMonitor    *health.GatewayHealthMonitor
	log              logger.ILogger
	errorGracePeriod time.Duration
	summaryInterval  time.Duration
}

// NewApplicationBuilder creates a new builder with default configuration
func NewApplicationBuilder(cfg *config.Config) *ApplicationBuilder {
	return &ApplicationBuilder{
		config:           cfg,
		errorGracePeriod: 15 * time.Second, // Default grace period
		summaryInterval:  5 * time.Minute,
	}
}

// WithClient sets a custom MQTT client implementation
func (b *ApplicationBuilder) WithClient(client ClientInterface) *ApplicationBuilder {
	b.client = client
	return b
}

// WithNotifier sets a custom notification sink
func (b *ApplicationBuilder) WithNotifier(notifier notify.Notifier) *ApplicationBuilder {
	b.notifier = notifier
	return b
}

// WithMetrics sets a custom metrics collector
func (b *ApplicationBuilder) WithMetrics(collector metrics.MetricsCollector) *ApplicationBuilder {
	b.metrics = collector
	return b
}

// WithHealthMonitor sets a custom health monitor
func (b *ApplicationBuilder) WithHealthMonitor(monitor *health.GatewayHealthMonitor) *ApplicationBuilder {
	b.healthMonitor = monitor
	return b
}

// WithLogger sets the logger handed to every component
func (b *ApplicationBuilder) WithLogger(log logger.ILogger) *ApplicationBuilder {
	b.log = log
	return b
}

// WithErrorGracePeriod sets how long bad frames may persist before a warning
func (b *ApplicationBuilder) WithErrorGracePeriod(period time.Duration) *ApplicationBuilder {
	b.errorGracePeriod = period
	return b
}

// WithSummaryInterval sets the interval of the frame summary log line
func (b *ApplicationBuilder) WithSummaryInterval(interval time.Duration) *ApplicationBuilder {
	b.summaryInterval = interval
	return b
}

// Build constructs the Application with all dependencies
// Creates default implementations for any missing dependencies
func (b *ApplicationBuilder) Build() (*Application, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	if b.log == nil {
		b.log = logger.NewStandardLogger()
	}

	if b.metrics == nil {
		if b.config.MetricsPort > 0 {
			b.metrics = metrics.NewPrometheusMetrics()
		} else {
			b.metrics = metrics.NewNullMetrics()
		}
	}

	if b.client == nil {
		b.client = mqtt.NewClient(config.NewMQTTSettings(b.config), b.metrics, b.log)
	}

	if b.notifier == nil {
		b.notifier = notify.New(config.NewTelegramSettings(b.config), b.log)
	}

	if b.healthMonitor == nil {
		b.healthMonitor = health.NewGatewayHealthMonitor(b.errorGracePeriod)
	}

	settings := config.NewBridgeSettings(b.config)
	discovery := homeassistant.NewBuilder(config.NewDiscoveryConfig(b.config), b.log)

	processor := bridge.NewProcessor(
		settings,
		opentherm.NewRegistry(b.log),
		cache.NewChangeCache(),
		discovery,
		b.metrics,
		b.log,
	)
	processor.SetErrorHandler(bridgeerrors.NewErrorHandler(b.client))
	processor.SetHealthMonitor(b.healthMonitor)

	router := bridge.NewRouter(b.client, processor, discovery, settings, b.notifier, b.healthMonitor, b.metrics, b.log)
	router.SetPerformanceTracker(metrics.NewPerformanceTracker(b.summaryInterval, b.log))

	app := &Application{
		config:        b.config,
		settings:      settings,
		client:        b.client,
		processor:     processor,
		router:        router,
		notifier:      b.notifier,
		metrics:       b.metrics,
		healthMonitor: b.healthMonitor,
		heartbeat:     services.NewHeartbeatService(b.client, b.healthMonitor, settings.Topic, settings.HeartbeatInterval),
		log:           b.log,
	}

	return app, nil
}

// Application represents the running bridge
type Application struct {
	config        *config.Config
	settings      config.BridgeSettings
	client        ClientInterface
	processor     *bridge.Processor
	router        *bridge.Router
	notifier      notify.Notifier
	metrics       metrics.MetricsCollector
	healthMonitor *health.GatewayHealthMonitor
	heartbeat     *services.HeartbeatService
	log           logger.ILogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Start wires the routes, starts the HTTP endpoints and workers and
// connects to the broker
func (app *Application) Start(ctx context.Context) error {
	logger.LogInfo("🚀 Starting OpenTherm MQTT Bridge...")

	ctx, app.cancel = context.WithCancel(ctx)

	app.startHTTP()

	if err := app.router.Subscribe(); err != nil {
		return fmt.Errorf("error subscribing: %w", err)
	}
	app.client.OnConnect(app.router.OnConnect)
	app.router.Run(ctx)

	if err := app.client.Connect(ctx); err != nil {
		return fmt.Errorf("error connecting to MQTT broker: %w", err)
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.heartbeat.Start(ctx)
	}()

	host, _ := os.Hostname()
	if err := app.notifier.Send(ctx, fmt.Sprintf("%s@%s started", os.Args[0], host)); err != nil {
		logger.LogWarn("⚠️ Start notification failed: %v", err)
	}

	logger.LogInfo("✅ Bridge running: gateway '%s', topic '%s'", app.settings.OTGWTopic, app.settings.Topic)
	return nil
}

func (app *Application) startHTTP() {
	metricsHandler, _ := app.metrics.(http.Handler)
	sharedPort := app.config.HealthPort > 0 && app.config.HealthPort == app.config.MetricsPort

	if app.config.MetricsPort > 0 && !sharedPort {
		go func() {
			logger.LogInfo("📊 Metrics on :%d/metrics", app.config.MetricsPort)
			if err := app.metrics.StartMetricsServer(app.config.MetricsPort); err != nil {
				logger.LogError("❌ Metrics server stopped: %v", err)
			}
		}()
	}

	if app.config.HealthPort > 0 {
		if !sharedPort {
			metricsHandler = nil
		}
		handler := bridgehttp.NewHealthHandler(app.healthMonitor, config.CurrentVersion)
		go func() {
			logger.LogInfo("🩺 Health on :%d/health", app.config.HealthPort)
			if err := bridgehttp.StartHealthServer(handler, metricsHandler, app.config.HealthPort); err != nil {
				logger.LogError("❌ Health server stopped: %v", err)
			}
		}()
	}
}

// Stop marks the bridge offline and disconnects
func (app *Application) Stop() {
	logger.LogInfo("🛑 Stopping OpenTherm MQTT Bridge...")

	if app.client.IsConnected() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		state := topics.BuildBridgeTopic(app.settings.Topic, "state")
		if err := app.client.Publish(ctx, state, []byte("offline"), true); err != nil {
			logger.LogDebug("Offline status not published: %v", err)
		}
		cancel()
	}

	if app.cancel != nil {
		app.cancel()
	}
	app.router.Wait()
	app.wg.Wait()
	app.client.Disconnect()

	logger.LogInfo("👋 Bridge stopped")
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *config.Config {
	return app.config
}

// GetClient returns the MQTT client
func (app *Application) GetClient() ClientInterface {
	return app.client
}

// GetProcessor returns the frame processor
func (app *Application) GetProcessor() *bridge.Processor {
	return app.processor
}

// GetRouter returns the topic router
func (app *Application) GetRouter() *bridge.Router {
	return app.router
}

// GetHealthMonitor returns the health monitor
func (app *Application) GetHealthMonitor() *health.GatewayHealthMonitor {
	return app.healthMonitor
}

// GetMetrics returns the metrics collector
func (app *Application) GetMetrics() metrics.MetricsCollector {
	return app.metrics
}
