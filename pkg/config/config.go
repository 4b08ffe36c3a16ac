package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	bridgeerrors "otmqtt-bridge/pkg/errors"
	"otmqtt-bridge/pkg/homeassistant"
	"otmqtt-bridge/pkg/logger"
)

// Config represents the complete application configuration
type Config struct {
	Version       string               `yaml:"version,omitempty"`
	MQTT          MQTTConfig           `yaml:"mqtt"`
	HomeAssistant HAConfig             `yaml:"homeassistant"`
	Telegram      TelegramConfig       `yaml:"telegram"`
	Bridge        BridgeConfig         `yaml:"bridge"`
	MetricsPort   int                  `yaml:"metrics_port"` // 0 disables /metrics
	HealthPort    int                  `yaml:"health_port"`  // 0 disables /health
	Logging       logger.LoggingConfig `yaml:"logging"`
}

// MQTTConfig contains MQTT broker settings and topic prefixes
type MQTTConfig struct {
	Broker             string `yaml:"broker"`
	Port               int    `yaml:"port"`
	TLS                bool   `yaml:"tls"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	ClientID           string `yaml:"client_id"`
	RetryDelay         int    `yaml:"retry_delay"` // Delay between connection retries in milliseconds
	KeepAlive          int    `yaml:"keep_alive"`  // Seconds
	ReconnectMaxTrials int    `yaml:"reconnect_max_trials"`
	Topic              string `yaml:"topic"`      // Bridge topic prefix
	OTGWTopic          string `yaml:"otgw_topic"` // Topic prefix of the OpenTherm gateway monitor
	LWTMessage         string `yaml:"lwt_message"`
	LWTRetain          bool   `yaml:"lwt_retain"`
}

// HAConfig contains Home Assistant MQTT Discovery settings
type HAConfig struct {
	DiscoveryPrefix string                       `yaml:"discovery_prefix"`
	NodeID          string                       `yaml:"node_id"`
	UniqueIDPrefix  string                       `yaml:"unique_id_prefix"`
	StateClass      string                       `yaml:"state_class"`
	Availability    []homeassistant.Availability `yaml:"availability"`
	Device          homeassistant.DeviceInfo     `yaml:"device"`
	Origin          homeassistant.Origin         `yaml:"origin"`
}

// TelegramConfig contains the notification bot settings
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// BridgeConfig contains frame processing settings
type BridgeConfig struct {
	Informative       bool   `yaml:"informative"` // Publish desc, d_obj and rw topics
	DumpDir           string `yaml:"dump_dir"`
	HeartbeatInterval int    `yaml:"heartbeat_interval"` // Seconds, 0 disables
}

// Default returns the configuration written when no file exists
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		MQTT: MQTTConfig{
			Broker:             "localhost",
			Port:               1883,
			Username:           "XXXXX",
			Password:           "XXXXX",
			RetryDelay:         5000,
			KeepAlive:          60,
			ReconnectMaxTrials: 4,
			Topic:              "otgw",
			OTGWTopic:          "esp/mqtt_ot",
			LWTMessage:         "offline",
			LWTRetain:          true,
		},
		HomeAssistant: HAConfig{
			DiscoveryPrefix: "homeassistant",
			NodeID:          "OpenThermGW",
			UniqueIDPrefix:  "esp8266_otgw_b4e62d1428ea",
			StateClass:      "measurement",
			Availability: []homeassistant.Availability{
				{Topic: "esp/mqtt_ot/state", PayloadAvailable: "online", PayloadNotAvailable: "offline"},
				{Topic: "otgw/state", PayloadAvailable: "online", PayloadNotAvailable: "offline"},
			},
			Device: homeassistant.DeviceInfo{
				Name:         "OpenTherm Gateway",
				Identifiers:  []string{"esp_otgw_b4_e6_2d_14_28_ea"},
				Manufacturer: "https://diyless.com/product/esp8266-opentherm-gateway",
				Model:        "OpenTherm monitor DiyLess ESP8266",
				HWVersion:    "2024-08",
			},
			Origin: homeassistant.Origin{
				Name: "OpenTherm2MQTT",
				SW:   "0.9",
				URL:  "https://github.com/joshuisken/otgw2mqtt",
			},
		},
		Telegram: TelegramConfig{
			Token:  "666666666:XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX",
			ChatID: "333333333",
		},
		Bridge: BridgeConfig{
			DumpDir:           ".",
			HeartbeatInterval: 60,
		},
		Logging: logger.LoggingConfig{
			Level: "error",
		},
	}
}

// LoadConfig loads configuration from the given path or the standard
// locations. An explicitly named file that does not exist is created with
// the default configuration first.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			logger.LogWarn("⚠️  Writing default configuration to '%s'", configPath)
			if err := Default().Save(configPath); err != nil {
				return nil, err
			}
		}
	}

	// Try to find configuration file in different locations
	paths := []string{
		configPath,
		"/etc/otmqtt/config.yaml",
		"./config.yaml",
	}

	var data []byte
	var err error
	var usedPath string

	for _, path := range paths {
		if path == "" {
			continue
		}
		// #nosec G304 - Paths are from a hardcoded list of safe configuration file locations
		data, err = os.ReadFile(path)
		if err == nil {
			usedPath = path
			break
		}
	}

	if usedPath == "" {
		return nil, bridgeerrors.NewConfigError("load",
			fmt.Errorf("cannot read configuration file from any of the locations: %v. Last error: %w", paths, err), "")
	}

	config, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", usedPath, err)
	}

	logger.LogInfo("✅ Configuration loaded successfully from %s (version: %s)", usedPath, config.Version)
	return config, nil
}

// LoadConfigFromString loads configuration from a YAML string (for testing)
func LoadConfigFromString(yamlContent string) (*Config, error) {
	return parse([]byte(yamlContent))
}

func parse(data []byte) (*Config, error) {
	// First, parse just the version to validate compatibility
	var versionCheck VersionInfo
	if err := yaml.Unmarshal(data, &versionCheck); err != nil {
		return nil, bridgeerrors.NewConfigError("parse", err, "version")
	}
	if versionCheck.Version != "" {
		if err := ValidateVersion(versionCheck.Version); err != nil {
			return nil, bridgeerrors.NewConfigError("parse", err, "version")
		}
	}

	// Unset fields keep their defaults
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, bridgeerrors.NewConfigError("parse", err, "")
	}
	if config.Version == "" {
		config.Version = CurrentVersion
	}
	if config.MQTT.ClientID == "" {
		config.MQTT.ClientID = DefaultClientID()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultClientID returns a client id unique to this process
func DefaultClientID() string {
	return "otmqtt-" + uuid.New().String()[:8]
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return bridgeerrors.NewConfigError("save", err, "")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return bridgeerrors.NewConfigError("save", err, "")
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return bridgeerrors.NewConfigError("save", err, "")
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MQTT.Broker == "" {
		return invalid("mqtt.broker", fmt.Errorf("mqtt.broker is not specified"))
	}
	if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
		return invalid("mqtt.port", fmt.Errorf("mqtt.port must be between 1 and 65535"))
	}
	if c.MQTT.Topic == "" {
		return invalid("mqtt.topic", fmt.Errorf("mqtt.topic is not specified"))
	}
	if c.MQTT.OTGWTopic == "" {
		return invalid("mqtt.otgw_topic", fmt.Errorf("mqtt.otgw_topic is not specified"))
	}
	if c.MQTT.RetryDelay < 0 {
		return invalid("mqtt.retry_delay", fmt.Errorf("mqtt.retry_delay must be non-negative"))
	}
	if c.MQTT.ReconnectMaxTrials < 0 {
		return invalid("mqtt.reconnect_max_trials", fmt.Errorf("mqtt.reconnect_max_trials must be non-negative"))
	}
	if c.HomeAssistant.DiscoveryPrefix == "" {
		return invalid("homeassistant.discovery_prefix", fmt.Errorf("homeassistant.discovery_prefix is not specified"))
	}
	if c.HomeAssistant.NodeID == "" {
		return invalid("homeassistant.node_id", fmt.Errorf("homeassistant.node_id is not specified"))
	}
	if c.HomeAssistant.UniqueIDPrefix == "" {
		return invalid("homeassistant.unique_id_prefix", fmt.Errorf("homeassistant.unique_id_prefix is not specified"))
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		return invalid("telegram", fmt.Errorf("telegram is enabled without token and chat_id"))
	}
	if c.MetricsPort < 0 || c.HealthPort < 0 {
		return invalid("metrics_port", fmt.Errorf("ports must be non-negative"))
	}
	if c.Bridge.HeartbeatInterval < 0 {
		return invalid("bridge.heartbeat_interval", fmt.Errorf("bridge.heartbeat_interval must be non-negative"))
	}
	return nil
}

func invalid(field string, err error) error {
	return bridgeerrors.NewConfigError("validate", err, field)
}
