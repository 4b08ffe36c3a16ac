package config

import (
	"time"

	"otmqtt-bridge/pkg/homeassistant"
)

// MQTTSettings contains only MQTT-specific configuration
// Used for dependency injection to avoid coupling to full Config
type MQTTSettings struct {
	Broker             string
	Port               int
	TLS                bool
	Username           string
	Password           string
	ClientID           string
	RetryDelay         time.Duration
	KeepAlive          time.Duration
	ReconnectMaxTrials int
	Topic              string
	WillTopic          string
	WillMessage        string
	WillRetain         bool
}

// NewMQTTSettings extracts MQTT settings from full config
func NewMQTTSettings(cfg *Config) MQTTSettings {
	retryDelay := time.Duration(cfg.MQTT.RetryDelay) * time.Millisecond
	if retryDelay == 0 {
		retryDelay = 5 * time.Second
	}
	keepAlive := time.Duration(cfg.MQTT.KeepAlive) * time.Second
	if keepAlive == 0 {
		keepAlive = 60 * time.Second
	}
	return MQTTSettings{
		Broker:             cfg.MQTT.Broker,
		Port:               cfg.MQTT.Port,
		TLS:                cfg.MQTT.TLS,
		Username:           cfg.MQTT.Username,
		Password:           cfg.MQTT.Password,
		ClientID:           cfg.MQTT.ClientID,
		RetryDelay:         retryDelay,
		KeepAlive:          keepAlive,
		ReconnectMaxTrials: cfg.MQTT.ReconnectMaxTrials,
		Topic:              cfg.MQTT.Topic,
		WillTopic:          cfg.MQTT.Topic + "/state",
		WillMessage:        cfg.MQTT.LWTMessage,
		WillRetain:         cfg.MQTT.LWTRetain,
	}
}

// BridgeSettings contains frame processing and routing configuration
type BridgeSettings struct {
	Topic             string
	OTGWTopic         string
	DiscoveryPrefix   string
	Informative       bool
	DumpDir           string
	HeartbeatInterval time.Duration
}

// NewBridgeSettings extracts bridge settings from full config
func NewBridgeSettings(cfg *Config) BridgeSettings {
	return BridgeSettings{
		Topic:             cfg.MQTT.Topic,
		OTGWTopic:         cfg.MQTT.OTGWTopic,
		DiscoveryPrefix:   cfg.HomeAssistant.DiscoveryPrefix,
		Informative:       cfg.Bridge.Informative,
		DumpDir:           cfg.Bridge.DumpDir,
		HeartbeatInterval: time.Duration(cfg.Bridge.HeartbeatInterval) * time.Second,
	}
}

// NewDiscoveryConfig extracts the discovery builder configuration from full config
func NewDiscoveryConfig(cfg *Config) homeassistant.Config {
	return homeassistant.Config{
		DiscoveryPrefix:  cfg.HomeAssistant.DiscoveryPrefix,
		NodeID:           cfg.HomeAssistant.NodeID,
		UniqueIDPrefix:   cfg.HomeAssistant.UniqueIDPrefix,
		StateTopicPrefix: cfg.MQTT.Topic,
		Template: homeassistant.Template{
			StateClass:   cfg.HomeAssistant.StateClass,
			Availability: cfg.HomeAssistant.Availability,
			Device:       cfg.HomeAssistant.Device,
			Origin:       cfg.HomeAssistant.Origin,
		},
	}
}

// TelegramSettings contains notifier configuration
type TelegramSettings struct {
	Enabled bool
	Token   string
	ChatID  string
}

// NewTelegramSettings extracts notifier settings from full config
func NewTelegramSettings(cfg *Config) TelegramSettings {
	return TelegramSettings{
		Enabled: cfg.Telegram.Enabled,
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
	}
}
