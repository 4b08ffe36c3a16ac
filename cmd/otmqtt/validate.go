package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"otmqtt-bridge/pkg/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Check a configuration file without connecting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), args[0])
		},
	}
}

func validateConfig(w io.Writer, path string) error {
	fmt.Fprintf(w, "📄 Loading config from: %s\n", path)

	// #nosec G304 - path is given by the operator on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	cfg, err := config.LoadConfigFromString(string(data))
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(w, "✅ Config loaded successfully!\n")
	fmt.Fprintf(w, "   Version: %s\n", cfg.Version)
	fmt.Fprintf(w, "   MQTT Broker: %s:%d\n", cfg.MQTT.Broker, cfg.MQTT.Port)
	fmt.Fprintf(w, "   Gateway topic: %s\n", cfg.MQTT.OTGWTopic)
	fmt.Fprintf(w, "   Bridge topic: %s\n", cfg.MQTT.Topic)
	fmt.Fprintf(w, "   Discovery: %s/<component>/%s\n", cfg.HomeAssistant.DiscoveryPrefix, cfg.HomeAssistant.NodeID)
	fmt.Fprintf(w, "   Informative: %v\n", cfg.Bridge.Informative)
	fmt.Fprintf(w, "   Telegram: %v\n", cfg.Telegram.Enabled)
	if cfg.HealthPort > 0 {
		fmt.Fprintf(w, "   Health port: %d\n", cfg.HealthPort)
	}
	if cfg.MetricsPort > 0 {
		fmt.Fprintf(w, "   Metrics port: %d\n", cfg.MetricsPort)
	}

	fmt.Fprintln(w, "\n✅ Configuration is valid!")
	return nil
}
