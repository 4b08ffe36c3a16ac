package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"otmqtt-bridge/pkg/builder"
	"otmqtt-bridge/pkg/config"
	"otmqtt-bridge/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type rootOptions struct {
	configPath  string
	informative bool
	verbosity   int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "otmqtt",
		Short: "OpenTherm to MQTT bridge",
		Long: `otmqtt - Bridge OpenTherm frames to Home Assistant over MQTT.

Subscribes to the master and slave frames relayed by an OpenTherm gateway
monitor, decodes every register and publishes changed values together with
Home Assistant discovery documents.

Without a subcommand the bridge runs until interrupted.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "C", "", "Configuration file (written with defaults if missing)")
	cmd.Flags().BoolVarP(&opts.informative, "informative", "I", false, "Publish description, data object and R/W topics per register")
	cmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v warn, -vv info, -vvv debug)")

	cmd.AddCommand(newDecodeCmd(&opts.verbosity))
	cmd.AddCommand(newRegistersCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

func runBridge(ctx context.Context, opts *rootOptions) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if opts.verbosity > 0 {
		cfg.Logging.Level = logger.LevelFromVerbosity(opts.verbosity)
	}
	logger.Configure(&cfg.Logging)
	logger.LogStartup("Logging initialized with level: %s", cfg.Logging.Level)

	if opts.informative {
		cfg.Bridge.Informative = true
	}

	app, err := builder.NewApplicationBuilder(cfg).Build()
	if err != nil {
		return fmt.Errorf("error building application: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("error starting bridge: %w", err)
	}

	<-ctx.Done()
	logger.LogInfo("📢 Stop signal received...")
	app.Stop()
	return nil
}
