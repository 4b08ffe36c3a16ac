package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"otmqtt-bridge/pkg/bridge"
	"otmqtt-bridge/pkg/logger"
	"otmqtt-bridge/pkg/opentherm"
)

func newDecodeCmd(verbosity *int) *cobra.Command {
	var roleName string

	cmd := &cobra.Command{
		Use:   "decode <hex>...",
		Short: "Decode OpenTherm frames given as hex",
		Long: `Decode one or more 32-bit OpenTherm frames offline.

For every frame the message type, register, value, parity and the decoded
payload are printed. Unknown registers decode as raw values.`,
		Example: "  otmqtt decode C0190000 40193200 --role responder",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := opentherm.ParseRole(roleName)
			if err != nil {
				return err
			}
			logger.Configure(&logger.LoggingConfig{Level: logger.LevelFromVerbosity(*verbosity)})
			return decodeFrames(cmd.OutOrStdout(), opentherm.NewRegistry(nil), role, args)
		},
	}

	cmd.Flags().StringVarP(&roleName, "role", "r", "responder", "Frame origin: controller or responder")
	return cmd
}

func decodeFrames(w io.Writer, registry *opentherm.Registry, role opentherm.Role, args []string) error {
	for _, arg := range args {
		raw, err := bridge.ParseFrame(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, describeFrame(registry, role, raw))
	}
	return nil
}

func describeFrame(registry *opentherm.Registry, role opentherm.Role, raw uint32) string {
	frame := opentherm.Decode(raw)
	parity := "ok"
	if !frame.CheckParity() {
		parity = "error"
	}
	head := fmt.Sprintf("0x%08X %s %s parity %s", raw, role.Suffix(), frame, parity)

	if _, err := frame.Classify(); err != nil {
		return head + "  (no payload)"
	}

	spec := registry.Lookup(frame.RegisterID())
	payload, err := opentherm.DecodeValue(spec, frame.Value())
	line := fmt.Sprintf("%s  %s = %s", head, spec.DataObjectText(), payload.Render())
	if err != nil {
		line += fmt.Sprintf("  (%v)", err)
	}
	return line
}
