package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"otmqtt-bridge/pkg/opentherm"
)

func newRegistersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registers",
		Short: "Print the OpenTherm register table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(opentherm.NewRegistry(nil).All(), "", "  ")
			if err != nil {
				return fmt.Errorf("error serializing register table: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
