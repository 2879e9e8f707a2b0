package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/config"
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Manage anonymous usage reporting",
	}

	set := func(value, message string) *cobra.Command {
		return &cobra.Command{
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd)
				if err != nil {
					return err
				}
				if err := a.store.Set(config.FieldTelemetry, value); err != nil {
					return clierr.Configuration("saving telemetry preference: %w", err)
				}
				fmt.Fprintln(a.out, message)
				return nil
			},
		}
	}

	enable := set("", "Telemetry enabled.")
	enable.Use = "enable"
	enable.Short = "Allow usage reporting"

	disable := set(config.TelemetryDisabled, "Telemetry disabled.")
	disable.Use = "disable"
	disable.Short = "Opt out of usage reporting"

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether usage reporting is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			rec, err := a.record()
			if err != nil {
				return err
			}
			if rec.TelemetryOptOut() {
				fmt.Fprintln(a.out, "Telemetry is disabled.")
			} else {
				fmt.Fprintln(a.out, "Telemetry is enabled.")
			}
			return nil
		},
	}

	cmd.AddCommand(enable, disable, status)
	return cmd
}
