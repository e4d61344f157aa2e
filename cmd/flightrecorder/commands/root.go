// Package commands implements CLI commands for the flightrecorder tool.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	rootCmd = &cobra.Command{
		Use:   "flightrecorder",
		Short: "Lock-free in-process flight recorder inspection tools",
		Long: `flightrecorder provides tools for exercising and inspecting the
flight recorder tracing facility: a demo workload, signal-triggered
dump installation, recorder statistics, and a Prometheus metrics
endpoint.`,
	}
)

// Execute runs the CLI.
func Execute(v string) error {
	version = v

	rootCmd.AddCommand(
		versionCmd(),
		demoCmd(),
		statsCmd(),
		signalsCmd(),
		monitorCmd(),
	)

	return rootCmd.Execute()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flightrecorder version %s\n", version)
		},
	}
}
