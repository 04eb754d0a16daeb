package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"boostd/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the enhancement daemon",
		Long:  "Run the discovery loop in the foreground until interrupted. Processing only happens inside the configured nightly window unless debug mode is enabled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: logLevel,
				Debug:    debug,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&debug, "debug", false, "Bypass the processing window and stop after the configured item limit")
	return cmd
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var debug bool

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single discovery sweep and exit",
		Long:  "Perform one sweep of the remote store immediately, ignoring the processing window, then exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.RunOnce(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: logLevel,
				Debug:    debug,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging and the configured item limit")
	return cmd
}
