package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"boostd/internal/deps"
	"boostd/internal/processed"
	"boostd/internal/timewindow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show processing window, dependency, and store status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			window, err := timewindow.Parse(cfg.Window.Start, cfg.Window.End, false)
			if err != nil {
				return fmt.Errorf("parse processing window: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Remote store:  %s\n", cfg.Immich.URL)
			fmt.Fprintf(out, "Window:        %s-%s (open now: %s)\n",
				cfg.Window.Start, cfg.Window.End, yesNo(window.IsOpen(time.Now())))

			store, err := processed.Open(cfg)
			if err != nil {
				return fmt.Errorf("open processed store: %w", err)
			}
			defer store.Close()
			total, err := store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("count processed assets: %w", err)
			}
			fmt.Fprintf(out, "Processed:     %d assets (%s)\n", total, store.Path())

			headers := []string{"DEPENDENCY", "COMMAND", "AVAILABLE", "DETAIL"}
			rows := make([][]string, 0, 3)
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				rows = append(rows, []string{status.Name, status.Command, yesNo(status.Available), status.Detail})
			}
			fmt.Fprintln(out, renderTable(headers, rows))
			return nil
		},
	}
}
