package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"boostd/internal/processed"
)

func newProcessedCommand(ctx *commandContext) *cobra.Command {
	processedCmd := &cobra.Command{
		Use:   "processed",
		Short: "Inspect and maintain the processed-asset set",
	}

	processedCmd.AddCommand(newProcessedListCommand(ctx))
	processedCmd.AddCommand(newProcessedCountCommand(ctx))
	processedCmd.AddCommand(newProcessedRemoveCommand(ctx))
	processedCmd.AddCommand(newProcessedClearCommand(ctx))

	return processedCmd
}

func withStore(ctx *commandContext, fn func(cmd *cobra.Command, args []string, store *processed.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		store, err := processed.Open(cfg)
		if err != nil {
			return fmt.Errorf("open processed store: %w", err)
		}
		defer store.Close()
		return fn(cmd, args, store)
	}
}

func newProcessedListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processed assets, most recent first",
		RunE: withStore(ctx, func(cmd *cobra.Command, _ []string, store *processed.Store) error {
			records, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list processed assets: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No processed assets recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{record.AssetID, formatProcessedAt(record.ProcessedAt.Format(time.RFC3339))})
			}
			fmt.Fprintln(out, renderTable([]string{"ASSET ID", "PROCESSED"}, rows))
			return nil
		}),
	}
}

func newProcessedCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of processed assets",
		RunE: withStore(ctx, func(cmd *cobra.Command, _ []string, store *processed.Store) error {
			total, err := store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("count processed assets: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		}),
	}
}

func newProcessedRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <asset-id>",
		Short: "Forget a processed asset so it is picked up again",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(ctx, func(cmd *cobra.Command, args []string, store *processed.Store) error {
			removed, err := store.Remove(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("remove processed asset: %w", err)
			}
			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintln(out, "Asset was not recorded as processed")
				return nil
			}
			fmt.Fprintln(out, "Asset forgotten; the next sweep may boost it again")
			return nil
		}),
	}
}

func newProcessedClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all processed assets",
		RunE: withStore(ctx, func(cmd *cobra.Command, _ []string, store *processed.Store) error {
			if !force {
				return fmt.Errorf("clearing re-enables boosting for every known asset; pass --force to confirm")
			}
			cleared, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear processed assets: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d processed assets\n", cleared)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm clearing the processed set")
	return cmd
}

func formatProcessedAt(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%s (%s)", parsed.Local().Format("2006-01-02 15:04"), humanize.Time(parsed))
}
