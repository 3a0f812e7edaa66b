// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [days]",
	Short: "Fetch, summarize, and store recent bioRxiv papers",
	Long: `Run fetches papers from bioRxiv for the last N days (default 30), keeps the
ones matching the keyword list, summarizes each with the LLM, and stores them.
At most --max-items papers are processed, one at a time. With --blogs a draft
post is generated for every summarized paper.

Papers already stored (same slug or DOI) are reported as duplicates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Int("days", 0, "lookback window in days (default 30)")
	runCmd.Flags().Int("max-items", 0, "maximum papers processed per run (default 10)")
	runCmd.Flags().Bool("blogs", false, "generate a blog draft for each summarized paper")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("days must be a positive integer, got %q", args[0])
		}
		days = n
	}
	maxItems, _ := cmd.Flags().GetInt("max-items")
	blogs, _ := cmd.Flags().GetBool("blogs")

	eng, err := newEngine(cfg, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := eng.pipeline.Run(ctx, pipeline.RunOptions{
		LookbackDays:   days,
		MaxItems:       maxItems,
		GenerateDrafts: blogs,
		Trigger:        pipeline.TriggerCLI,
	})

	fmt.Fprintf(os.Stdout, "Done. Processed %d papers, generated %d blog drafts.\n", summary.Processed, summary.BlogDrafts)
	if summary.Duplicates > 0 || summary.Skipped > 0 || summary.Failed > 0 {
		fmt.Fprintf(os.Stdout, "  duplicates: %d, skipped: %d, failed: %d\n", summary.Duplicates, summary.Skipped, summary.Failed)
	}
	return nil
}
