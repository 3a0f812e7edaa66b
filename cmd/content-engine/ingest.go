// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [title] [abstract] [journal] [date] [url]",
	Short: "Summarize and store a single paper that is not on bioRxiv",
	Long: `Ingest summarizes one caller-supplied paper and stores it. Fields may be
given as positional arguments in the order title, abstract, journal, date,
url, or with flags. Journal defaults to "Manual" and date to today.

The analysis is printed as JSON. No blog draft is generated.`,
	Args: cobra.MaximumNArgs(5),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("title", "", "paper title")
	ingestCmd.Flags().String("abstract", "", "paper abstract")
	ingestCmd.Flags().String("journal", "", "journal name (default Manual)")
	ingestCmd.Flags().String("date", "", "publication date YYYY-MM-DD (default today)")
	ingestCmd.Flags().String("url", "", "source URL")
	ingestCmd.Flags().String("doi", "", "DOI, if any")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	m := manualPaperFromFlags(cmd, args)
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("a title is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	analysis := eng.pipeline.IngestManual(context.Background(), m)
	if analysis == nil {
		return errors.New("summarization failed; nothing stored")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		return fmt.Errorf("writing analysis: %w", err)
	}
	return nil
}

// manualPaperFromFlags merges positional arguments with flags; flags win.
func manualPaperFromFlags(cmd *cobra.Command, args []string) pipeline.ManualPaper {
	positional := make([]string, 5)
	copy(positional, args)

	pick := func(flag string, i int) string {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			return v
		}
		return positional[i]
	}

	doi, _ := cmd.Flags().GetString("doi")
	return pipeline.ManualPaper{
		Title:    pick("title", 0),
		Abstract: pick("abstract", 1),
		Journal:  pick("journal", 2),
		Date:     pick("date", 3),
		URL:      pick("url", 4),
		DOI:      doi,
	}
}
