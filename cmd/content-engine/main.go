// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the content-engine CLI.
// Subcommands run the bioRxiv ingestion pipeline, ingest single papers by
// hand, serve the admin trigger, and manage the SQLite store.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/observability"
	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// envKeyReplacer maps nested keys to variables: pipeline.max_items becomes
// CONTENT_ENGINE_PIPELINE_MAX_ITEMS.
var envKeyReplacer = strings.NewReplacer(".", "_")

// logger is configured from the logging section before any command runs.
var logger = zerolog.Nop()

// rootCmd is the base command for the content-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "content-engine",
	Short: "Research paper ingestion for the DNA-beauty directory",
	Long: `content-engine fetches recent preprints from bioRxiv, keeps the ones that
match the directory's keywords, summarizes and classifies each with an LLM, and
stores them in SQLite. It can also draft blog posts about new papers.

Use run for a batch, ingest for a single paper, and serve to expose the admin
trigger endpoint.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger = observability.NewLogger(cfg.Logging, os.Stderr)

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./content-engine.yaml or ~/.config/content-engine/content-engine.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret key files")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default data/content.db)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("content-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "content-engine"))
		}
	}

	viper.SetEnvPrefix("CONTENT_ENGINE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig starts from types.DefaultConfig and overlays the config file,
// environment, and bound flags.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	registerDefaults(cfg)
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// registerDefaults makes every key known to viper so environment variables
// such as CONTENT_ENGINE_PIPELINE_MAX_ITEMS are picked up by Unmarshal.
func registerDefaults(cfg types.Config) {
	defaults := map[string]any{
		"feed.base_url":            cfg.Feed.BaseURL,
		"feed.server":              cfg.Feed.Server,
		"feed.page_size":           cfg.Feed.PageSize,
		"feed.fallback_page_size":  cfg.Feed.FallbackPageSize,
		"feed.fallback_keywords":   cfg.Feed.FallbackKeywords,
		"feed.keywords":            cfg.Feed.Keywords,
		"feed.requests_per_second": cfg.Feed.RequestsPerSecond,
		"feed.timeout":             cfg.Feed.Timeout,
		"feed.user_agent":          cfg.Feed.UserAgent,
		"ai.model":                 cfg.AI.Model,
		"ai.api_key":               cfg.AI.APIKey,
		"ai.base_url":              cfg.AI.BaseURL,
		"ai.timeout":               cfg.AI.Timeout,
		"summary.temperature":      cfg.Summary.Temperature,
		"summary.max_tokens":       cfg.Summary.MaxTokens,
		"draft.temperature":        cfg.Draft.Temperature,
		"draft.max_tokens":         cfg.Draft.MaxTokens,
		"store.path":               cfg.Store.Path,
		"pipeline.lookback_days":   cfg.Pipeline.LookbackDays,
		"pipeline.max_items":       cfg.Pipeline.MaxItems,
		"pipeline.generate_drafts": cfg.Pipeline.GenerateDrafts,
		"pipeline.item_delay":      cfg.Pipeline.ItemDelay,
		"server.address":           cfg.Server.Address,
		"server.shutdown_timeout":  cfg.Server.ShutdownTimeout,
		"server.lookback_days":     cfg.Server.LookbackDays,
		"logging.level":            cfg.Logging.Level,
		"logging.format":           cfg.Logging.Format,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
