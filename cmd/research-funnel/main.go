// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-funnel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-funnel/internal/funnel"
	"github.com/pdiddy/research-funnel/internal/llm"
	"github.com/pdiddy/research-funnel/internal/secrets"
	"github.com/pdiddy/research-funnel/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// logger is built in PersistentPreRunE and synced in PersistentPostRun.
	logger = zap.NewNop()

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string
)

// rootCmd is the base command for the research-funnel CLI.
var rootCmd = &cobra.Command{
	Use:   "research-funnel",
	Short: "Multi-source academic research funnel",
	Long: `research-funnel expands a research question into search terms, fans the
queries out to arXiv, PubMed and OpenAlex, deduplicates and filters the papers
by domain and relevance, ranks them, and writes a validated synthesis report.

A language model provider (anthropic, openai or gemini) improves expansion,
filtering and synthesis. Without one, every stage runs on its rule-based path.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(".secrets/", logger)
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
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-funnel.yaml or ~/.config/research-funnel/research-funnel.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	setDefaults(viper.GetViper(), types.DefaultPipelineConfig())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-funnel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-funnel"))
		}
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the production zap logger; verbose lowers the level to
// debug.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

// loadConfig returns the effective pipeline configuration with secrets
// applied.
func loadConfig() types.PipelineConfig {
	cfg := pipelineConfig(viper.GetViper())
	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

// newFunnel builds the funnel and its language capability. A provider that
// cannot be set up is logged and the funnel runs rule-based.
func newFunnel(ctx context.Context, cfg types.PipelineConfig) (*funnel.Funnel, error) {
	capability, err := llm.New(ctx, cfg.AI)
	if err != nil {
		logger.Warn("language capability unavailable; using rule-based stages", zap.Error(err))
		capability = nil
	}
	return funnel.New(cfg, capability, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
