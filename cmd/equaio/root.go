package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/equaio/internal/cli"
	"github.com/aretw0/equaio/internal/config"
	"github.com/aretw0/equaio/internal/logging"
	"github.com/aretw0/equaio/pkg/runner"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "equaio",
	Short: "equaio derives equations step by step with rewrite rules",
	Long: `equaio is a term-rewriting engine for stepwise equation derivation.

Derivations are written as YAML scripts (run), typed interactively (repl) or
driven remotely over HTTP (serve) and MCP (mcp). Sessions are stored in the
backend selected by EQUAIO_STORE.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides EQUAIO_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file, redis or sqlite (overrides EQUAIO_STORE)")
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store = store
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	runner.MaxInputSize = cfg.MaxInputSize
	return cfg, logging.New(cfg.Level()), nil
}

// openBackend is setup followed by cli.OpenBackend.
func openBackend(cmd *cobra.Command) (*cli.Backend, *slog.Logger, config.Config, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	b, err := cli.OpenBackend(cfg)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	logger.Debug("backend opened", "store", cfg.Store)
	return b, logger, cfg, nil
}

func formatFlag(cmd *cobra.Command, fallback cli.Format) (cli.Format, error) {
	value, _ := cmd.Flags().GetString("format")
	if value == "" {
		return fallback, nil
	}
	return cli.ParseFormat(value)
}
