// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-aggregator CLI.
// The search command runs the whole pipeline once; plan prints the request
// plans without touching the network.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-aggregator/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the research-aggregator CLI.
var rootCmd = &cobra.Command{
	Use:   "research-aggregator",
	Short: "Aggregate paper metadata from arXiv, Crossref and DOAJ",
	Long: `research-aggregator queries public scholarly APIs (arXiv, Crossref and,
optionally, DOAJ) for a free-text query, normalizes every result into one
record shape, removes duplicates across sources, and writes the surviving
records as CSV, a filterable HTML page, and a JSON run log.

A source that fails is skipped with a warning; the run still writes its
outputs from whatever the other sources returned.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("no_color") {
			color.NoColor = true
		}
		return setupLogging(viper.GetString("log_level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-aggregator.yaml or ~/.config/research-aggregator/research-aggregator.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output (also honors NO_COLOR)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	// .env goes into the environment first so AutomaticEnv sees it.
	if err := secrets.LoadEnv(secrets.DefaultEnvFile); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-aggregator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-aggregator"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_AGGREGATOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogging installs a text handler on stderr as the default logger.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
