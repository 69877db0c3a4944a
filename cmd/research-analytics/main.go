// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-analytics CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/config"
	"github.com/pdiddy/research-analytics/internal/logging"
	"github.com/pdiddy/research-analytics/internal/metrics"
	"github.com/pdiddy/research-analytics/internal/secrets"
	"github.com/pdiddy/research-analytics/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-analytics CLI.
var rootCmd = &cobra.Command{
	Use:   "research-analytics",
	Short: "Keyword, semantic, and temporal analysis of publication corpora",
	Long: `research-analytics analyzes a publication record set (CSV or JSON)
produced by acquisition tools. It extracts keywords (source API keywords,
TF-IDF, RAKE, YAKE), clusters publication embeddings, follows keywords over
time, and writes tables, figures, and a Markdown/HTML report.

Each stage is also a subcommand: keywords, cluster, and trends. Runs can be
persisted to a SQLite store and exported or re-rendered later.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-analytics.yaml or ~/.config/research-analytics/config.yaml)")
	pf.String("output-dir", "", "directory for tables, figures, and reports (overrides output.dir)")
	pf.Bool("store", false, "persist the run to the SQLite store (overrides store.enabled)")
	pf.String("store-dir", "", "base directory of the SQLite store (overrides store.dir)")
	pf.String("log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile after the command")

	bindFlag("output.dir", "output-dir")
	bindFlag("store.enabled", "store")
	bindFlag("store.dir", "store-dir")
	bindFlag("logging.level", "log-level")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	_ = godotenv.Load(".env")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-analytics")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-analytics"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_ANALYTICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the logger and the validated configuration. Secrets
// fill credentials the configuration leaves empty.
func loadConfig() (types.PipelineConfig, *zap.Logger, error) {
	v := viper.GetViper()
	config.SetDefaults(v)

	log, err := logging.NewLogger(v.GetString("logging.env"), v.GetString("logging.level"))
	if err != nil {
		return types.PipelineConfig{}, nil, err
	}
	cfg, err := config.Load(v, log)
	if err != nil {
		return types.PipelineConfig{}, log, err
	}
	secrets.Apply(&cfg, loadedSecrets)
	return cfg, log, nil
}

// writeMetrics writes the metrics textfile when --metrics-file is set.
func writeMetrics(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("metrics-file")
	if path == "" {
		return nil
	}
	return metrics.WriteTextfile(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
