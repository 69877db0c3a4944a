// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-analytics/internal/pipeline"
	"github.com/pdiddy/research-analytics/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and export runs saved in the SQLite store",
	Long: `Store manages the SQLite database of saved runs at
<store.dir>/index/analytics.db. Runs are saved by analyze and the stage
commands when store.enabled is true or --store is given.`,
}

var storeRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return st.PrintRuns(context.Background(), cmd.OutOrStdout())
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export a saved run to YAML, JSON, or CSV tables",
	Long: `Export writes a saved run under <store.dir>/index/. YAML and JSON hold
the complete results; CSV writes the keyword, trend, and lifecycle tables.
Without a run ID the newest run is exported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	runID, err := runArg(ctx, st, args)
	if err != nil {
		return err
	}
	paths, err := st.Export(ctx, runID, format)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "Re-render the report of a saved run",
	Long: `Report loads a saved run from the store and renders it again in the
configured output formats. No analysis is repeated. Without a run ID the
newest run is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		runID, err := runArg(ctx, st, args)
		if err != nil {
			return err
		}
		res, err := st.LoadRun(ctx, runID)
		if err != nil {
			return err
		}
		paths, err := pipeline.WriteReports(cfg.Output.Dir, res, cfg.Output.Formats)
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
		}
		return err
	},
}

func openStore() (*store.Store, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	defer log.Sync()
	return store.NewStore(cfg.Store)
}

// runArg returns the run ID argument, or the newest run.
func runArg(ctx context.Context, st *store.Store, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return st.LatestRunID(ctx)
}

func init() {
	storeExportCmd.Flags().String("format", store.FormatYAML, "export format: yaml, json, or csv")

	storeCmd.AddCommand(storeRunsCmd, storeExportCmd)
	rootCmd.AddCommand(storeCmd, reportCmd)
}
