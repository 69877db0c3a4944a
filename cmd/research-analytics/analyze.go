// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-analytics/internal/cache"
	"github.com/pdiddy/research-analytics/internal/embedding"
	"github.com/pdiddy/research-analytics/internal/pipeline"
	"github.com/pdiddy/research-analytics/internal/report"
	"github.com/pdiddy/research-analytics/internal/secrets"
	"github.com/pdiddy/research-analytics/internal/store"
	"github.com/pdiddy/research-analytics/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <records.csv|records.json>",
	Short: "Run the full analysis and write tables, figures, and reports",
	Long: `Analyze loads a publication record set and runs every stage: keyword
extraction, semantic clustering, temporal trends and lifecycle, figures, and
the Markdown/HTML report. Stages that cannot run (for example, no embedding
provider) are marked as omitted in the report; the run still succeeds.

Interrupting the run (Ctrl-C) keeps the partial results and still writes
the report.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], nil)
	},
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords <records.csv|records.json>",
	Short: "Extract keywords only",
	Long: `Keywords tabulates source API keywords and runs the text keyword
methods (tfidf, rake, yake, or all) over titles and abstracts. Each method
is written to its own keywords-<method>.csv table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], []string{report.SectionSemantic, report.SectionTemporal})
	},
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <records.csv|records.json>",
	Short: "Embed and cluster publications only",
	Long: `Cluster embeds every title and abstract with the configured provider,
clusters the vectors (kmeans or dbscan), projects them for display, and
writes clusters.csv and clusters.html.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], []string{report.SectionKeywords, report.SectionTemporal})
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends <records.csv|records.json>",
	Short: "Follow keywords over time only",
	Long: `Trends counts tracked keywords per publication year, derives growth
rates and lifecycle stages, and compares configured periods. Tracked terms
default to the top source API keywords; use --terms to choose them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args[0], []string{report.SectionSemantic})
	},
}

func runPipeline(cmd *cobra.Command, input string, skip []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := pipeline.Options{Skip: skip}
	if f := cmd.Flags().Lookup("method"); f != nil {
		opts.Method = types.Method(f.Value.String())
	}
	if f := cmd.Flags().Lookup("cluster-method"); f != nil {
		opts.ClusterMethod = types.ClusterMethod(f.Value.String())
	}
	if cmd.Flags().Lookup("terms") != nil {
		opts.Terms, _ = cmd.Flags().GetStringSlice("terms")
	}

	var st *store.Store
	if cfg.Store.Enabled || cfg.Embedding.Cache == types.CacheSQLite {
		st, err = store.NewStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	embedder, closeCache := newEmbedder(cfg, st, log)
	defer closeCache()

	runStore := st
	if !cfg.Store.Enabled {
		runStore = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := pipeline.New(cfg, embedder, runStore, log, cmd.OutOrStdout())
	_, runErr := p.Run(ctx, input, opts)
	if err := writeMetrics(cmd); err != nil {
		log.Warn("failed to write metrics", zap.Error(err))
	}
	if errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "interrupted: partial results written")
	}
	return runErr
}

// newEmbedder builds the configured embedder and its cache backend. When
// the provider cannot be configured the embedder is nil and the semantic
// section is reported unavailable.
func newEmbedder(cfg types.PipelineConfig, st *store.Store, log *zap.Logger) (embedding.Embedder, func()) {
	closeFn := func() {}

	var kv embedding.KV
	switch cfg.Embedding.Cache {
	case types.CacheMemory:
		kv = embedding.NewMemoryCache()
	case types.CacheSQLite:
		if st != nil {
			kv = st
		}
	case types.CacheRedis:
		rs, err := cache.NewRedisStore(cache.Config{
			Addrs:    []string{cfg.Embedding.RedisAddr},
			Password: loadedSecrets[secrets.RedisPassword],
		})
		if err != nil {
			log.Warn("embedding cache disabled", zap.String("backend", "redis"), zap.Error(err))
			break
		}
		kv = rs
		closeFn = rs.Close
	}

	e, err := embedding.New(cfg.Embedding, kv, log)
	if err != nil {
		log.Warn("no embedding provider", zap.String("provider", string(cfg.Embedding.Provider)), zap.Error(err))
		return nil, closeFn
	}
	return e, closeFn
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, keywordsCmd} {
		c.Flags().String("method", string(types.MethodAll), "text keyword method: tfidf, rake, yake, or all")
	}
	for _, c := range []*cobra.Command{analyzeCmd, clusterCmd} {
		c.Flags().String("cluster-method", "", "clustering method: kmeans or dbscan (default from config)")
	}
	for _, c := range []*cobra.Command{analyzeCmd, trendsCmd} {
		c.Flags().StringSlice("terms", nil, "keywords to follow over time (default: top API keywords)")
	}

	rootCmd.AddCommand(analyzeCmd, keywordsCmd, clusterCmd, trendsCmd)
}
