package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/webdex/webdex/pkg/api"
	"github.com/webdex/webdex/pkg/core"
	"github.com/webdex/webdex/pkg/crawler"
	"github.com/webdex/webdex/pkg/homepage"
	"github.com/webdex/webdex/pkg/repo/docstore"
	"github.com/webdex/webdex/pkg/repo/termindex"
	"github.com/webdex/webdex/pkg/supervisor"
)

// RunCommand initializes the logger, loads configuration, wires the crawl/
// index/rank collaborators into an IndexSupervisor, and runs it to
// completion — the server startup sequence from spec §4.5.
func RunCommand(ctx context.Context, flags *cmdFlags) error {
	if err := initLogger(flags); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	backup, err := newBackup(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to set up snapshot backup: %w", err)
	}

	stats := core.NewIndexStats()
	store := docstore.New(cfg.Storage.URLIndexFilePath, stats, backup, cfg.Storage.SnapshotS3Bucket)
	terms := termindex.New()
	idxCtx := core.IndexContext{Store: store, Terms: terms, Stats: stats}

	c := crawler.New(store, terms, nil, nil, crawler.Config{
		Depth:                  cfg.Crawl.Depth,
		FreshnessThresholdDays: cfg.Crawl.DateDiffForUpdate,
		ExcludePatterns:        splitPatterns(cfg.Crawl.ExcludePatterns),
		FetchLogPath:           cfg.Crawl.FetchLogPath,
	})

	sup := supervisor.New(idxCtx, store, terms, c, supervisor.Config{
		SeedURLsFilePath:       cfg.Crawl.SeedURLsFilePath,
		CrawlDepth:             cfg.Crawl.Depth,
		CrawlThreadsMultiplier: cfg.Crawl.ThreadsMultiplier,
		IndexSaveIntervalMin:   cfg.Crawl.IndexSaveIntervalMin,
		TopKResults:            cfg.Crawl.TopKResults,
		StopCrawler:            cfg.Crawl.StopCrawler,
	})

	homeRenderer, err := homepage.New()
	if err != nil {
		return fmt.Errorf("failed to create homepage renderer: %w", err)
	}

	apiSvc, err := api.New(cfg.API, sup, homeRenderer)
	if err != nil {
		return fmt.Errorf("failed to create API service: %w", err)
	}

	if err := sup.Start(ctx, apiSvc.Run); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

// newBackup builds the optional S3 snapshot uploader when SNAPSHOT_S3_BUCKET
// is configured (SPEC_FULL §2); it's nil when unset.
func newBackup(ctx context.Context, cfg StorageConfig) (docstore.S3Uploader, error) {
	if cfg.SnapshotS3Bucket == "" {
		return nil, nil //nolint:nilnil // absent backup is a valid, documented state
	}

	return docstore.NewS3Uploader(ctx)
}

func splitPatterns(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	patterns := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	return patterns
}
