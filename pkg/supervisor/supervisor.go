// Package supervisor implements IndexSupervisor (spec C5): process lifecycle,
// startup loads, periodic snapshotting, and the repeated crawl cycle.
package supervisor

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/webdex/webdex/pkg/core"
	"github.com/webdex/webdex/pkg/crawler"
	"github.com/webdex/webdex/pkg/ranker"
	"github.com/webdex/webdex/pkg/repo/docstore"
	"github.com/webdex/webdex/pkg/repo/termindex"
)

const crawlLoopInterval = 10 * time.Minute

// Config carries the environment-driven settings IndexSupervisor needs
// (spec §6).
type Config struct {
	SeedURLsFilePath       string
	CrawlDepth             int
	CrawlThreadsMultiplier int
	IndexSaveIntervalMin   int
	TopKResults            int
	StopCrawler            bool
}

// Supervisor implements spec.md §4.5's startup and background-task
// responsibilities.
type Supervisor struct {
	Store   *docstore.Store
	Terms   *termindex.Index
	Ranker  *ranker.Ranker
	Crawler *crawler.Crawler
	cfg     Config
}

// New builds a Supervisor around an already-constructed IndexContext and
// crawler; the ranker is built from the IndexContext's store, term index and
// stats.
func New(idxCtx core.IndexContext, store *docstore.Store, terms *termindex.Index, c *crawler.Crawler, cfg Config) *Supervisor {
	r := ranker.New(idxCtx.Store, idxCtx.Terms, idxCtx.Stats, cfg.TopKResults)

	return &Supervisor{Store: store, Terms: terms, Ranker: r, Crawler: c, cfg: cfg}
}

// Start performs the ordered startup sequence from spec §4.5: config is
// assumed already loaded by the caller (step 1); listenFn starts the API
// listener goroutine (step 2), a collaborator this package doesn't specify;
// the docstore loads, and then the termindex is replayed from it (step 3);
// the two loads run one after the other, not concurrently. Start waits for
// both (step 4) before spawning the periodic-snapshot loop (step 5) and,
// unless StopCrawler, the crawl loop (step 6).
func (s *Supervisor) Start(ctx context.Context, listenFn func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	if listenFn != nil {
		g.Go(func() error {
			return listenFn(gctx)
		})
	}

	if err := s.loadSnapshot(gctx); err != nil {
		return err
	}

	go s.snapshotLoop(ctx)

	if !s.cfg.StopCrawler {
		go s.crawlLoop(ctx)
	}

	return g.Wait()
}

// loadSnapshot loads the docstore snapshot, then replays it into the term
// index from the already-parsed records (spec §4.5 step 3, SPEC_FULL §3.7).
// The docstore load runs on the same errgroup primitive the crawler uses;
// the term index replay starts only after it has finished.
func (s *Supervisor) loadSnapshot(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Store.LoadFromDisk(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.Terms.LoadFromSnapshot(ctx, s.Store)

	return nil
}

// snapshotLoop calls Store.SnapshotToDisk every IndexSaveIntervalMin minutes
// (spec §4.5 step 5, default 30).
func (s *Supervisor) snapshotLoop(ctx context.Context) {
	interval := s.cfg.IndexSaveIntervalMin
	if interval <= 0 {
		interval = 30
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Store.SnapshotToDisk(ctx); err != nil {
				slog.ErrorContext(ctx, "periodic snapshot failed", "error", err)
			}
		}
	}
}

// crawlLoop repeatedly runs a full multi-worker BFS over the seed file, then
// sleeps 10 minutes (spec §4.5 step 6).
func (s *Supervisor) crawlLoop(ctx context.Context) {
	for {
		seeds, err := s.loadSeeds()
		if err != nil {
			slog.ErrorContext(ctx, "failed to load seed file", "path", s.cfg.SeedURLsFilePath, "error", err)
		} else if err := s.Crawler.RunMultiWorker(ctx, seeds, s.cfg.CrawlThreadsMultiplier, false); err != nil {
			slog.ErrorContext(ctx, "crawl cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(crawlLoopInterval):
		}
	}
}

func (s *Supervisor) loadSeeds() ([]string, error) {
	data, err := os.ReadFile(s.cfg.SeedURLsFilePath)
	if err != nil {
		return nil, err
	}

	var seeds []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			seeds = append(seeds, line)
		}
	}

	return seeds, nil
}

// IndexSingleURL runs an ad-hoc BFS from url with depth CrawlDepth and
// force_fetch=true, in the background (spec §4.5 step 7, spec §6
// "index_single_url(url)").
func (s *Supervisor) IndexSingleURL(ctx context.Context, url string) {
	go s.Crawler.Run(ctx, []string{url}, true)
}

// Search exposes the Ranker's search to the API collaborator (spec §6,
// "search(text) -> [ScoredResult]").
func (s *Supervisor) Search(ctx context.Context, query string) []core.ScoredResult {
	return s.Ranker.Search(ctx, query)
}

// GetPageRecord exposes the docstore lookup to the API collaborator (spec
// §6, "get_page_record(url) -> PageRecord?").
func (s *Supervisor) GetPageRecord(url string) (*core.PageRecord, bool) {
	return s.Store.GetByURL(url)
}
