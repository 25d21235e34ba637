// Package crawler implements the bounded-depth, concurrent BFS crawl
// pipeline (spec C4).
package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/webdex/webdex/pkg/core"
	"github.com/webdex/webdex/pkg/parse"
	"github.com/webdex/webdex/pkg/repo/docstore"
)

const fetchTimeout = 10 * time.Second

// Store is the subset of docstore.Store the crawler writes to and reads
// freshness/hash state from.
type Store interface {
	Insert(url, content, title, headings, highlighted string) error
	GetByURL(url string) (*core.PageRecord, bool)
}

// TermIndex is the subset of termindex.Index the crawler writes to.
type TermIndex interface {
	InsertPage(url, content, title, headings, highlighted string)
}

// Parser is the DocumentParser collaborator (spec §1).
type Parser interface {
	ParseString(body string) (core.ExtractedPage, error)
}

// Fetcher performs the actual HTTP GET. Abstracted so tests can substitute a
// fake HTTP client without a real listener.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config controls one BFS run (spec §4.4).
type Config struct {
	Depth                  int
	FreshnessThresholdDays int
	ExcludePatterns        []string
	FetchLogPath           string
}

// Crawler drives bounded-depth BFS crawls against a shared index.
type Crawler struct {
	store   Store
	terms   TermIndex
	parser  Parser
	fetcher Fetcher
	cfg     Config

	logMu sync.Mutex
}

// New builds a Crawler. A nil parser/fetcher falls back to the production
// HTML parser and http.Client-backed fetcher.
func New(store Store, terms TermIndex, parser Parser, fetcher Fetcher, cfg Config) *Crawler {
	if parser == nil {
		parser = parse.New()
	}

	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}

	if cfg.Depth <= 0 {
		cfg.Depth = 10
	}

	if cfg.FreshnessThresholdDays <= 0 {
		cfg.FreshnessThresholdDays = 3
	}

	return &Crawler{store: store, terms: terms, parser: parser, fetcher: fetcher, cfg: cfg}
}

// queueEntry is one FIFO work-queue item (spec §4.4 step 1).
type queueEntry struct {
	urls  []string
	depth int
}

// Run performs one bounded-depth BFS from seeds with force_fetch controlling
// whether the freshness gate is honored (spec §4.4 steps 1-6).
func (c *Crawler) Run(ctx context.Context, seeds []string, forceFetch bool) {
	queue := []queueEntry{{urls: seeds, depth: c.cfg.Depth}}
	visited := make(map[string]struct{})

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		if entry.depth == 0 {
			continue
		}

		discovered := c.processLevel(ctx, entry.urls, visited, forceFetch)
		if len(discovered) == 0 {
			continue
		}

		for _, batch := range partitionRoundRobin(discovered) {
			queue = append(queue, queueEntry{urls: batch, depth: entry.depth - 1})
		}
	}
}

// processLevel fans out one fetch-and-process task per URL in the level,
// via an errgroup barrier (spec §4.4 steps 3-4; spec §9's two-tier model).
func (c *Crawler) processLevel(ctx context.Context, urls []string, visited map[string]struct{}, forceFetch bool) [][]string {
	var toRun []string

	for _, u := range urls {
		if _, seen := visited[u]; seen {
			continue
		}

		visited[u] = struct{}{}
		toRun = append(toRun, u)
	}

	results := make([][]string, len(toRun))

	g, gctx := errgroup.WithContext(ctx)

	for i, u := range toRun {
		g.Go(func() error {
			results[i] = c.processURL(gctx, u, forceFetch)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// processURL implements the per-URL pipeline (spec §4.4 "Per-URL
// processing"). It never returns an error to its caller: all failures are
// logged and the BFS continues (spec §7).
func (c *Crawler) processURL(ctx context.Context, url string, forceFetch bool) []string {
	if !strings.Contains(url, "http://") && !strings.Contains(url, "https://") {
		return nil
	}

	if !forceFetch && c.isFresh(url) {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	body, err := c.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		slog.WarnContext(ctx, "fetch failed", "url", url, "error", err)
		return nil
	}

	page, err := c.parser.ParseString(body)
	if err != nil {
		slog.WarnContext(ctx, "parse failed", "url", url, "error", err)
		return nil
	}

	c.indexPage(ctx, url, page)
	c.appendFetchLog(url)

	return c.filterExcluded(page.Links)
}

// isFresh implements the freshness gate (spec §4.4 step 2): true means the
// page was indexed recently enough to skip re-fetching this run.
func (c *Crawler) isFresh(url string) bool {
	rec, ok := c.store.GetByURL(url)
	if !ok {
		return false
	}

	days := time.Since(rec.Timestamp).Hours() / 24

	return days < float64(c.cfg.FreshnessThresholdDays)
}

// indexPage applies change detection (spec §4.4 step 7): if the new content
// hashes the same as the stored record, both writes are skipped (the
// "preferred" hash-skip variant, spec §9).
func (c *Crawler) indexPage(ctx context.Context, url string, page core.ExtractedPage) {
	if rec, ok := c.store.GetByURL(url); ok && docstore.Digest(page.Content) == rec.Hash {
		return
	}

	if err := c.store.Insert(url, page.Content, page.Title, page.Headings, page.Highlighted); err != nil {
		slog.WarnContext(ctx, "store insert failed", "url", url, "error", err)
		return
	}

	c.terms.InsertPage(url, page.Content, page.Title, page.Headings, page.Highlighted)
}

// appendFetchLog records a fetch, best-effort (spec §4.4 step 9, spec §5).
func (c *Crawler) appendFetchLog(url string) {
	if c.cfg.FetchLogPath == "" {
		return
	}

	c.logMu.Lock()
	defer c.logMu.Unlock()

	f, err := openAppend(c.cfg.FetchLogPath)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.WriteString(url + "\n")
}

// filterExcluded drops discovered URLs matching CRAWL_EXCLUDE_PATTERNS
// (supplemental, off by default; grounded in dankinder/walker's
// ExcludeLinkPatterns).
func (c *Crawler) filterExcluded(urls []string) []string {
	if len(c.cfg.ExcludePatterns) == 0 {
		return urls
	}

	out := make([]string, 0, len(urls))

	for _, u := range urls {
		if matchesAny(c.cfg.ExcludePatterns, u) {
			continue
		}

		out = append(out, u)
	}

	return out
}

func matchesAny(patterns []string, url string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, url); err == nil && ok {
			return true
		}
	}

	return false
}

// partitionRoundRobin distributes discovered into contributing-task-sized
// sub-lists (spec §4.4 step 5). Since each task contributes its own slice,
// round-robin here means interleaving those per-task slices position by
// position so no single task's discoveries dominate one partition.
func partitionRoundRobin(discovered [][]string) [][]string {
	n := len(discovered)
	if n == 0 {
		return nil
	}

	out := make([][]string, n)

	maxLen := 0
	for _, d := range discovered {
		if len(d) > maxLen {
			maxLen = len(d)
		}
	}

	next := 0

	for pos := 0; pos < maxLen; pos++ {
		for _, d := range discovered {
			if pos < len(d) {
				out[next%n] = append(out[next%n], d[pos])
				next++
			}
		}
	}

	nonEmpty := out[:0]

	for _, o := range out {
		if len(o) > 0 {
			nonEmpty = append(nonEmpty, o)
		}
	}

	return nonEmpty
}

// SplitSeeds partitions seeds round-robin into
// runtime.GOMAXPROCS(0) * multiplier chunks (min 1), for the multi-worker
// driver (spec §4.4 "Multi-worker driver").
func SplitSeeds(seeds []string, multiplier int) [][]string {
	if multiplier <= 0 {
		multiplier = 2
	}

	n := runtime.GOMAXPROCS(0) * multiplier
	if n < 1 {
		n = 1
	}

	if n > len(seeds) {
		n = len(seeds)
	}

	if n == 0 {
		return nil
	}

	chunks := make([][]string, n)
	for i, seed := range seeds {
		chunks[i%n] = append(chunks[i%n], seed)
	}

	return chunks
}

// RunMultiWorker runs one BFS per seed chunk concurrently, each with its own
// visited set and no cross-worker deduplication (spec §4.4).
func (c *Crawler) RunMultiWorker(ctx context.Context, seeds []string, multiplier int, forceFetch bool) error {
	chunks := SplitSeeds(seeds, multiplier)

	g, gctx := errgroup.WithContext(ctx)

	for _, chunk := range chunks {
		g.Go(func() error {
			c.Run(gctx, chunk, forceFetch)
			return nil
		})
	}

	return g.Wait()
}

// HTTPFetcher is the default Fetcher, matching original_source/src/crawler.rs's
// fetch_data headers exactly.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds an HTTPFetcher with no client-level timeout — the
// per-fetch timeout is enforced via the request context (spec §5, "per-fetch
// 10-second timeout is the only timeout").
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{}}
}

// Fetch performs the GET with the spec-mandated headers.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("accept", "text/html")
	req.Header.Set("user-agent", "crawler")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return "", fmt.Errorf("fetch %s: non-text response %q", url, ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body for %s: %w", url, err)
	}

	return string(body), nil
}

// openAppend opens path for append, creating it (and its parent directory)
// if necessary (spec §6, "Fetch log ... append-only, best-effort").
func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
}
