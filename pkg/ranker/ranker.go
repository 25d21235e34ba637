// Package ranker implements the field-weighted BM25 scoring engine (spec C3).
package ranker

import (
	"container/heap"
	"context"
	"math"
	"strings"

	"github.com/webdex/webdex/pkg/core"
)

const (
	bm25K = 1.2
	bm25B = 1.0

	// defaultTopK matches spec §4.3's documented default for TOP_K_RESULTS.
	defaultTopK = 10
)

// NoPagesFoundMessage is the well-formed empty-result message the API
// collaborator surfaces to a caller when a search has no hits (spec §7).
const NoPagesFoundMessage = "No Pages Found!"

var allFields = []core.Field{core.FieldURL, core.FieldTitle, core.FieldHeadings, core.FieldHighlighted, core.FieldContent}

// Store is the subset of docstore.Store the ranker reads.
type Store interface {
	GetByURL(url string) (*core.PageRecord, bool)
}

// TermIndex is the subset of termindex.Index the ranker reads.
type TermIndex interface {
	Get(term string) []string
}

// Ranker scores and ranks candidate URLs for a free-text query.
type Ranker struct {
	store TermIndex
	docs  Store
	stats *core.IndexStats
	topK  int
}

// New builds a Ranker reading from docs and terms, normalizing against
// stats. topK <= 0 falls back to the spec default of 10.
func New(docs Store, terms TermIndex, stats *core.IndexStats, topK int) *Ranker {
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Ranker{docs: docs, store: terms, stats: stats, topK: topK}
}

// accumulator tracks a candidate URL's running score across query terms
// (spec §4.3 step 3).
type accumulator struct {
	sumScore float64
	hitCount int
}

// Search scores every candidate URL posted by any query term and returns at
// most topK results sorted descending by final score (spec §4.3). An empty
// query yields an empty result, never an error.
func (r *Ranker) Search(_ context.Context, query string) []core.ScoredResult {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	if r.stats == nil || r.stats.TotalCount == 0 {
		return nil
	}

	acc := make(map[string]*accumulator)

	for _, term := range terms {
		urls := r.store.Get(term)
		if len(urls) == 0 {
			continue
		}

		nq := float64(len(urls))

		for _, url := range urls {
			rec, ok := r.docs.GetByURL(url)
			if !ok {
				// Posted but missing: concurrent insert race, skip silently (spec §4.3).
				continue
			}

			a, ok := acc[url]
			if !ok {
				a = &accumulator{}
				acc[url] = a
			}

			a.sumScore += r.scoreTerm(term, rec, nq)
			a.hitCount++
		}
	}

	return r.topResults(acc)
}

// scoreTerm computes the five-field BM25 score for term against rec (spec
// §4.3 "Algorithm").
func (r *Ranker) scoreTerm(term string, rec *core.PageRecord, nq float64) float64 {
	n := float64(r.stats.TotalCount)
	idf := math.Log(((n-nq+0.5)/(nq+0.5))+1) //nolint:gocritic // exact spec formula, not simplifiable without losing legibility

	if idf < 0 {
		idf = 0
	}

	var total float64

	for _, f := range allFields {
		text := rec.Field(f)

		d := float64(len(text))
		avdl := float64(r.stats.AverageLength(f))

		fqd := float64(countOccurrences(text, term))
		if fqd == 0 {
			continue
		}

		tfSatur := tfSaturation(fqd, d, avdl)
		if tfSatur < 0 {
			tfSatur = 0
		}

		total += core.FieldWeights[f] * idf * tfSatur
	}

	return total
}

// tfSaturation computes BM25's saturated term-frequency component (spec
// §4.3). avdl of zero (no indexed pages, or an empty field average) is
// treated as producing no length normalization penalty.
func tfSaturation(fqd, d, avdl float64) float64 {
	norm := 1 - bm25B
	if avdl > 0 {
		norm = 1 - bm25B + bm25B*(d/avdl)
	}

	denom := fqd + bm25K*norm
	if denom == 0 {
		return 0
	}

	return (fqd * (bm25K + 1)) / denom
}

// countOccurrences counts exact-match occurrences of term among the
// whitespace tokens of text (spec §4.3: "count of exact-match occurrences of
// q in whitespace tokens of F").
func countOccurrences(text, term string) int {
	count := 0

	for _, token := range strings.Fields(text) {
		if token == term {
			count++
		}
	}

	return count
}

// heapItem is one entry in the bounded min-heap used for top-k selection.
type heapItem struct {
	url   string
	title string
	score float64
}

// scoreHeap is a min-heap on score, giving O(log top_k) bounded top-k
// selection (spec §4.3: "maintain a bounded min-heap of size top_k").
// container/heap is the idiomatic stdlib choice here — no third-party heap
// implementation appears anywhere in the example pack.
type scoreHeap []heapItem

func (h scoreHeap) Len() int            { return len(h) }
func (h scoreHeap) Less(i, j int) bool  { return h[i].score < h[j].score }
func (h scoreHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) } //nolint:forcetypeassert // container/heap.Interface contract
func (h *scoreHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// topResults reduces the per-URL accumulators to the top_k final scores,
// sorted descending (spec §4.3 step 4 + "Top-k selection").
func (r *Ranker) topResults(acc map[string]*accumulator) []core.ScoredResult {
	h := &scoreHeap{}
	heap.Init(h)

	for url, a := range acc {
		rec, ok := r.docs.GetByURL(url)
		if !ok {
			continue
		}

		finalScore := a.sumScore * float64(a.hitCount)

		heap.Push(h, heapItem{url: url, title: rec.Title, score: finalScore})
		if h.Len() > r.topK {
			heap.Pop(h)
		}
	}

	out := make([]core.ScoredResult, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		item := heap.Pop(h).(heapItem) //nolint:forcetypeassert // container/heap.Interface contract
		out[i] = core.ScoredResult{URL: item.url, Title: item.title, Score: item.score}
	}

	return out
}
