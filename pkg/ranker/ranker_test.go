package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdex/webdex/pkg/core"
	"github.com/webdex/webdex/pkg/repo/docstore"
	"github.com/webdex/webdex/pkg/repo/termindex"
)

// buildIndex wires a real docstore + termindex pair (no fakes needed: both
// are small, well-tested, in-memory types) so the ranker tests exercise the
// exact production read path.
func buildIndex(t *testing.T) (*docstore.Store, *termindex.Index, *core.IndexStats) {
	t.Helper()

	stats := core.NewIndexStats()
	store := docstore.New(t.TempDir()+"/index.txt", stats, nil, "")
	terms := termindex.New()

	return store, terms, stats
}

func insert(t *testing.T, store *docstore.Store, terms *termindex.Index, url, content, title, headings, highlighted string) {
	t.Helper()

	require.NoError(t, store.Insert(url, content, title, headings, highlighted))
	terms.InsertPage(url, content, title, headings, highlighted)
}

func TestRanker_EmptyIndexSearch(t *testing.T) {
	store, terms, stats := buildIndex(t)
	r := New(store, terms, stats, 10)

	results := r.Search(t.Context(), "anything")
	assert.Empty(t, results)
}

func TestRanker_EmptyQuery(t *testing.T) {
	store, terms, stats := buildIndex(t)
	insert(t, store, terms, "https://a", "", "rust", "", "")

	r := New(store, terms, stats, 10)

	assert.Empty(t, r.Search(t.Context(), ""))
	assert.Empty(t, r.Search(t.Context(), "   "))
}

func TestRanker_SingleTermSingleDoc(t *testing.T) {
	store, terms, stats := buildIndex(t)
	insert(t, store, terms, "http://a/", "", "rust", "", "")

	r := New(store, terms, stats, 10)

	results := r.Search(t.Context(), "rust")
	require.Len(t, results, 1)
	assert.Equal(t, "http://a/", results[0].URL)
	assert.Positive(t, results[0].Score)
}

func TestRanker_MultiTermBoost(t *testing.T) {
	store, terms, stats := buildIndex(t)
	insert(t, store, terms, "http://u1/", "alpha beta", "", "", "")
	insert(t, store, terms, "http://u2/", "alpha", "", "", "")

	r := New(store, terms, stats, 10)

	results := r.Search(t.Context(), "alpha beta")
	require.Len(t, results, 2)
	assert.Equal(t, "http://u1/", results[0].URL)
	assert.Equal(t, "http://u2/", results[1].URL)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRanker_FieldWeighting(t *testing.T) {
	store, terms, stats := buildIndex(t)
	insert(t, store, terms, "http://u1/", "shared body text", "foo", "", "")
	insert(t, store, terms, "http://u2/", "foo shared body text", "", "", "")

	r := New(store, terms, stats, 10)

	results := r.Search(t.Context(), "foo")
	require.Len(t, results, 2)
	assert.Equal(t, "http://u1/", results[0].URL, "title hit should outrank a content hit")
}

func TestRanker_TopKCardinality(t *testing.T) {
	store, terms, stats := buildIndex(t)

	for i := range 5 {
		url := "http://doc" + string(rune('a'+i)) + "/"
		insert(t, store, terms, url, "rust programming language", "", "", "")
	}

	r := New(store, terms, stats, 2)

	results := r.Search(t.Context(), "rust")
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRanker_UnknownTermContributesNoCandidates(t *testing.T) {
	store, terms, stats := buildIndex(t)
	insert(t, store, terms, "http://a/", "", "rust", "", "")

	r := New(store, terms, stats, 10)

	assert.Empty(t, r.Search(t.Context(), "nonexistent"))
}

// TestRanker_Monotonicity pins P5: increasing f_q_d in any one field never
// decreases the final score.
func TestRanker_Monotonicity(t *testing.T) {
	storeLow, termsLow, statsLow := buildIndex(t)
	insert(t, storeLow, termsLow, "http://a/", "rust is great", "", "", "")
	insert(t, storeLow, termsLow, "http://b/", "other", "", "", "")

	storeHigh, termsHigh, statsHigh := buildIndex(t)
	insert(t, storeHigh, termsHigh, "http://a/", "rust rust rust is great", "", "", "")
	insert(t, storeHigh, termsHigh, "http://b/", "other", "", "", "")

	low := New(storeLow, termsLow, statsLow, 10).Search(t.Context(), "rust")
	high := New(storeHigh, termsHigh, statsHigh, 10).Search(t.Context(), "rust")

	require.Len(t, low, 1)
	require.Len(t, high, 1)
	assert.GreaterOrEqual(t, high[0].Score, low[0].Score)
}

func TestRanker_MissingPageRecordSkippedSilently(t *testing.T) {
	_, terms, stats := buildIndex(t)
	stats.TotalCount = 1
	stats.FieldLengths[core.FieldContent] = 10

	// Posted without ever being inserted into the store: simulates the
	// concurrent-insert race spec §4.3 calls out.
	terms.InsertTerm("ghost", "http://missing/")

	emptyStore := docstore.New(t.TempDir()+"/index.txt", core.NewIndexStats(), nil, "")
	r := New(emptyStore, terms, stats, 10)

	assert.Empty(t, r.Search(t.Context(), "ghost"))
}
