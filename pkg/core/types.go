// Package core holds the data model shared by webdex's storage, indexing,
// ranking, and crawling packages.
package core

import "time"

// Field identifies one of the five weighted text regions a page contributes
// to the index: the URL itself plus the four extracted content fields.
type Field string

const (
	FieldURL         Field = "url"
	FieldTitle       Field = "title"
	FieldHeadings    Field = "headings"
	FieldHighlighted Field = "highlighted"
	FieldContent     Field = "content"
)

// FieldWeights assigns the BM25 field weight used by the ranker (spec §4.3).
var FieldWeights = map[Field]float64{
	FieldURL:         8,
	FieldTitle:       6,
	FieldHeadings:    4,
	FieldHighlighted: 2,
	FieldContent:     1,
}

// PageRecord is the per-URL record held by the document store.
type PageRecord struct {
	Timestamp   time.Time
	URL         string
	Title       string
	Headings    string
	Highlighted string
	Content     string
	Hash        string
}

// Field returns the text of the named field, treating the URL itself as the
// "url field text" per spec §4.3.
func (p PageRecord) Field(f Field) string {
	switch f {
	case FieldURL:
		return p.URL
	case FieldTitle:
		return p.Title
	case FieldHeadings:
		return p.Headings
	case FieldHighlighted:
		return p.Highlighted
	case FieldContent:
		return p.Content
	default:
		return ""
	}
}

// IndexStats is the process-wide aggregate used by the ranker's BM25
// normalization (spec §3, IndexStats). All fields are monotonically
// increasing counters except where the docstore resolves the avdl-drift
// Open Question by subtracting stale lengths before adding new ones.
type IndexStats struct {
	FieldLengths map[Field]int64
	TotalCount   int64
}

// NewIndexStats returns a zeroed IndexStats ready for use.
func NewIndexStats() *IndexStats {
	return &IndexStats{FieldLengths: make(map[Field]int64, len(FieldWeights))}
}

// AverageLength returns IndexStats.field_lengths[f] / total_count, or 0 when
// there are no indexed pages yet (spec §4.3: "treat total_count == 0 as no
// results").
func (s *IndexStats) AverageLength(f Field) int64 {
	if s.TotalCount == 0 {
		return 0
	}

	return s.FieldLengths[f] / s.TotalCount
}

// ScoredResult is a single ranked search hit (spec §4.3).
type ScoredResult struct {
	URL   string
	Title string
	Score float64
}

// SearchOpts configures a ranker query.
type SearchOpts struct {
	TopK int
}

// ExtractedPage is the output of the DocumentParser collaborator (spec §1):
// the four lowercased, whitespace-normalized text fields plus the raw
// discovered link targets.
type ExtractedPage struct {
	Title       string
	Headings    string
	Highlighted string
	Content     string
	Links       []string
}

// IndexContext bundles the shared, process-scoped index state — the
// document store, the term index, and the running stats — into a single
// value instead of package-level globals (spec §9, "Global mutable state").
// supervisor.New takes it and builds the ranker from its fields; the
// crawler and ranker constructors themselves take the store, term index and
// stats as separate arguments, not an IndexContext.
type IndexContext struct {
	Store Store
	Terms TermIndex
	Stats *IndexStats
}

// Store is the subset of docstore.Store's behavior the core package needs to
// reference without importing it (avoiding an import cycle; docstore imports
// core for PageRecord/IndexStats).
type Store interface {
	Insert(url, content, title, headings, highlighted string) error
	GetByURL(url string) (*PageRecord, bool)
	Records() []PageRecord
}

// TermIndex is the subset of termindex.Index's behavior the core package
// needs to reference without importing it.
type TermIndex interface {
	InsertPage(url, content, title, headings, highlighted string)
	Get(term string) []string
}
