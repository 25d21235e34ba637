// Package termindex provides the inverted term → URL-set mapping (spec C2).
package termindex

import (
	"context"
	"strings"
	"sync"

	"github.com/webdex/webdex/pkg/core"
)

// Index maps a lowercase term to the set of URLs whose fields contain it.
// A map-of-sets replaces the original per-term BST (spec §9 redesign note):
// enumeration order is never observable, so a hash-keyed container is
// sufficient and removes the recursion-on-skewed-input hazard.
type Index struct {
	postings map[string]map[string]struct{}
	mu       sync.RWMutex
}

// New returns an empty Index.
func New() *Index {
	return &Index{postings: make(map[string]map[string]struct{})}
}

// InsertTerm adds url to term's posting set. Idempotent per (term, url)
// (spec §4.2).
func (idx *Index) InsertTerm(term, url string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	set, ok := idx.postings[term]
	if !ok {
		set = make(map[string]struct{})
		idx.postings[term] = set
	}

	set[url] = struct{}{}
}

// InsertPage concatenates title, headings, highlighted, and content (in that
// order, separated by single spaces), splits on whitespace, lowercases each
// token, and inserts url into every resulting term's posting set (spec §4.2).
func (idx *Index) InsertPage(url, content, title, headings, highlighted string) {
	combined := strings.Join([]string{title, headings, highlighted, content}, " ")

	for _, token := range strings.Fields(combined) {
		idx.InsertTerm(strings.ToLower(token), url)
	}
}

// Get returns the URLs posting for the exact lowercased term, or nil if the
// term is unknown (spec §4.2).
func (idx *Index) Get(term string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	set, ok := idx.postings[term]
	if !ok {
		return nil
	}

	urls := make([]string, 0, len(set))
	for url := range set {
		urls = append(urls, url)
	}

	return urls
}

// snapshotSource is the subset of docstore.Store behavior LoadFromSnapshot
// needs: the already-loaded records, rather than a second read of the
// snapshot file.
type snapshotSource interface {
	Records() []core.PageRecord
}

// LoadFromSnapshot replays InsertPage for every record already loaded by the
// docstore (spec §4.2: "TermIndex has no independent on-disk format" and
// "replays insert_page for each valid record" — it does not mandate
// re-opening the snapshot file a second time, so this takes the docstore's
// in-memory records directly).
func (idx *Index) LoadFromSnapshot(_ context.Context, store snapshotSource) {
	for _, rec := range store.Records() {
		idx.InsertPage(rec.URL, rec.Content, rec.Title, rec.Headings, rec.Highlighted)
	}
}
