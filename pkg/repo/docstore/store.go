// Package docstore provides the in-memory, snapshot-backed document store
// (spec C1): one PageRecord per URL, with atomic on-disk persistence.
package docstore

import (
	"context"
	"crypto/md5" //nolint:gosec // content-addressed change detection, not a security digest (spec §3)
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/webdex/webdex/pkg/core"
)

// separator joins PageRecord fields on a snapshot line (spec §6).
const separator = "$$==$$=$$"

// ErrNotFound reports that a requested URL has no PageRecord. GetByURL
// signals absence through its boolean result and does not return it.
var ErrNotFound = errors.New("page not found")

// S3Uploader is the subset of the S3 client the store needs for the optional
// snapshot backup path (SPEC_FULL §2).
type S3Uploader interface {
	Upload(ctx context.Context, bucket, key string, data []byte) error
}

// Store is the in-memory document store keyed by URL, per spec §4.1.
// Ordering is not externally observable; a map is sufficient (spec §9
// redesign note: replace the original recursive BST with a hash-keyed
// container).
type Store struct {
	records map[string]core.PageRecord
	stats   *core.IndexStats
	backup  S3Uploader
	bucket  string
	path    string
	mu      sync.RWMutex
}

// New creates a Store that persists its snapshot at path and updates stats
// under the same lock as inserts (spec §5). backup and bucket configure the
// optional S3 snapshot upload; backup may be nil to disable it.
func New(path string, stats *core.IndexStats, backup S3Uploader, bucket string) *Store {
	return &Store{
		path:    path,
		records: make(map[string]core.PageRecord),
		stats:   stats,
		backup:  backup,
		bucket:  bucket,
	}
}

// Digest returns the hex-encoded MD5 digest of content, used for change
// detection (spec §3, I2). original_source/src/url_index.rs hashes with
// md5; this store matches it so hashes are stable across a restart that
// reloads the snapshot.
func Digest(content string) string {
	sum := md5.Sum([]byte(content)) //nolint:gosec // see import comment
	return hex.EncodeToString(sum[:])
}

// Insert creates or replaces the PageRecord for url (spec §4.1). It always
// updates IndexStats: total_count is incremented only for a brand-new URL,
// and field_lengths are adjusted by the delta between the old and new field
// lengths so avdl reflects the true current average rather than drifting
// upward on re-crawl (spec §9 Open Question, resolved in SPEC_FULL §3.2).
func (s *Store) Insert(url, content, title, headings, highlighted string) error {
	rec := core.PageRecord{
		URL:         url,
		Title:       title,
		Headings:    headings,
		Highlighted: highlighted,
		Content:     content,
		Hash:        Digest(content),
		Timestamp:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, existed := s.records[url]
	s.records[url] = rec

	s.updateStats(old, existed, rec)

	return nil
}

func (s *Store) updateStats(old core.PageRecord, existed bool, next core.PageRecord) {
	if s.stats == nil {
		return
	}

	if !existed {
		s.stats.TotalCount++
	}

	for field, delta := range fieldDeltas(old, existed, next) {
		s.stats.FieldLengths[field] += delta
	}
}

// fieldDeltas computes, per field, the signed change in character length
// between the old and new record. For a brand-new URL the old record
// contributes zero.
func fieldDeltas(old core.PageRecord, existed bool, next core.PageRecord) map[core.Field]int64 {
	fields := []core.Field{core.FieldURL, core.FieldTitle, core.FieldHeadings, core.FieldHighlighted, core.FieldContent}
	deltas := make(map[core.Field]int64, len(fields))

	for _, f := range fields {
		newLen := int64(len(next.Field(f)))

		oldLen := int64(0)
		if existed {
			oldLen = int64(len(old.Field(f)))
		}

		deltas[f] = newLen - oldLen
	}

	return deltas
}

// GetByURL returns a copy of the PageRecord for url, so the caller always
// sees a consistent snapshot of all fields (spec §4.1).
func (s *Store) GetByURL(url string) (*core.PageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[url]
	if !ok {
		return nil, false
	}

	cp := rec

	return &cp, true
}

// Records returns a snapshot copy of every stored PageRecord, used both for
// on-disk serialization and for TermIndex.LoadFromSnapshot (spec §4.2: the
// term index has no independent on-disk format and replays the docstore's
// already-loaded records instead of re-parsing the file a second time).
func (s *Store) Records() []core.PageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.PageRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}

	return out
}

// SnapshotToDisk writes the full store to a temp file and atomically renames
// it over the configured path (spec §4.1, §6, I5). Failure is reported; the
// in-memory state is never touched by a failed write.
func (s *Store) SnapshotToDisk(ctx context.Context) error {
	records := s.Records()

	var b strings.Builder

	for _, rec := range records {
		if strings.Contains(rec.URL+rec.Title+rec.Headings+rec.Highlighted+rec.Content, "\n") {
			slog.WarnContext(ctx, "skipping record with embedded newline, unsupported by snapshot format", "url", rec.URL)
			continue
		}

		fmt.Fprintf(&b, "%s%s%s%s%s%s%s%s%s\n",
			rec.URL, separator, rec.Title, separator, rec.Headings, separator, rec.Highlighted, separator, rec.Content)
	}

	tempPath := tempPathFor(s.path)

	if err := os.WriteFile(tempPath, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to rename snapshot into place: %w", err)
	}

	s.uploadBackup(ctx, b.String())

	return nil
}

func (s *Store) uploadBackup(ctx context.Context, body string) {
	if s.backup == nil || s.bucket == "" {
		return
	}

	key := filepath.Base(s.path)

	if err := s.backup.Upload(ctx, s.bucket, key, []byte(body)); err != nil {
		slog.WarnContext(ctx, "snapshot S3 backup failed", "bucket", s.bucket, "key", key, "error", err)
		return
	}

	slog.InfoContext(ctx, "snapshot uploaded to S3", "bucket", s.bucket, "key", key)
}

// tempPathFor mirrors spec §6: "{configured-path with '.txt' replaced by
// '-temp.txt'}".
func tempPathFor(path string) string {
	if strings.HasSuffix(path, ".txt") {
		return strings.TrimSuffix(path, ".txt") + "-temp.txt"
	}

	return path + "-temp"
}

// LoadFromDisk reads the snapshot file line by line, re-inserting each valid
// record (spec §4.1). A missing file is treated as an empty store, not an
// error. Malformed lines are skipped with a log line; loading continues.
func (s *Store) LoadFromDisk(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.InfoContext(ctx, "no snapshot file found, starting with an empty store", "path", s.path)
			return nil
		}

		return fmt.Errorf("failed to read snapshot file: %w", err)
	}

	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		if line == "" {
			continue
		}

		parts := strings.Split(line, separator)
		if len(parts) != 5 {
			slog.WarnContext(ctx, "skipping malformed snapshot line", "line_number", i+1, "field_count", len(parts))
			continue
		}

		if err := s.Insert(parts[0], parts[4], parts[1], parts[2], parts[3]); err != nil {
			slog.WarnContext(ctx, "skipping snapshot line that failed to insert", "line_number", i+1, "error", err)
		}
	}

	return nil
}
