package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webdex/webdex/pkg/core"
)

// fakeService is a hand-rolled Service double; no mock generator runs over
// this module.
type fakeService struct {
	results []core.ScoredResult
	indexed []string
	records map[string]*core.PageRecord
}

func (f *fakeService) Search(_ context.Context, _ string) []core.ScoredResult { return f.results }

func (f *fakeService) IndexSingleURL(_ context.Context, url string) {
	f.indexed = append(f.indexed, url)
}

func (f *fakeService) GetPageRecord(url string) (*core.PageRecord, bool) {
	rec, ok := f.records[url]
	return rec, ok
}

type fakeHomepage struct {
	body []byte
	err  error
}

func (f *fakeHomepage) RenderFile(_, _ string) ([]byte, error) { return f.body, f.err }

func TestNew_ValidConfig(t *testing.T) {
	cfg := Config{Listen: ":8080", APIKeys: []string{"key1"}}

	api, err := New(cfg, &fakeService{}, &fakeHomepage{})

	require.NoError(t, err)
	assert.NotNil(t, api)
}

func TestNew_EmptyListen(t *testing.T) {
	cfg := Config{Listen: ""}

	_, err := New(cfg, &fakeService{}, &fakeHomepage{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "listen address must be specified")
}

func TestRun_GracefulShutdown(t *testing.T) {
	cfg := Config{Listen: "127.0.0.1:0", APIKeys: []string{"key1"}}

	api, err := New(cfg, &fakeService{}, &fakeHomepage{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err = api.Run(ctx)
	assert.NoError(t, err)
}
