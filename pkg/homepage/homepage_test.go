package homepage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RenderFile_SanitizesAndWraps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home.md")
	require.NoError(t, os.WriteFile(path, []byte("# Welcome\n\n<script>alert(1)</script>\n\nHello **world**."), 0o600))

	r, err := New()
	require.NoError(t, err)

	out, err := r.RenderFile(path, "http://localhost:8080")
	require.NoError(t, err)

	body := string(out)
	assert.Contains(t, body, "Welcome")
	assert.Contains(t, body, "<strong>world</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "http://localhost:8080")
}

func TestRenderer_RenderFile_MissingFileErrors(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	_, err = r.RenderFile(filepath.Join(t.TempDir(), "missing.md"), "http://localhost:8080")
	assert.Error(t, err)
}

func TestDefaultPage_EscapesAPIBaseURL(t *testing.T) {
	page := DefaultPage(`http://evil/"><script>alert(1)</script>`)
	assert.NotContains(t, string(page), "<script>alert(1)</script>")
}
