package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunIndex_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/index", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := runIndex(t.Context(), &cmdFlags{LogLevel: "error", TextFormat: true}, &indexFlags{URL: srv.URL, Page: "https://a.test/"})
	assert.NoError(t, err)
}

func TestRunIndex_MissingURL(t *testing.T) {
	err := runIndex(t.Context(), &cmdFlags{LogLevel: "error", TextFormat: true}, &indexFlags{Page: "https://a.test/"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--url")
}

func TestRunIndex_MissingPage(t *testing.T) {
	err := runIndex(t.Context(), &cmdFlags{LogLevel: "error", TextFormat: true}, &indexFlags{URL: "http://localhost"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--page")
}

func TestRunIndex_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := runIndex(t.Context(), &cmdFlags{LogLevel: "error", TextFormat: true}, &indexFlags{URL: srv.URL, Page: "https://a.test/"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to request index")
}

func TestNewIndexCmd(t *testing.T) {
	cmd := newIndexCmd(&cmdFlags{})

	assert.Equal(t, "index", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	assert.NotNil(t, cmd.Flags().Lookup("url"))
	assert.NotNil(t, cmd.Flags().Lookup("api-key"))
	assert.NotNil(t, cmd.Flags().Lookup("page"))
}
