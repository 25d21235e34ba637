package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReqID_SetsHeaderAndContext(t *testing.T) {
	var gotFromCtx string

	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotFromCtx = ReqID(r.Context())
	})

	wrapped := NewReqID()(handler)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, w.Header().Get("X-Request-Id"), gotFromCtx)
}

func TestNewReqID_UniquePerRequest(t *testing.T) {
	handler := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {})
	wrapped := NewReqID()(handler)

	w1 := httptest.NewRecorder()
	wrapped.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	w2 := httptest.NewRecorder()
	wrapped.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.NotEqual(t, w1.Header().Get("X-Request-Id"), w2.Header().Get("X-Request-Id"))
}

func TestReqID_AbsentReturnsEmpty(t *testing.T) {
	assert.Empty(t, ReqID(httptest.NewRequest(http.MethodGet, "/", http.NoBody).Context()))
}
