package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type reqIDKey struct{}

// NewReqID stamps each request with a UUID, stored in the request context
// and echoed back as X-Request-Id, so log lines across the crawl/search path
// can be correlated to a single inbound request.
func NewReqID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()

			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), reqIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ReqID returns the request ID stashed in ctx by NewReqID, or "" if absent.
func ReqID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey{}).(string)
	return id
}
