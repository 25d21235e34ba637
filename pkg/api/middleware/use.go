package middleware

import "net/http"

// Use wraps handler with mw in order, so the first middleware listed is the
// outermost one invoked. Referenced throughout mux.go to keep per-route
// middleware chains declarative.
func Use(handler http.HandlerFunc, mw ...func(http.Handler) http.Handler) http.Handler {
	var h http.Handler = handler

	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}

	return h
}
