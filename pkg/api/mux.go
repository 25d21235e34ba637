package api

import (
	"net/http"

	"github.com/webdex/webdex/pkg/api/middleware"
)

// newMux creates and returns a new HTTP ServeMux with the API's routes registered.
func (a *API) newMux() *http.ServeMux {
	mux := http.NewServeMux()

	withReqID := middleware.NewReqID()
	withAuth := middleware.NewAuth(a.config.APIKeys)

	// Health check.
	mux.Handle("GET /livez", middleware.Use(a.healthCheck, withReqID))

	// Search (public).
	mux.Handle("GET /search", middleware.Use(a.search, withReqID))

	// Ad-hoc index-a-URL (authenticated: triggers a network fetch).
	mux.Handle("POST /index", middleware.Use(a.index, withReqID, withAuth))

	// Homepage.
	mux.Handle("GET /", middleware.Use(a.homePage, withReqID))

	return mux
}
