package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/webdex/webdex/pkg/homepage"
	"github.com/webdex/webdex/pkg/ranker"
)

// healthCheck verifies the server is running and returns 200 OK.
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("Ok")); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response", "error", err)

		return
	}
}

// searchResponse is the JSON shape returned by GET /search.
type searchResponse struct {
	Query   string          `json:"query"`
	Results []searchHitView `json:"results"`
	Message string          `json:"message,omitempty"`
}

type searchHitView struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// search handles GET /search?q=..., returning the ranked results as JSON
// (spec.md §4.3, scenario 1). An empty query is a 400; no results is a 200
// carrying ranker.NoPagesFoundMessage (spec.md §7.5).
func (a *API) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing required query parameter: q", http.StatusBadRequest)
		return
	}

	hits := a.svc.Search(r.Context(), query)

	resp := searchResponse{Query: query, Results: make([]searchHitView, 0, len(hits))}
	if len(hits) == 0 {
		resp.Message = ranker.NoPagesFoundMessage
	}

	for _, h := range hits {
		resp.Results = append(resp.Results, searchHitView{URL: h.URL, Title: h.Title, Score: h.Score})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write search response", "error", err)
	}
}

// indexRequest is the JSON body expected by POST /index.
type indexRequest struct {
	URL string `json:"url"`
}

// index handles POST /index: it kicks off an ad-hoc single-URL crawl and
// returns immediately (spec §4.5 step 7, spec §6 index_single_url).
func (a *API) index(w http.ResponseWriter, r *http.Request) {
	var req indexRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.URL == "" {
		http.Error(w, "missing required field: url", http.StatusBadRequest)
		return
	}

	a.svc.IndexSingleURL(r.Context(), req.URL)

	w.WriteHeader(http.StatusAccepted)
}

// homePage serves the operator-authored HOMEPAGE_FILE_PATH markdown file
// rendered to HTML, falling back to homepage.DefaultPage when unset or
// unreadable.
func (a *API) homePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if a.config.HomeFile != "" && a.homepage != nil {
		body, err := a.homepage.RenderFile(a.config.HomeFile, a.config.APIBaseURL)
		if err == nil {
			w.WriteHeader(http.StatusOK)

			if _, writeErr := w.Write(body); writeErr != nil {
				slog.ErrorContext(r.Context(), "failed to write homepage response", "error", writeErr)
			}

			return
		}

		slog.WarnContext(r.Context(), "failed to render homepage file, falling back to default", "path", a.config.HomeFile, "error", err)
	}

	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(homepage.DefaultPage(a.config.APIBaseURL)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write default homepage response", "error", err)
	}
}
