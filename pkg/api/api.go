// Package api provides the HTTP surface collaborator (spec §1): the search
// endpoint, the ad-hoc index-a-URL endpoint, and the static homepage.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/webdex/webdex/pkg/core"
)

const (
	defaultTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// API is the HTTP server exposing search, ad-hoc indexing, and the homepage.
type API struct {
	svc      Service
	homepage HomepageRenderer
	config   Config
}

// Config holds the configuration for the API server (spec §6).
type Config struct {
	Listen     string   `mapstructure:"listen"`
	APIKeys    []string `mapstructure:"api_keys"` //nolint:gosec // This is a config struct, not a secret value
	HomeFile   string   `mapstructure:"home_file"`
	APIBaseURL string   `mapstructure:"api_base_url"`
}

// Service is the subset of IndexSupervisor's public operations the API
// surfaces (spec §6: search, index_single_url, get_page_record).
type Service interface {
	Search(ctx context.Context, query string) []core.ScoredResult
	IndexSingleURL(ctx context.Context, url string)
	GetPageRecord(url string) (*core.PageRecord, bool)
}

// HomepageRenderer renders the operator-authored HOMEPAGE_FILE_PATH markdown
// file into sanitized HTML.
type HomepageRenderer interface {
	RenderFile(path, apiBaseURL string) ([]byte, error)
}

// New creates a new API instance with the provided configuration and
// service. It validates the configuration and returns an error if the
// listen address is not specified.
func New(cfg Config, svc Service, homepage HomepageRenderer) (*API, error) {
	if cfg.Listen == "" {
		return nil, fmt.Errorf("listen address must be specified")
	}

	return &API{config: cfg, svc: svc, homepage: homepage}, nil
}

// Run starts the API server with the provided configuration. It listens on
// the address specified in the configuration and handles graceful shutdown.
// When the context is cancelled, in-flight requests are given a grace period
// to complete before the server is forcefully closed.
func (a *API) Run(ctx context.Context) error {
	s := &http.Server{
		Addr:              a.config.Listen,
		ReadHeaderTimeout: defaultTimeout,
		WriteTimeout:      defaultTimeout,
		Handler:           a.newMux(),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		slog.WarnContext(ctx, "shutting down API server")

		if err := s.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "graceful shutdown failed, forcing close", "error", err)

			if closeErr := s.Close(); closeErr != nil {
				slog.ErrorContext(ctx, "forced close failed", "error", closeErr)
			}
		}
	}()

	if err := s.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}
