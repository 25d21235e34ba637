package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/webdex/webdex/pkg/publisher"
)

type indexFlags struct {
	URL    string
	APIKey string //nolint:gosec // Not a credential, just a flag name for the CLI
	Page   string
}

// newIndexCmd creates a cobra command that requests an ad-hoc, single-page
// crawl from a running webdex instance (spec §4.5 step 7).
func newIndexCmd(flags *cmdFlags) *cobra.Command {
	idxFlags := &indexFlags{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Request an ad-hoc index of a single URL",
		Long:  "Ask a running webdex instance to crawl and index one URL immediately, bypassing the periodic crawl loop.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd.Context(), flags, idxFlags)
		},
	}

	cmd.Flags().StringVar(&idxFlags.URL, "url", "", "base URL of the webdex instance")
	cmd.Flags().StringVar(&idxFlags.APIKey, "api-key", "", "Bearer token for authentication")
	cmd.Flags().StringVar(&idxFlags.Page, "page", "", "URL of the page to index")

	return cmd
}

func runIndex(ctx context.Context, flags *cmdFlags, idxFlags *indexFlags) error {
	if err := initLogger(flags); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	if idxFlags.URL == "" {
		return fmt.Errorf("--url is required")
	}

	if idxFlags.Page == "" {
		return fmt.Errorf("--page is required")
	}

	client := publisher.New(idxFlags.URL, idxFlags.APIKey)

	if err := client.PostIndex(ctx, idxFlags.Page); err != nil {
		return fmt.Errorf("failed to request index: %w", err)
	}

	slog.Info("index requested", "page", idxFlags.Page)

	return nil
}
