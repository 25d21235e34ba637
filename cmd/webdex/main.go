// Command webdex is the embedded web search service: crawl, index, rank.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/webdex/webdex/pkg/cmd"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cmd.InitCommand(cmd.BuildInfo{Version: version, AppName: "webdex"})

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("webdex exited with error", "error", err)
		os.Exit(1)
	}
}
