// echoverse scores journal text for emotion and renders evolving mood blobs.
//
// Usage:
//
//	echoverse analyze "I feel great today"
//	echoverse render --text "so anxious" -o blob.png
//	echoverse static --text "so anxious" -o chart.png
//	echoverse entry add --user alice "dear diary..."
//	echoverse backfill --limit 500
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/easeaico/echoverse/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "echoverse",
	Short: "Emotion analysis and mood blob rendering for journal entries",
	Long: "Echoverse scores free-form text across ten emotions and turns the\n" +
		"result into procedural mood blob images that evolve with each entry.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(staticCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
