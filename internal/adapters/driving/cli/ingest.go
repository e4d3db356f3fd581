package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/logger"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index a file or directory",
	Long: `Loads a file, or every supported file under a directory, splits it into
chunks, embeds them and saves the store.

Supported formats: .txt, .md, .html, .docx. Files that are already indexed
are skipped, and a warning is logged when one has changed since. With --watch,
new files under the directory are ingested as they appear until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNotConfigured("ingest")
	}
	path := args[0]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := ingestService.IngestPath(ctx, path)
	if result != nil {
		printIngestResult(cmd, result)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if !ingestWatch {
		return nil
	}
	if watcher == nil {
		return errors.New("file watching not available")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", path)
	return watcher.Watch(ctx, path, func(paths []string) {
		for _, p := range paths {
			result, err := ingestService.IngestPath(ctx, p)
			if err != nil {
				logger.Error("Failed to ingest %s: %v", p, err)
			}
			if result != nil && result.DocumentsIndexed > 0 {
				printIngestResult(cmd, result)
			}
		}
	})
}

func printIngestResult(cmd *cobra.Command, result *domain.IngestResult) {
	cmd.Printf("Indexed %d documents (%d chunks)\n", result.DocumentsIndexed, result.ChunksAdded)
	if len(result.SkippedSources) > 0 {
		cmd.Printf("Skipped %d already indexed:\n", len(result.SkippedSources))
		for _, src := range result.SkippedSources {
			cmd.Printf("  %s\n", src)
		}
	}
	if len(result.FailedSources) > 0 {
		cmd.Printf("Failed %d:\n", len(result.FailedSources))
		for _, f := range result.FailedSources {
			cmd.Printf("  %s: %s\n", f.Source, f.Error)
		}
	}
}
