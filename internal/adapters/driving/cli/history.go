package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const timeFormat = "2006-01-02 15:04:05"

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show ingest runs and indexed sources",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errNotConfigured("ingest")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	history, err := ingestService.History(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if historyJSON {
		return outputJSON(cmd, history)
	}

	if len(history.Runs) == 0 {
		cmd.Println("No ingest runs recorded.")
		return nil
	}

	cmd.Println("Runs:")
	for _, run := range history.Runs {
		cmd.Printf("  %s  %s\n", run.StartedAt.Format(timeFormat), run.Path)
		cmd.Printf("    %d documents, %d chunks, %d skipped, %d failed\n",
			run.Documents, run.ChunksAdded, run.Skipped, run.Failed)
	}
	cmd.Println()

	cmd.Printf("Sources (%d):\n", len(history.Sources))
	for _, src := range history.Sources {
		cmd.Printf("  %s  %s (%d chunks)\n", src.IndexedAt.Format(timeFormat), src.Source, src.Chunks)
	}
	return nil
}
