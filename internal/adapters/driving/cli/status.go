package cli

import (
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vector store status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	status := documentService.Status()
	if statusJSON {
		return outputJSON(cmd, status)
	}

	loaded := "no"
	if status.Loaded {
		loaded = "yes"
	}
	model := status.EmbeddingModel
	if model == "" {
		model = "(not configured)"
	}

	cmd.Println("Vector Store")
	cmd.Println("============")
	cmd.Printf("  Vectors:    %d\n", status.Vectors)
	cmd.Printf("  Documents:  %d\n", status.Documents)
	cmd.Printf("  Dimension:  %d\n", status.Dimension)
	cmd.Printf("  Loaded:     %s\n", loaded)
	cmd.Printf("  Location:   %s\n", status.Location)
	cmd.Printf("  Embedding:  %s\n", model)
	return nil
}
