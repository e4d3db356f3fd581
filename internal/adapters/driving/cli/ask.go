package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from indexed documents",
	Long: `Retrieves the chunks closest to the question and asks the language model
to answer from them. When nothing relevant is indexed, the model answers
from general knowledge and no sources are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errNotConfigured("answer")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	answer, err := answerService.Answer(ctx, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	cmd.Println()
	if answer.UsedFallback {
		cmd.Println("(No relevant documents found; answered from general knowledge.)")
		return nil
	}
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (%d chunks, %.4f)\n", i+1, src.Source, src.ChunkCount, src.Distance)
		cmd.Printf("      %s\n", snippet(src.Excerpt, snippetLength))
	}
	return nil
}
