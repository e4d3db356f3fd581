package cli

import (
	"github.com/spf13/cobra"
)

var documentJSON bool

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect indexed documents",
	Long:  `List indexed documents and view their chunks.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "List the chunks of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentChunkCmd = &cobra.Command{
	Use:   "chunk [chunk-id]",
	Short: "Show a single chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunk,
}

func init() {
	documentCmd.PersistentFlags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentChunkCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	docs := documentService.ListDocuments()
	if documentJSON {
		return outputJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].DocumentID)
		cmd.Printf("    Source: %s\n", docs[i].Source)
		cmd.Printf("    Chunks: %d\n", docs[i].TotalChunks)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	docID := args[0]
	chunks, err := documentService.DocumentChunks(docID)
	if err != nil {
		return err
	}
	if documentJSON {
		return outputJSON(cmd, chunks)
	}
	if len(chunks) == 0 {
		cmd.Printf("No chunks for %s.\n", docID)
		return nil
	}

	cmd.Printf("Chunks for %s (%s):\n\n", docID, chunks[0].Source)
	for i := range chunks {
		cmd.Printf("  %s [vector %d]\n", chunks[i].ChunkID, chunks[i].Position)
		cmd.Printf("    %s\n", snippet(chunks[i].Text, snippetLength))
		cmd.Println()
	}

	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}

func runDocumentChunk(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	chunk, err := documentService.Chunk(args[0])
	if err != nil {
		return err
	}
	if documentJSON {
		return outputJSON(cmd, chunk)
	}

	cmd.Printf("Chunk: %s\n\n", chunk.ChunkID)
	cmd.Printf("  Document: %s\n", chunk.DocumentID)
	cmd.Printf("  Source:   %s\n", chunk.Source)
	cmd.Printf("  Index:    %d of %d\n", chunk.ChunkIndex+1, chunk.TotalChunks)
	cmd.Printf("  Vector:   %d\n", chunk.Position)
	cmd.Println()
	cmd.Println(chunk.Text)
	return nil
}
