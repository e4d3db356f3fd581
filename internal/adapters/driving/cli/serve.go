package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/api"
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the document, search, query and upload endpoints over HTTP.

Endpoints:
  GET  /documents
  GET  /documents/{id}/chunks
  GET  /chunks/{id}
  GET  /status
  POST /search   {"query": "...", "top_k": 10}
  POST /query    {"query": "..."}
  POST /upload   multipart form, field "files"`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings := domain.DefaultAppSettings()
	if appSettings != nil {
		settings = *appSettings
	}
	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}

	handler := api.NewHandler(api.Ports{
		Search:   searchService,
		Answer:   answerService,
		Document: documentService,
		Ingest:   ingestService,
	}, settings.Server.MaxUploadBytes)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(addr, handler)
	cmd.Printf("HTTP API listening on %s\n", server.Addr())
	return server.Run(ctx)
}
