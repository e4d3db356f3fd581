package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for ragstore.

Ask questions or search indexed chunks, and browse documents with
keyboard navigation.

Controls:
  Enter    - Ask / Search
  Ctrl+T   - Toggle ask and search
  Tab      - Switch between query and documents
  ↑/k, ↓/j - Navigate
  n        - New query
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIPorts collects the wired services for the TUI.
func newTUIPorts() *tui.Ports {
	return tui.NewPorts(searchService, answerService, documentService)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Recover so a rendering panic leaves a stack trace after the alt screen closes.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := newTUIPorts()
	if err := ports.Validate(); err != nil {
		return errNotConfigured("search")
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
