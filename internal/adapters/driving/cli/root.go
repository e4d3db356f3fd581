// Package cli provides the ragstore command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// wireAnnotation selects how much of the application a command needs.
const wireAnnotation = "ragstore.wire"

const (
	// wireNone skips composition entirely.
	wireNone = "none"

	// wireSettings opens the config store only, so a broken store
	// configuration can still be repaired.
	wireSettings = "settings"
)

// Services used by commands. Execute wires them from configuration;
// tests inject them directly.
var (
	searchService   driving.SearchService
	answerService   driving.AnswerService
	documentService driving.DocumentService
	ingestService   driving.IngestService
	settingsService driving.SettingsService

	// watcher reports changed files for ingest --watch.
	watcher fileWatcher

	// appSettings are the settings the services were built from.
	appSettings *domain.AppSettings

	// servicesInjected disables wiring when services were set externally.
	servicesInjected bool

	// current is the application wired for this invocation.
	current *app
)

// fileWatcher is the part of the document loader used by ingest --watch.
type fileWatcher interface {
	Watch(ctx context.Context, dir string, fn func(paths []string)) error
}

// Global flags.
var (
	verbose   bool
	configDir string
	storeDir  string
)

var rootCmd = &cobra.Command{
	Use:   "ragstore",
	Short: "Local retrieval-augmented question answering",
	Long: `ragstore indexes documents into a local vector store and answers
questions from them with a language model.

Ingest files, search them by meaning, and ask questions whose answers
cite the documents they came from.`,
	SilenceUsage:      true,
	PersistentPreRunE: wireServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.ragstore)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "vector store directory (default <config-dir>/store)")
}

// Execute runs the root command and releases resources afterwards.
func Execute() error {
	defer closeApp()
	return rootCmd.Execute()
}

func wireServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if servicesInjected || current != nil {
		return nil
	}

	switch cmd.Annotations[wireAnnotation] {
	case wireNone:
		return nil
	case wireSettings:
		svc, settings, err := openSettings(configDir)
		if err != nil {
			return err
		}
		settingsService = svc
		appSettings = settings
		return nil
	}

	a, err := newApp(cmd.Context(), configDir, storeDir)
	if err != nil {
		return err
	}
	current = a
	searchService = a.store
	documentService = a.store
	answerService = a.answer
	ingestService = a.ingest
	settingsService = a.settingsSvc
	watcher = a.loader
	appSettings = a.settings
	return nil
}

func closeApp() {
	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		logger.Warn("Failed to close: %v", err)
	}
	current = nil
}

// errNotConfigured builds the error returned when a service is missing.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
