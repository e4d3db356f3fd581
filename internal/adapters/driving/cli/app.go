package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/ragstore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/index/flat"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/loader/filesystem"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/minio"
	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/core/services"
	"github.com/custodia-labs/ragstore/internal/logger"
	"github.com/custodia-labs/ragstore/internal/normalisers/docx"
	"github.com/custodia-labs/ragstore/internal/normalisers/html"
	"github.com/custodia-labs/ragstore/internal/normalisers/markdown"
	"github.com/custodia-labs/ragstore/internal/normalisers/plaintext"
	"github.com/custodia-labs/ragstore/internal/postprocessors/chunker"
)

const (
	storeSubdir   = "store"
	uploadsSubdir = "uploads"
	promptsSubdir = "prompts"
)

// app is the composed application for one invocation.
type app struct {
	settings    *domain.AppSettings
	settingsSvc *services.SettingsService
	store       *services.VectorStore
	answer      *services.AnswerService
	ingest      *services.IngestService
	loader      *filesystem.Loader
	ledger      *sqlite.Ledger
	aiCache     *ai.Cache
}

// openSettings opens the config store in dir and reads the settings.
func openSettings(dir string) (*services.SettingsService, *domain.AppSettings, error) {
	store, err := configfile.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	svc := services.NewSettingsService(store, ai.NewConfigValidator())
	settings, err := svc.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("read settings: %w", err)
	}
	return svc, settings, nil
}

// newApp wires every adapter from the settings in cfgDir.
// The store directory is the flag value, then store.dir, then <cfgDir>/store.
func newApp(ctx context.Context, cfgDir, dataDir string) (*app, error) {
	if cfgDir == "" {
		dir, err := configfile.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		cfgDir = dir
	}

	settingsSvc, settings, err := openSettings(cfgDir)
	if err != nil {
		return nil, err
	}
	if dataDir == "" {
		dataDir = settings.Store.Dir
	}
	if dataDir == "" {
		dataDir = filepath.Join(cfgDir, storeSubdir)
	}
	logger.Debug("Config dir %s, store dir %s", cfgDir, dataDir)

	a := &app{settings: settings, settingsSvc: settingsSvc, aiCache: ai.NewCache()}
	if err := a.build(ctx, cfgDir, dataDir); err != nil {
		a.Close() //nolint:errcheck
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context, cfgDir, dataDir string) error {
	settings := a.settings

	var embedder driven.EmbeddingService
	svc, err := a.aiCache.GetOrCreateEmbedding(&settings.Embedding)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}
	if svc != nil {
		embedder = ai.NewThrottled(svc, settings.RateLimit)
	} else {
		logger.Debug("No embedding provider configured")
	}

	llm, err := a.aiCache.GetOrCreateLLM(&settings.LLM)
	if err != nil {
		return fmt.Errorf("create LLM service: %w", err)
	}

	chunks, err := chunker.New(
		chunker.WithChunkSize(settings.Chunker.Size),
		chunker.WithOverlap(settings.Chunker.Overlap),
	)
	if err != nil {
		return fmt.Errorf("create chunker: %w", err)
	}

	state, err := newStateStore(ctx, settings, dataDir)
	if err != nil {
		return err
	}

	a.store = services.NewVectorStore(
		flat.New(flat.WithWorkers(settings.Store.SearchWorkers)),
		memory.NewMetadataStore(),
		state,
		chunks,
		embedder,
	)
	if _, err := a.store.Load(ctx); err != nil {
		return err
	}

	a.ledger, err = sqlite.NewLedger(dataDir)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	a.loader = filesystem.New([]driven.Normaliser{
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
	})

	prompts, err := configfile.NewPromptStore(filepath.Join(cfgDir, promptsSubdir))
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	a.answer = services.NewAnswerService(a.store, llm, prompts, settings.Answer, driven.GenerateOptions{
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
	})
	a.ingest = services.NewIngestService(
		a.loader,
		a.store,
		a.ledger,
		filepath.Join(dataDir, uploadsSubdir),
		settings.Server.MaxUploadBytes,
	)
	return nil
}

func newStateStore(ctx context.Context, settings *domain.AppSettings, dataDir string) (driven.StateStore, error) {
	if settings.Store.Backend == domain.StoreBackendMinio {
		store, err := minio.New(ctx, settings.Snapshot, settings.Store.Compression)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		return store, nil
	}
	return file.NewStateStore(dataDir, settings.Store.Compression), nil
}

// Close releases the ledger and AI clients.
func (a *app) Close() error {
	var errs []error
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	if a.aiCache != nil {
		errs = append(errs, a.aiCache.Close())
	}
	return errors.Join(errs...)
}
