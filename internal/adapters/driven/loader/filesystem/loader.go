// Package filesystem loads documents from local files and directories
// and watches directories for new or changed files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// DefaultDebounce is how long Watch waits for events to settle before reporting.
const DefaultDebounce = 500 * time.Millisecond

// Loader reads files and converts them to documents through normalisers.
type Loader struct {
	normalisers map[string]driven.Normaliser
	debounce    time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithDebounce sets the Watch debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// New creates a loader. For each MIME type the normaliser with the highest
// priority wins.
func New(normalisers []driven.Normaliser, opts ...Option) *Loader {
	l := &Loader{
		normalisers: make(map[string]driven.Normaliser),
		debounce:    DefaultDebounce,
	}
	for _, n := range normalisers {
		for _, mt := range n.SupportedMIMETypes() {
			if cur, ok := l.normalisers[mt]; !ok || n.Priority() > cur.Priority() {
				l.normalisers[mt] = n
			}
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Supports reports whether a normaliser exists for the file's type.
func (l *Loader) Supports(path string) bool {
	_, ok := l.normalisers[detectMIMEType(path)]
	return ok
}

// Load reads path, which may be a file or a directory. Directories are walked
// recursively in lexical order, skipping hidden entries. A file that cannot be
// read or normalised is recorded as a failure.
func (l *Loader) Load(ctx context.Context, path string) (*driven.LoadResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	result := &driven.LoadResult{}
	if !info.IsDir() {
		l.loadInto(ctx, abs, result)
		return result, nil
	}

	logger.Section("Loading Documents")
	logger.Debug("Walking %s", abs)

	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			result.Failures = append(result.Failures, domain.IngestFailure{Source: p, Error: walkErr.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p != abs && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		l.loadInto(ctx, p, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	logger.Info("Loaded %d documents, %d failures", len(result.Documents), len(result.Failures))
	return result, nil
}

// loadInto loads one file, appending either a document or a failure.
func (l *Loader) loadInto(ctx context.Context, path string, result *driven.LoadResult) {
	doc, err := l.loadFile(ctx, path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		result.Failures = append(result.Failures, domain.IngestFailure{Source: path, Error: err.Error()})
		return
	}
	result.Documents = append(result.Documents, *doc)
}

func (l *Loader) loadFile(ctx context.Context, path string) (*domain.Document, error) {
	mimeType := detectMIMEType(path)
	normaliser, ok := l.normalisers[mimeType]
	if !ok {
		return nil, fmt.Errorf("%s: %w", mimeType, domain.ErrUnsupportedType)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	doc, err := normaliser.Normalise(ctx, &domain.RawDocument{
		Source:   path,
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}
	return doc, nil
}

// Watch reports created or written files under dir until ctx is cancelled.
// Events are collected for the debounce interval and delivered as one sorted
// batch. New subdirectories are watched as they appear.
func (l *Loader) Watch(ctx context.Context, dir string, fn func(paths []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := addRecursive(watcher, root); err != nil {
		return err
	}
	logger.Debug("Watching %s", root)

	pending := make(map[string]struct{})
	timer := time.NewTimer(l.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if p := l.handleEvent(watcher, event); p != "" {
				pending[p] = struct{}{}
				timer.Reset(l.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			fn(paths)
		}
	}
}

// handleEvent returns the path to report for an event, or "" to ignore it.
func (l *Loader) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) string {
	if isHidden(filepath.Base(event.Name)) {
		return ""
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := addRecursive(watcher, event.Name); err != nil {
				logger.Warn("Watch %s: %v", event.Name, err)
			}
		}
		return ""
	}
	if !info.Mode().IsRegular() {
		return ""
	}
	return event.Name
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// isHidden reports whether a file or directory name is hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// mimeOverrides covers extensions the platform MIME table may lack or report differently.
var mimeOverrides = map[string]string{
	".txt":      "text/plain",
	".csv":      "text/csv",
	".json":     "application/json",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pdf":      "application/pdf",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".sql":      "text/x-sql",
	".xml":      "application/xml",
}

// detectMIMEType returns the MIME type for a path without parameters.
// Files without an extension are treated as plain text.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if mt, ok := mimeOverrides[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return strings.TrimSpace(mt)
	}
	return "application/octet-stream"
}
