package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
	"github.com/custodia-labs/ragstore/internal/normalisers/html"
	"github.com/custodia-labs/ragstore/internal/normalisers/markdown"
	"github.com/custodia-labs/ragstore/internal/normalisers/plaintext"
)

func newLoader(opts ...Option) *Loader {
	return New([]driven.Normaliser{plaintext.New(), markdown.New(), html.New()}, opts...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "plain text")
	writeFile(t, filepath.Join(dir, "b.md"), "# Title\n\nSome **bold** words")
	writeFile(t, filepath.Join(dir, "nested", "c.html"), "<html><body><p>Hello</p></body></html>")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "secret")
	writeFile(t, filepath.Join(dir, ".git", "config"), "ignored")
	writeFile(t, filepath.Join(dir, "report.pdf"), "%PDF-1.4")

	result, err := newLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, result.Documents, 3)
	assert.Equal(t, filepath.Join(dir, "a.txt"), result.Documents[0].Source)
	assert.Equal(t, "plain text", result.Documents[0].Content)
	assert.Equal(t, "text/markdown", result.Documents[1].MIMEType)
	assert.Equal(t, "Title", result.Documents[1].Title)
	assert.NotContains(t, result.Documents[1].Content, "**")
	assert.Equal(t, filepath.Join(dir, "nested", "c.html"), result.Documents[2].Source)
	assert.Equal(t, "Hello", result.Documents[2].Content)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), result.Failures[0].Source)
	assert.Contains(t, result.Failures[0].Error, domain.ErrUnsupportedType.Error())
}

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.csv")
	writeFile(t, path, "a,b\n1,2")

	result, err := newLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, path, result.Documents[0].Source)
	assert.Equal(t, "text/csv", result.Documents[0].MIMEType)
	assert.Empty(t, result.Failures)
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := newLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoad_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader().Load(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_PriorityWins(t *testing.T) {
	l := newLoader()
	_, isHTML := l.normalisers["text/html"].(*html.Normaliser)
	assert.True(t, isHTML)
	assert.True(t, l.Supports("x.md"))
	assert.False(t, l.Supports("x.xlsx"))
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename     string
		expectedMIME string
	}{
		{"file", "text/plain"},
		{"notes.txt", "text/plain"},
		{"data.csv", "text/csv"},
		{"data.json", "application/json"},
		{"doc.md", "text/markdown"},
		{"FILE.MD", "text/markdown"},
		{"page.htm", "text/html"},
		{"page.html", "text/html"},
		{"doc.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"sheet.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"doc.pdf", "application/pdf"},
		{"File.Yaml", "text/yaml"},
		{"file.zzzzunknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expectedMIME, detectMIMEType(tt.filename))
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".git"))
	assert.True(t, isHidden(".env"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
	assert.False(t, isHidden("file.txt"))
	assert.False(t, isHidden(""))
}

func TestWatch_ReportsNewFiles(t *testing.T) {
	dir := t.TempDir()
	l := newLoader(WithDebounce(50 * time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, dir, func(paths []string) { got <- paths })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "new.txt"), "fresh")
	writeFile(t, filepath.Join(dir, ".ignored"), "hidden")

	select {
	case paths := <-got:
		assert.Equal(t, []string{filepath.Join(dir, "new.txt")}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch callback")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := newLoader().Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), func([]string) {})
	assert.Error(t, err)
}
