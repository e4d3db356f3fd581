// Package file persists the vector store to a local directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/ragstore/internal/adapters/driven/storage/codec"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// File names inside the storage directory.
const (
	IndexFile    = "index.bin"
	MetadataFile = "metadata.json"
)

// StateStore keeps index.bin and metadata.json in one directory.
// Each file is replaced atomically with a temp file and rename.
type StateStore struct {
	dir         string
	compression domain.Compression
}

// NewStateStore creates a store rooted at dir. The directory is created on first save.
func NewStateStore(dir string, compression domain.Compression) *StateStore {
	return &StateStore{dir: dir, compression: compression}
}

// Location returns the storage directory.
func (s *StateStore) Location() string {
	return s.dir
}

// Load reads both files. It returns (nil, nil) when either file is missing.
func (s *StateStore) Load(ctx context.Context) (*driven.PersistedState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexData, err := os.ReadFile(filepath.Join(s.dir, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IndexFile, err)
	}

	metaData, err := os.ReadFile(filepath.Join(s.dir, MetadataFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", MetadataFile, err)
	}

	dim, vectors, err := codec.DecodeIndex(indexData)
	if err != nil {
		return nil, err
	}
	records, err := codec.DecodeMetadata(metaData)
	if err != nil {
		return nil, err
	}

	return &driven.PersistedState{Dimension: dim, Vectors: vectors, Records: records}, nil
}

// Save writes the index first and the metadata second.
func (s *StateStore) Save(ctx context.Context, state *driven.PersistedState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	indexData, err := codec.EncodeIndex(state.Dimension, state.Vectors, s.compression)
	if err != nil {
		return err
	}
	metaData, err := codec.EncodeMetadata(state.Records)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, IndexFile), indexData); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, MetadataFile), metaData)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
