package minio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driven"
)

// memoryObjects is an in-memory objectStore.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errObjectNotFound
	}
	return data, nil
}

func (m *memoryObjects) put(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func testState() *driven.PersistedState {
	return &driven.PersistedState{
		Dimension: 3,
		Vectors:   [][]float32{{1, 0, 0}, {0, 1, 0}},
		Records: []domain.MetadataRecord{
			{Text: "a", Source: "s", DocumentID: "doc_s", ChunkID: "doc_s_chunk_0000", TotalChunks: 2},
			{Text: "b", Source: "s", DocumentID: "doc_s", ChunkID: "doc_s_chunk_0001", ChunkIndex: 1, TotalChunks: 2},
		},
	}
}

func TestStateStore_SaveAndLoad(t *testing.T) {
	objects := newMemoryObjects()
	store := newStateStore(objects, "bucket", "ragstore", domain.CompressionZstd)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testState()))

	assert.Contains(t, objects.objects, "ragstore/index.bin")
	assert.Contains(t, objects.objects, "ragstore/metadata.json")
	assert.Equal(t, "application/json", objects.types["ragstore/metadata.json"])

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testState(), loaded)
}

func TestStateStore_LoadMissing(t *testing.T) {
	store := newStateStore(newMemoryObjects(), "bucket", "", domain.CompressionNone)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStateStore_LoadMissingMetadata(t *testing.T) {
	objects := newMemoryObjects()
	store := newStateStore(objects, "bucket", "p", domain.CompressionNone)
	require.NoError(t, store.Save(context.Background(), testState()))
	delete(objects.objects, "p/metadata.json")

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStateStore_SaveError(t *testing.T) {
	objects := newMemoryObjects()
	objects.putErr = errors.New("access denied")
	store := newStateStore(objects, "bucket", "p", domain.CompressionNone)

	err := store.Save(context.Background(), testState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.bin")
}

func TestStateStore_Location(t *testing.T) {
	store := newStateStore(newMemoryObjects(), "docs", "team/ragstore", domain.CompressionNone)
	assert.Equal(t, "s3://docs/team/ragstore", store.Location())
}

func TestNew_RequiresEndpointAndBucket(t *testing.T) {
	_, err := New(context.Background(), domain.SnapshotSettings{}, domain.CompressionZstd)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// TestStateStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestStateStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	store, err := New(ctx, domain.SnapshotSettings{
		Endpoint:  "localhost:9000",
		Bucket:    "ragstore-test",
		Prefix:    "it",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}, domain.CompressionLZ4)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	require.NoError(t, store.Save(ctx, testState()))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testState(), loaded)
}
