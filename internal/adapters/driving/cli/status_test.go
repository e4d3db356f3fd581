package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragstore/internal/core/domain"
)

func TestStatusCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("status")

	require.NoError(t, err)
	assert.Contains(t, out, "Vectors:    2")
	assert.Contains(t, out, "Documents:  1")
	assert.Contains(t, out, "Dimension:  256")
	assert.Contains(t, out, "Loaded:     yes")
	assert.Contains(t, out, "Embedding:  hash-256")
}

func TestStatusCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("status", "--json")
	require.NoError(t, err)

	var status domain.StoreStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 2, status.Vectors)
	assert.True(t, status.Loaded)
}
