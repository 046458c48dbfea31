package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyValueStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	ctx := context.Background()

	first, err := NewFileKeyValueStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "session:a:user", []byte(`{"id":"user-1"}`)))
	require.NoError(t, first.Set(ctx, "session:b:user", []byte(`{"id":"user-2"}`)))
	require.NoError(t, first.Delete(ctx, "session:b:user"))

	second, err := NewFileKeyValueStore(path)
	require.NoError(t, err)

	v, err := second.Get(ctx, "session:a:user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"user-1"}`, string(v))

	_, err = second.Get(ctx, "session:b:user")
	assert.True(t, IsNotFound(err))

	keys, err := second.Keys(ctx, "session:")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a:user"}, keys)
}

func TestFileKeyValueStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	s, err := NewFileKeyValueStore(path)
	require.NoError(t, err)
	keys, _ := s.Keys(context.Background(), "")
	assert.Empty(t, keys)
}

func TestFileKeyValueStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileKeyValueStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestFileKeyValueStore_DeleteMissing(t *testing.T) {
	s, err := NewFileKeyValueStore(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)
	assert.NoError(t, s.Delete(context.Background(), "absent"))
}
