package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestStore(t *testing.T, tuplesLimit int) *ChunkStorageEngine {
	t.Helper()
	store, err := NewChunkStore(filepath.Join(t.TempDir(), "coll"), tuplesLimit, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.EnsureDirectory())
	return store
}

func TestNewChunkStoreRejectsBadLimit(t *testing.T) {
	_, err := NewChunkStore("dir", 0, testLogger())
	assert.Error(t, err)
	_, err = NewChunkStore("dir", -3, testLogger())
	assert.Error(t, err)
}

func TestEnsureDirectoryCreatesEmptyFirstChunk(t *testing.T) {
	store := newTestStore(t, 2)

	data, err := os.ReadFile(filepath.Join(store.Directory, "1.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	// A second call leaves the existing directory alone.
	require.NoError(t, store.SaveChunk(1, bson.D{{Key: "x", Value: bson.D{}}}))
	require.NoError(t, store.EnsureDirectory())
	chunk, err := store.LoadChunk(1)
	require.NoError(t, err)
	assert.Len(t, chunk, 1)
}

func TestChunkIndexesMissingDirectory(t *testing.T) {
	store, err := NewChunkStore(filepath.Join(t.TempDir(), "nope"), 2, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []int{1}, store.ChunkIndexes())
	_, statErr := os.Stat(store.Directory)
	assert.True(t, os.IsNotExist(statErr), "listing must not create the directory")
}

func TestChunkIndexesSortsAndIgnoresStrays(t *testing.T) {
	store := newTestStore(t, 2)

	require.NoError(t, os.WriteFile(filepath.Join(store.Directory, "10.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Directory, "2.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Directory, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Directory, "x.json"), []byte("{}"), 0644))

	assert.Equal(t, []int{1, 2, 10}, store.ChunkIndexes())
}

func TestLoadChunkMissingAndEmpty(t *testing.T) {
	store := newTestStore(t, 2)

	chunk, err := store.LoadChunk(7)
	require.NoError(t, err)
	assert.Empty(t, chunk)

	require.NoError(t, os.WriteFile(store.chunkPath(3), nil, 0644))
	chunk, err = store.LoadChunk(3)
	require.NoError(t, err)
	assert.Empty(t, chunk)
}

func TestLoadChunkCorruptReadsEmptyButErrors(t *testing.T) {
	store := newTestStore(t, 2)
	require.NoError(t, os.WriteFile(store.chunkPath(1), []byte("{broken"), 0644))

	chunk, err := store.LoadChunk(1)
	assert.ErrorIs(t, err, ErrChunkParse)
	assert.Empty(t, chunk)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t, 2)

	chunk := bson.D{
		{Key: "id1", Value: bson.D{{Key: "_id", Value: "id1"}, {Key: "n", Value: 1}}},
		{Key: "id2", Value: bson.D{{Key: "_id", Value: "id2"}, {Key: "n", Value: 2}}},
	}
	require.NoError(t, store.SaveChunk(1, chunk))

	loaded, err := store.LoadChunk(1)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "id1", loaded[0].Key)
	assert.Equal(t, "id2", loaded[1].Key)

	doc, _ := AsDocument(loaded[0].Value)
	n, _ := DocGet(doc, "n")
	assert.True(t, ValueEqual(1, n))
}

func TestAppendDocumentRollsOverAtLimit(t *testing.T) {
	store := newTestStore(t, 2)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.AppendDocument(id, bson.D{{Key: "n", Value: i}}))
	}

	assert.Equal(t, []int{1, 2}, store.ChunkIndexes())

	first, err := store.LoadChunk(1)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Key)
	assert.Equal(t, "b", first[1].Key)

	second, err := store.LoadChunk(2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].Key)
}

func TestAppendDocumentRefusesCorruptTail(t *testing.T) {
	store := newTestStore(t, 2)
	require.NoError(t, os.WriteFile(store.chunkPath(1), []byte("{broken"), 0644))

	err := store.AppendDocument("a", bson.D{{Key: "n", Value: 1}})
	assert.ErrorIs(t, err, ErrChunkParse)

	// The corrupt file is untouched.
	data, readErr := os.ReadFile(store.chunkPath(1))
	require.NoError(t, readErr)
	assert.Equal(t, "{broken", string(data))
}
