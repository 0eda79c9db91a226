package similarity

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/phrasebook/internal/embedding"
)

func TestIndex_QueryEmpty(t *testing.T) {
	idx := NewIndex("")

	for _, k := range []int{0, 1, 10} {
		matches := idx.Query([]float32{1, 0, 0}, k)
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	}
	assert.Empty(t, idx.Query(nil, 3))
}

func TestIndex_QueryRanking(t *testing.T) {
	idx := NewIndex("")

	require.NoError(t, idx.Upsert(1, "east", []float32{1, 0}, Metadata{EntryType: "word"}))
	require.NoError(t, idx.Upsert(2, "north", []float32{0, 1}, Metadata{EntryType: "word"}))
	require.NoError(t, idx.Upsert(3, "north-east", []float32{1, 1}, Metadata{EntryType: "word"}))

	matches := idx.Query([]float32{1, 0.1}, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, uint(1), matches[0].ID)
	assert.Equal(t, uint(3), matches[1].ID)
	assert.Equal(t, uint(2), matches[2].ID)
	assert.True(t, matches[0].Distance <= matches[1].Distance)
	assert.True(t, matches[1].Distance <= matches[2].Distance)

	top := idx.Query([]float32{1, 0.1}, 1)
	require.Len(t, top, 1)
	assert.Equal(t, uint(1), top[0].ID)
}

func TestIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx := NewIndex("")

	require.NoError(t, idx.Upsert(7, "a", []float32{1, 0}, Metadata{}))
	require.NoError(t, idx.Upsert(3, "b", []float32{2, 0}, Metadata{}))
	require.NoError(t, idx.Upsert(5, "c", []float32{3, 0}, Metadata{}))
	// Replacing keeps the original slot.
	require.NoError(t, idx.Upsert(7, "a2", []float32{4, 0}, Metadata{}))

	matches := idx.Query([]float32{1, 0}, 3)
	require.Len(t, matches, 3)
	assert.Equal(t, []uint{7, 3, 5}, []uint{matches[0].ID, matches[1].ID, matches[2].ID})

	rec, ok := idx.Get(7)
	require.True(t, ok)
	assert.Equal(t, "a2", rec.Content)
	assert.Equal(t, 3, idx.Len())
}

func TestIndex_ZeroVectors(t *testing.T) {
	idx := NewIndex("")

	require.NoError(t, idx.Upsert(1, "zero", []float32{0, 0, 0}, Metadata{}))
	require.NoError(t, idx.Upsert(2, "one", []float32{1, 0, 0}, Metadata{}))

	matches := idx.Query([]float32{0, 0, 0}, 2)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, float32(1), m.Distance)
	}

	matches = idx.Query([]float32{1, 0, 0}, 2)
	assert.Equal(t, uint(2), matches[0].ID)
	assert.Equal(t, float32(1), matches[1].Distance)
}

func TestIndex_SelfSimilarity(t *testing.T) {
	idx := NewIndex("")
	embedder := embedding.NewHashEmbedder(0)

	texts := []string{"serendipity", "ephemeral", "a happy accident", "quixotic"}
	for n, text := range texts {
		require.NoError(t, idx.Upsert(uint(n+1), text, embedder.Embed(text), Metadata{}))
	}

	for n, text := range texts {
		matches := idx.Query(embedder.Embed(text), 1)
		require.Len(t, matches, 1)
		assert.Equal(t, uint(n+1), matches[0].ID)
		assert.InDelta(t, 0, matches[0].Distance, 1e-5)
	}
}

func TestIndex_Remove(t *testing.T) {
	idx := NewIndex("")

	require.NoError(t, idx.Upsert(1, "a", []float32{1, 0}, Metadata{}))
	require.NoError(t, idx.Upsert(2, "b", []float32{0, 1}, Metadata{}))

	require.NoError(t, idx.Remove(1))
	require.NoError(t, idx.Remove(42))

	assert.Equal(t, 1, idx.Len())
	_, ok := idx.Get(1)
	assert.False(t, ok)

	matches := idx.Query([]float32{1, 0}, 5)
	require.Len(t, matches, 1)
	assert.Equal(t, uint(2), matches[0].ID)
}

func TestIndex_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors", "vectors.json")

	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(10, "first", []float32{1, 2, 3}, Metadata{EntryType: "word", Tags: "noun,vocabulary"}))
	require.NoError(t, idx.Upsert(20, "second", []float32{3, 2, 1}, Metadata{EntryType: "sentence"}))
	require.NoError(t, idx.Remove(10))
	require.NoError(t, idx.Upsert(30, "third", []float32{1, 1, 1}, Metadata{}))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	rec, ok := reopened.Get(20)
	require.True(t, ok)
	assert.Equal(t, "second", rec.Content)
	assert.Equal(t, []float32{3, 2, 1}, rec.Embedding)
	assert.Equal(t, "sentence", rec.Metadata.EntryType)

	matches := reopened.Query([]float32{1, 1, 1}, 2)
	require.Len(t, matches, 2)
	assert.Equal(t, uint(30), matches[0].ID)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestIndex_LoadMalformedResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	idx, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Query([]float32{1}, 3))

	// The next mutation overwrites the corrupt file.
	require.NoError(t, idx.Upsert(1, "fresh", []float32{1}, Metadata{}))
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
}

func TestIndex_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.json")
	idx := NewIndex(path)
	require.NoError(t, idx.Upsert(99, "stale", []float32{1, 0}, Metadata{}))

	require.NoError(t, idx.Reset([]Record{
		{ID: 1, Content: "a", Embedding: []float32{1, 0}},
		{ID: 2, Content: "b", Embedding: []float32{0, 1}},
	}))

	assert.Equal(t, 2, idx.Len())
	_, ok := idx.Get(99)
	assert.False(t, ok)

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	idx := NewIndex(filepath.Join(t.TempDir(), "vectors.json"))
	embedder := embedding.NewHashEmbedder(0)

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(2)
		go func(id uint) {
			defer wg.Done()
			assert.NoError(t, idx.Upsert(id, "text", embedder.Embed(string(rune('a'+id))), Metadata{}))
		}(uint(n))
		go func() {
			defer wg.Done()
			idx.Query(embedder.Embed("probe"), 5)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, idx.Len())
}
