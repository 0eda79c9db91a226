// Package similarity implements a brute-force cosine similarity index over
// entry embeddings, persisted as a single JSON snapshot.
package similarity

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Metadata is denormalized entry data kept next to each vector.
type Metadata struct {
	EntryType string `json:"entry_type"`
	Tags      string `json:"tags"`
}

type Record struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	Metadata  Metadata  `json:"metadata"`

	magnitude float32
}

// Match is a query hit; smaller Distance means closer.
type Match struct {
	ID       uint    `json:"id"`
	Distance float32 `json:"distance"`
}

type snapshot struct {
	Records []Record `json:"records"`
}

// Index keeps every record in memory and rewrites the snapshot file on each
// mutation. Mutations are serialized; queries share a read lock.
type Index struct {
	mu      sync.RWMutex
	path    string
	records map[uint]*Record
	order   []uint
}

// NewIndex returns an empty index backed by path. An empty path keeps the
// index in memory only.
func NewIndex(path string) *Index {
	return &Index{
		path:    path,
		records: make(map[uint]*Record),
	}
}

// Open creates an index and loads any existing snapshot from path.
func Open(path string) (*Index, error) {
	idx := NewIndex(path)
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Load replaces the in-memory state with the snapshot on disk. A missing
// file yields an empty index. A malformed file is logged and the index is
// reset to empty instead of failing.
func (i *Index) Load() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.records = make(map[uint]*Record)
	i.order = nil

	if i.path == "" {
		return nil
	}

	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read index file: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[INDEX] Malformed index file %s, starting empty: %v", i.path, err)
		return nil
	}

	for _, rec := range snap.Records {
		i.put(rec)
	}
	log.Printf("[INDEX] Loaded %d vectors from %s", len(i.order), i.path)
	return nil
}

// Upsert stores or replaces the record for id and persists before returning.
// A replaced record keeps its original position for tie-breaking.
func (i *Index) Upsert(id uint, content string, embedding []float32, meta Metadata) error {
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	i.mu.Lock()
	defer i.mu.Unlock()

	i.put(Record{ID: id, Content: content, Embedding: vec, Metadata: meta})
	return i.persistLocked()
}

// Remove deletes the record for id. Absent ids are a no-op.
func (i *Index) Remove(id uint) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.records[id]; !ok {
		return nil
	}
	delete(i.records, id)
	for n, existing := range i.order {
		if existing == id {
			i.order = append(i.order[:n], i.order[n+1:]...)
			break
		}
	}
	return i.persistLocked()
}

// Reset replaces the whole index with records, in the given order.
func (i *Index) Reset(records []Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.records = make(map[uint]*Record, len(records))
	i.order = make([]uint, 0, len(records))
	for _, rec := range records {
		rec.Embedding = append([]float32(nil), rec.Embedding...)
		i.put(rec)
	}
	return i.persistLocked()
}

// Query ranks every stored vector by cosine distance to embedding and returns
// the k closest. Ties keep insertion order. An empty index or k <= 0 gives an
// empty result.
func (i *Index) Query(embedding []float32, k int) []Match {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if k <= 0 || len(i.order) == 0 {
		return []Match{}
	}

	qm := magnitude(embedding)
	matches := make([]Match, 0, len(i.order))
	for _, id := range i.order {
		rec := i.records[id]
		matches = append(matches, Match{
			ID:       id,
			Distance: cosineDistance(embedding, rec.Embedding, qm, rec.magnitude),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

// Get returns a copy of the record stored for id.
func (i *Index) Get(id uint) (Record, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rec, ok := i.records[id]
	if !ok {
		return Record{}, false
	}
	out := *rec
	out.Embedding = append([]float32(nil), rec.Embedding...)
	return out, true
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.order)
}

func (i *Index) put(rec Record) {
	rec.magnitude = magnitude(rec.Embedding)
	if _, exists := i.records[rec.ID]; !exists {
		i.order = append(i.order, rec.ID)
	}
	stored := rec
	i.records[rec.ID] = &stored
}

// persistLocked writes the snapshot through a temp file and rename so a crash
// never leaves a half-written index. Callers hold the write lock.
func (i *Index) persistLocked() error {
	if i.path == "" {
		return nil
	}

	snap := snapshot{Records: make([]Record, 0, len(i.order))}
	for _, id := range i.order {
		snap.Records = append(snap.Records, *i.records[id])
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	dir := filepath.Dir(i.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(i.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmpName, i.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}
