package store

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"marks/internal/port"
)

// MemoryVectorIndex is an in-memory nearest-neighbor store. Rebuild
// assembles a complete replacement and swaps it in, so readers never
// observe a partially built index. Search is brute-force cosine, which
// is plenty for personal-collection sizes.
type MemoryVectorIndex struct {
	embedder port.Embedder

	mu      sync.RWMutex
	entries []indexEntry
}

type indexEntry struct {
	id       string
	vector   []float32
	text     string
	metadata map[string]string
}

// NewMemoryVectorIndex creates an empty index over the given embedder.
func NewMemoryVectorIndex(embedder port.Embedder) *MemoryVectorIndex {
	return &MemoryVectorIndex{embedder: embedder}
}

// Rebuild clears prior state, embeds every item's text, and stores the
// results. On embedding failure nothing is replaced and the previous
// contents stay queryable.
func (s *MemoryVectorIndex) Rebuild(items []port.IndexItem) error {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	vectors, err := s.embedder.Embed(texts)
	if err != nil {
		return fmt.Errorf("failed to embed %d items: %w", len(items), err)
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("embedder returned %d vectors for %d items", len(vectors), len(items))
	}

	entries := make([]indexEntry, len(items))
	for i, item := range items {
		entries[i] = indexEntry{
			id:       item.ID,
			vector:   vectors[i],
			text:     item.Text,
			metadata: item.Metadata,
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Query embeds the text and returns the k nearest stored items by
// cosine similarity, descending, ties broken by insertion order.
func (s *MemoryVectorIndex) Query(text string, k int) ([]port.IndexHit, error) {
	vecs, err := s.embedder.Embed([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	query := vecs[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}

	hits := make([]port.IndexHit, 0, len(s.entries))
	for _, e := range s.entries {
		hits = append(hits, port.IndexHit{
			ID:       e.id,
			Score:    CosineSimilarity(query, e.vector),
			Text:     e.text,
			Metadata: e.metadata,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < 0 {
		k = 0
	}
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Clear removes all stored vectors.
func (s *MemoryVectorIndex) Clear() error {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	return nil
}

// Count returns the number of stored vectors.
func (s *MemoryVectorIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CosineSimilarity calculates the cosine similarity between two
// vectors. A zero vector scores 0 against everything.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
