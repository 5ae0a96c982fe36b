package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorIndex stores embedding vectors keyed by document id and answers
// nearest-neighbor queries.
type VectorIndex interface {
	// Rebuild clears all prior state and indexes the given items.
	// Callers never observe a partially rebuilt index.
	Rebuild(items []IndexItem) error

	// Query embeds the text and returns the k nearest stored items,
	// similarity descending, ties broken by insertion order.
	Query(text string, k int) ([]IndexHit, error)

	// Clear removes all stored vectors.
	Clear() error

	// Count returns the number of stored vectors.
	Count() int
}

// IndexItem is one document to index.
type IndexItem struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// IndexHit is one query result. Score is 1 - distance; callers treat it
// as an opaque [0,1]-ish similarity, higher is closer.
type IndexHit struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]string
}
