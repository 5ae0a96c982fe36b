package embedding

import (
	"log"

	"marks/internal/port"
)

// SafeEmbedder wraps an Embedder so that a backend failure for any
// single text yields a zero vector of the expected dimension instead of
// an error. Callers must tolerate degraded zero vectors; they read as
// "ambiguous/unknown" and score near zero against everything.
type SafeEmbedder struct {
	inner port.Embedder
}

// NewSafeEmbedder wraps the given embedder.
func NewSafeEmbedder(inner port.Embedder) *SafeEmbedder {
	return &SafeEmbedder{inner: inner}
}

// Embed never returns an error; failed texts get zero vectors.
func (e *SafeEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vecs, err := e.inner.Embed([]string{text})
		if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
			if err != nil {
				log.Printf("embedding failed, substituting zero vector: %v", err)
			}
			embeddings = append(embeddings, make([]float32, e.inner.Dimension()))
			continue
		}
		embeddings = append(embeddings, vecs[0])
	}
	return embeddings, nil
}

// Dimension returns the wrapped embedder's dimension.
func (e *SafeEmbedder) Dimension() int {
	return e.inner.Dimension()
}

// ModelName returns the wrapped embedder's model name.
func (e *SafeEmbedder) ModelName() string {
	return e.inner.ModelName()
}
