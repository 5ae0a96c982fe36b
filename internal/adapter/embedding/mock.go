package embedding

import "fmt"

// MockEmbedder produces deterministic vectors from the input text,
// useful for tests and offline runs. Identical texts always map to
// identical vectors.
type MockEmbedder struct {
	dimension int
	failOn    map[string]bool
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		dimension: dimension,
		failOn:    make(map[string]bool),
	}
}

// FailOn makes Embed return an error whenever the given text appears in
// a batch.
func (e *MockEmbedder) FailOn(text string) {
	e.failOn[text] = true
}

// Embed projects each rune of the text onto one vector component.
func (e *MockEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if e.failOn[text] {
			return nil, fmt.Errorf("mock embedder: configured failure for %q", text)
		}
		embeddings[i] = make([]float32, e.dimension)
		for j, r := range text {
			if j < e.dimension {
				embeddings[i][j] = float32(r) / 1000.0
			}
		}
	}
	return embeddings, nil
}

// Dimension returns the configured dimension.
func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns "mock".
func (e *MockEmbedder) ModelName() string {
	return "mock"
}
