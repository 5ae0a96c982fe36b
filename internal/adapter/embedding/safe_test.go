package embedding

import "testing"

func TestSafeEmbedderSubstitutesZeroVectors(t *testing.T) {
	mock := NewMockEmbedder(8)
	mock.FailOn("broken")
	safe := NewSafeEmbedder(mock)

	vectors, err := safe.Embed([]string{"fine", "broken", "also fine"})
	if err != nil {
		t.Fatalf("Embed() error = %v, want none", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vectors))
	}

	for i, v := range vectors {
		if len(v) != 8 {
			t.Errorf("vector %d has dimension %d, want 8", i, len(v))
		}
	}

	for _, x := range vectors[1] {
		if x != 0 {
			t.Fatalf("failed text got non-zero vector: %v", vectors[1])
		}
	}

	nonZero := false
	for _, x := range vectors[0] {
		if x != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Error("successful text got a zero vector")
	}
}

func TestSafeEmbedderPassthrough(t *testing.T) {
	safe := NewSafeEmbedder(NewMockEmbedder(16))
	if safe.Dimension() != 16 {
		t.Errorf("Dimension() = %d, want 16", safe.Dimension())
	}
	if safe.ModelName() != "mock" {
		t.Errorf("ModelName() = %q, want mock", safe.ModelName())
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	mock := NewMockEmbedder(32)
	a, err := mock.Embed([]string{"same text"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := mock.Embed([]string{"same text"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("identical texts produced different vectors at %d", i)
		}
	}
}
