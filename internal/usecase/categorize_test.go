package usecase

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"marks/internal/adapter/bookmarkfs"
	"marks/internal/domain"
	"marks/internal/port"
)

func newCategorizerFixture(hits []port.IndexHit) (*Categorizer, *SimilarityService) {
	index := &stubIndex{hits: hits}
	service := NewSimilarityService(index)
	service.SetBookmarks(testBookmarks())
	loader := bookmarkfs.NewLoader(nil, nil)
	return NewCategorizer(service, loader), service
}

func TestSuggestCategoriesNormalizesConfidence(t *testing.T) {
	// Two hits from go.json (0.9 + 0.8) and one from cooking.json (0.7):
	// go.json sums to 1.7 and normalizes to exactly 1.0, cooking.json to
	// 0.7/1.7.
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0.9),
		{ID: "https://go.dev/blog/context", Score: 0.8, Metadata: map[string]string{
			"url": "https://go.dev/blog/context", "title": "Context", "source_file": "go.json",
		}},
		hit("https://example.com/bread", 0.7),
	}
	categorizer, _ := newCategorizerFixture(hits)

	candidate := domain.Bookmark{URL: "https://new.com", Title: "Go Generics", Description: "Type parameters"}
	suggestions := categorizer.SuggestCategories(candidate, 5)
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(suggestions), suggestions)
	}

	if suggestions[0].Category != "go.json" {
		t.Errorf("top category = %q, want go.json", suggestions[0].Category)
	}
	if suggestions[0].Confidence != 1.0 {
		t.Errorf("top confidence = %v, want exactly 1.0", suggestions[0].Confidence)
	}

	want := 0.7 / 1.7
	if math.Abs(suggestions[1].Confidence-want) > 1e-9 {
		t.Errorf("second confidence = %v, want %v", suggestions[1].Confidence, want)
	}
}

func TestSuggestCategoriesTruncates(t *testing.T) {
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0.9),
		hit("https://example.com/bread", 0.8),
		hit("https://example.com/trails", 0.7),
	}
	categorizer, _ := newCategorizerFixture(hits)

	candidate := domain.Bookmark{Title: "Something"}
	suggestions := categorizer.SuggestCategories(candidate, 1)
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(suggestions))
	}
	if suggestions[0].Category != "go.json" {
		t.Errorf("kept category = %q, want the highest-scoring one", suggestions[0].Category)
	}
}

func TestSuggestCategoriesAllZeroScores(t *testing.T) {
	// A dead embedding backend degrades to zero vectors, which cosine
	// scores as 0 against everything. That must read as "no suggestion",
	// not a division by zero.
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0),
		hit("https://example.com/bread", 0),
	}
	categorizer, _ := newCategorizerFixture(hits)

	candidate := domain.Bookmark{Title: "Anything"}
	if got := categorizer.SuggestCategories(candidate, 3); got != nil {
		t.Errorf("SuggestCategories() with all-zero scores = %+v, want nil", got)
	}
}

func TestSuggestCategoriesDropsZeroScoreCategories(t *testing.T) {
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0.9),
		hit("https://example.com/bread", 0),
	}
	categorizer, _ := newCategorizerFixture(hits)

	suggestions := categorizer.SuggestCategories(domain.Bookmark{Title: "x"}, 5)
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want only the positive-score category: %+v", len(suggestions), suggestions)
	}
	if suggestions[0].Category != "go.json" || suggestions[0].Confidence != 1.0 {
		t.Errorf("suggestion = %+v, want go.json at 1.0", suggestions[0])
	}
	for _, s := range suggestions {
		if s.Confidence <= 0 || s.Confidence > 1 {
			t.Errorf("confidence %v for %s outside (0, 1]", s.Confidence, s.Category)
		}
	}
}

func TestSuggestCategoriesEmptyIndex(t *testing.T) {
	categorizer, _ := newCategorizerFixture(nil)
	candidate := domain.Bookmark{Title: "Anything"}
	if got := categorizer.SuggestCategories(candidate, 3); got != nil {
		t.Errorf("SuggestCategories() with no hits = %+v, want nil", got)
	}
}

func TestFindCategoryCandidatesThreshold(t *testing.T) {
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0.9),
		hit("https://example.com/bread", 0.5),
	}
	categorizer, _ := newCategorizerFixture(hits)

	candidates := categorizer.FindCategoryCandidates("programming", 5, 0.8)
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 above threshold: %+v", len(candidates), candidates)
	}
	if candidates[0].Bookmark.URL != "https://go.dev/blog/pipelines" {
		t.Errorf("candidate = %s", candidates[0].Bookmark.URL)
	}
	if candidates[0].Score != 0.9 {
		t.Errorf("score = %v, want 0.9", candidates[0].Score)
	}
}

func TestFindCategoryCandidatesFallbackBelowThreshold(t *testing.T) {
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0.4),
		hit("https://example.com/bread", 0.3),
	}
	categorizer, _ := newCategorizerFixture(hits)

	// Nothing clears the bar, so the top matches come back anyway.
	candidates := categorizer.FindCategoryCandidates("programming", 5, 0.8)
	if len(candidates) != 2 {
		t.Fatalf("got %d fallback candidates, want 2: %+v", len(candidates), candidates)
	}
	if candidates[0].Score != 0.4 {
		t.Errorf("top fallback score = %v, want 0.4", candidates[0].Score)
	}
}

func TestFindCategoryCandidatesExcludesTargetCategory(t *testing.T) {
	hits := []port.IndexHit{
		hit("https://go.dev/blog/pipelines", 0.9),
		hit("https://example.com/bread", 0.85),
	}
	categorizer, _ := newCategorizerFixture(hits)

	// go.json bookmarks are already in the target category.
	candidates := categorizer.FindCategoryCandidates("go", 5, 0.8)
	for _, c := range candidates {
		if filepath.Base(c.Bookmark.SourceFile) == "go.json" {
			t.Errorf("candidate already in target category: %+v", c)
		}
	}
	if len(candidates) != 1 {
		t.Errorf("got %d candidates, want 1 from other categories", len(candidates))
	}
}

func TestMoveBookmarksToCategory(t *testing.T) {
	dir := t.TempDir()
	loader := bookmarkfs.NewLoader(nil, nil)

	source := []domain.Bookmark{
		{URL: "https://move.example.com", Title: "Mover", Type: "link"},
		{URL: "https://stay.example.com", Title: "Stayer", Type: "link"},
	}
	if err := loader.SaveFile(source, filepath.Join(dir, "misc.json")); err != nil {
		t.Fatal(err)
	}

	service := NewSimilarityService(&stubIndex{})
	loaded, err := loader.Load(filepath.Join(dir, "misc.json"))
	if err != nil {
		t.Fatal(err)
	}
	service.SetBookmarks(loaded)
	categorizer := NewCategorizer(service, loader)

	toMove := []domain.Bookmark{loaded[0]}
	if err := categorizer.MoveBookmarksToCategory(toMove, "target", dir); err != nil {
		t.Fatalf("MoveBookmarksToCategory() error = %v", err)
	}

	target, err := loader.LoadFile(filepath.Join(dir, "target.json"))
	if err != nil {
		t.Fatalf("target category not created: %v", err)
	}
	if len(target) != 1 || target[0].URL != "https://move.example.com" {
		t.Errorf("target.json contents = %+v", target)
	}

	misc, err := loader.LoadFile(filepath.Join(dir, "misc.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(misc) != 1 || misc[0].URL != "https://stay.example.com" {
		t.Errorf("misc.json contents = %+v", misc)
	}

	// The in-memory collection reflects the move.
	for _, b := range service.Bookmarks() {
		if b.URL == "https://move.example.com" && b.SourceFile != "target.json" {
			t.Errorf("moved bookmark still tagged %s", b.SourceFile)
		}
	}
}

func TestCreateCategory(t *testing.T) {
	dir := t.TempDir()
	loader := bookmarkfs.NewLoader(nil, nil)
	service := NewSimilarityService(&stubIndex{})
	categorizer := NewCategorizer(service, loader)

	if err := categorizer.CreateCategory("reading-list", dir); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	path := filepath.Join(dir, "reading-list.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("category file missing: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("category file content = %q, want empty array", data)
	}

	if err := categorizer.CreateCategory("reading-list", dir); err == nil {
		t.Error("CreateCategory() of existing category, want error")
	}
}

func TestCategoryFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cooking", "cooking.json"},
		{"cooking.json", "cooking.json"},
		{"cooking.csv", "cooking.csv"},
		{"3d-printing", "3d-printing.json"},
	}
	for _, tt := range tests {
		if got := CategoryFilename(tt.in); got != tt.want {
			t.Errorf("CategoryFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cooking.json", "cooking"},
		{"cooking.csv", "cooking"},
		{"cooking", "cooking"},
	}
	for _, tt := range tests {
		if got := CategoryDisplayName(tt.in); got != tt.want {
			t.Errorf("CategoryDisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
