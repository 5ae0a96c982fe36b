package usecase

import (
	"testing"

	"marks/internal/adapter/embedding"
	"marks/internal/adapter/store"
	"marks/internal/domain"
	"marks/internal/port"
)

func TestIsDuplicateExactURLWinsOverTitle(t *testing.T) {
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks([]domain.Bookmark{
		{URL: "https://a.example.com", Title: "Shared Title", SourceFile: "a.json"},
		{URL: "https://b.example.com", Title: "Shared Title", SourceFile: "b.json"},
	})
	detector := NewDuplicateDetector(service, 0)

	// The candidate's URL matches b while its title matches both; the
	// URL stage runs first and must win.
	candidate := domain.Bookmark{URL: "https://b.example.com", Title: "Shared Title"}
	existing, found := detector.IsDuplicate(candidate)
	if !found {
		t.Fatal("IsDuplicate() = false, want true")
	}
	if existing.URL != "https://b.example.com" {
		t.Errorf("matched %s, want the exact-URL match", existing.URL)
	}
}

func TestIsDuplicateNormalizedTitle(t *testing.T) {
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks([]domain.Bookmark{
		{URL: "https://a.example.com", Title: "The Go Blog", SourceFile: "a.json"},
	})
	detector := NewDuplicateDetector(service, 0)

	for _, title := range []string{"the go blog", "  The Go Blog  ", "THE GO BLOG"} {
		candidate := domain.Bookmark{URL: "https://elsewhere.com", Title: title}
		existing, found := detector.IsDuplicate(candidate)
		if !found {
			t.Errorf("IsDuplicate(title=%q) = false, want title match", title)
			continue
		}
		if existing.URL != "https://a.example.com" {
			t.Errorf("IsDuplicate(title=%q) matched %s", title, existing.URL)
		}
	}
}

func TestIsDuplicateContentSimilarity(t *testing.T) {
	index := store.NewMemoryVectorIndex(embedding.NewMockEmbedder(64))
	service := NewSimilarityService(index)
	service.SetBookmarks([]domain.Bookmark{
		{URL: "https://a.example.com", Title: "Go Concurrency Patterns", Description: "Pipelines and cancellation", SourceFile: "a.json"},
		{URL: "https://b.example.com", Title: "Sourdough Basics", Description: "Starter maintenance", SourceFile: "b.json"},
	})
	detector := NewDuplicateDetector(service, 0.85)

	// No URL or title overlap, but the description embeds identically to
	// the first bookmark's indexed text.
	candidate := domain.Bookmark{
		URL:         "https://mirror.example.com",
		Description: "Go Concurrency Patterns Pipelines and cancellation",
	}
	existing, found := detector.IsDuplicate(candidate)
	if !found {
		t.Fatal("IsDuplicate() = false, want content-similarity match")
	}
	if existing.URL != "https://a.example.com" {
		t.Errorf("matched %s, want the content match", existing.URL)
	}
}

func TestIsDuplicateSkipsContentStageWithoutDescription(t *testing.T) {
	index := &stubIndex{hits: []port.IndexHit{hit("https://go.dev/blog/pipelines", 0.99)}}
	service := NewSimilarityService(index)
	service.SetBookmarks(testBookmarks())
	detector := NewDuplicateDetector(service, 0.85)

	// The index would report a confident hit, but a candidate without
	// content never reaches the embedding stage.
	candidate := domain.Bookmark{URL: "https://fresh.example.com", Title: "Brand New"}
	if _, found := detector.IsDuplicate(candidate); found {
		t.Error("IsDuplicate() used the content stage for a description-less candidate")
	}
	if index.rebuilds != 0 {
		t.Errorf("index rebuilt %d times, want 0 when the content stage is skipped", index.rebuilds)
	}
}

func TestIsDuplicateNoMatch(t *testing.T) {
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks(testBookmarks())
	detector := NewDuplicateDetector(service, 0)

	candidate := domain.Bookmark{URL: "https://fresh.example.com", Title: "Brand New"}
	if _, found := detector.IsDuplicate(candidate); found {
		t.Error("IsDuplicate() = true for unrelated bookmark")
	}
}

func TestFindDuplicateGroupsExactURL(t *testing.T) {
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks([]domain.Bookmark{
		{URL: "https://same.com", Title: "From A", SourceFile: "a.json"},
		{URL: "https://same.com", Title: "From B", SourceFile: "b.json"},
		{URL: "https://unique.com", Title: "Alone", SourceFile: "a.json"},
	})
	detector := NewDuplicateDetector(service, 0)

	groups := detector.FindDuplicateGroups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Reason != domain.ReasonExactURL {
		t.Errorf("reason = %q, want %q", g.Reason, domain.ReasonExactURL)
	}
	if g.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", g.Score)
	}
	if len(g.Bookmarks) != 2 {
		t.Errorf("group has %d members, want 2", len(g.Bookmarks))
	}
}

func TestFindDuplicateGroupsNormalizedTitle(t *testing.T) {
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks([]domain.Bookmark{
		{URL: "https://a.com", Title: "Go Blog", SourceFile: "a.json"},
		{URL: "https://b.com", Title: "go blog", SourceFile: "b.json"},
		{URL: "https://c.com", Title: "  GO BLOG  ", SourceFile: "c.json"},
	})
	detector := NewDuplicateDetector(service, 0)

	groups := detector.FindDuplicateGroups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(groups), groups)
	}
	g := groups[0]
	if g.Reason != domain.ReasonSimilarTitle {
		t.Errorf("reason = %q, want %q", g.Reason, domain.ReasonSimilarTitle)
	}
	if g.Score != 0.9 {
		t.Errorf("score = %v, want 0.9", g.Score)
	}
	if len(g.Bookmarks) != 3 {
		t.Errorf("group has %d members, want all 3 title variants", len(g.Bookmarks))
	}
}

func TestFindDuplicateGroupsAreDisjoint(t *testing.T) {
	// Two bookmarks share both URL and title; a third shares only the
	// title. The URL group claims the first two, leaving the title group
	// with a single member, which is not a group.
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks([]domain.Bookmark{
		{URL: "https://same.com", Title: "Shared", SourceFile: "a.json"},
		{URL: "https://same.com", Title: "Shared", SourceFile: "b.json"},
		{URL: "https://other.com", Title: "Shared", SourceFile: "c.json"},
	})
	detector := NewDuplicateDetector(service, 0)

	groups := detector.FindDuplicateGroups()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1: %+v", len(groups), groups)
	}
	if groups[0].Reason != domain.ReasonExactURL {
		t.Errorf("reason = %q, want exact URL group only", groups[0].Reason)
	}

	seen := make(map[string]int)
	for _, g := range groups {
		for _, b := range g.Bookmarks {
			seen[b.URL+"|"+b.SourceFile]++
		}
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("bookmark %s appears in %d groups", key, n)
		}
	}
}

func TestFindDuplicateGroupsEmptyFieldsIgnored(t *testing.T) {
	service := NewSimilarityService(&stubIndex{})
	service.SetBookmarks([]domain.Bookmark{
		{URL: "", Title: "", SourceFile: "a.json"},
		{URL: "", Title: "", SourceFile: "b.json"},
	})
	detector := NewDuplicateDetector(service, 0)

	if groups := detector.FindDuplicateGroups(); len(groups) != 0 {
		t.Errorf("empty URLs/titles grouped: %+v", groups)
	}
}
