package bookmarkfs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"marks/internal/domain"
)

func TestLoadFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tech.json")
	content := `[
  {"url": "https://go.dev", "title": "Go", "description": "The Go site", "tags": ["go"]},
  {"link": "ftp://files.example.com", "title": "Files", "excerpt": "An FTP mirror"}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(nil, nil)
	bookmarks, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("got %d bookmarks, want 2", len(bookmarks))
	}

	if bookmarks[0].URL != "https://go.dev" || bookmarks[0].Description != "The Go site" {
		t.Errorf("first bookmark = %+v", bookmarks[0])
	}
	if bookmarks[1].URL != "ftp://files.example.com" {
		t.Errorf("link alias not resolved: %+v", bookmarks[1])
	}
	if bookmarks[1].Excerpt != "An FTP mirror" {
		t.Errorf("excerpt not carried: %+v", bookmarks[1])
	}
	for _, b := range bookmarks {
		if b.SourceFile != "tech.json" {
			t.Errorf("SourceFile = %q, want tech.json", b.SourceFile)
		}
	}
}

func TestSaveLoadRoundTripJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "round.json")
	loader := NewLoader(nil, nil)

	original := []domain.Bookmark{
		{URL: "https://go.dev", Title: "Go", Description: "The Go site", Tags: []string{"go", "lang"}, Type: "link"},
		{URL: "ftp://files.example.com", Title: "Files", Excerpt: "mirror", Type: "link"},
	}
	if err := loader.SaveFile(original, path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(loaded) != len(original) {
		t.Fatalf("got %d bookmarks, want %d", len(loaded), len(original))
	}
	for i := range original {
		want := original[i]
		want.SourceFile = "round.json"
		if !reflect.DeepEqual(loaded[i], want) {
			t.Errorf("bookmark %d = %+v, want %+v", i, loaded[i], want)
		}
	}
}

func TestSaveLoadRoundTripCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "round.csv")
	loader := NewLoader(nil, nil)

	original := []domain.Bookmark{
		{URL: "https://go.dev", Title: "Go", Description: "The Go site", Tags: []string{"go", "lang"}, Type: "link"},
	}
	if err := loader.SaveFile(original, path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d bookmarks, want 1", len(loaded))
	}
	got := loaded[0]
	if got.URL != "https://go.dev" || got.Title != "Go" || got.Description != "The Go site" {
		t.Errorf("round-tripped bookmark = %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, []string{"go", "lang"}) {
		t.Errorf("tags = %v, want [go lang]", got.Tags)
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	write("b.json", `[{"url": "https://b.com", "title": "B"}]`)
	write("a.json", `[{"url": "https://a.com", "title": "A"}]`)
	write("skip_enriched.json", `[{"url": "https://skip.com", "title": "Skip"}]`)
	write("notes.txt", "not a bookmark file")
	write("broken.json", "{this is not json")

	loader := NewLoader([]string{"*.json"}, []string{"*_enriched.json"})
	bookmarks, err := loader.LoadDirectory(dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	// broken.json is skipped with a log, not a failure; files load in
	// name order.
	if len(bookmarks) != 2 {
		t.Fatalf("got %d bookmarks, want 2: %+v", len(bookmarks), bookmarks)
	}
	if bookmarks[0].URL != "https://a.com" || bookmarks[1].URL != "https://b.com" {
		t.Errorf("load order wrong: %s then %s", bookmarks[0].URL, bookmarks[1].URL)
	}
}

func TestSaveBySource(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(nil, nil)

	bookmarks := []domain.Bookmark{
		{URL: "https://a1.com", Title: "A1", Type: "link", SourceFile: "a.json"},
		{URL: "https://b1.com", Title: "B1", Type: "link", SourceFile: "b.json"},
		{URL: "https://a2.com", Title: "A2", Type: "link", SourceFile: "a.json"},
		{URL: "https://orphan.com", Title: "Orphan", Type: "link"},
	}
	if err := loader.SaveBySource(bookmarks, dir); err != nil {
		t.Fatalf("SaveBySource() error = %v", err)
	}

	a, err := loader.LoadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 2 || a[0].URL != "https://a1.com" || a[1].URL != "https://a2.com" {
		t.Errorf("a.json contents = %+v", a)
	}

	b, err := loader.LoadFile(filepath.Join(dir, "b.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 1 || b[0].URL != "https://b1.com" {
		t.Errorf("b.json contents = %+v", b)
	}

	if _, err := os.Stat(filepath.Join(dir, "orphan.json")); err == nil {
		t.Error("bookmark without a source file was written somewhere")
	}
}

func TestFilterEnriched(t *testing.T) {
	bookmarks := []domain.Bookmark{
		{URL: "https://a.com", Description: "d", Tags: []string{"t"}},
		{URL: "https://b.com"},
		{URL: "https://c.com", Excerpt: "x", Tags: []string{"t"}},
	}

	enriched := FilterEnriched(bookmarks)
	if len(enriched) != 2 {
		t.Errorf("FilterEnriched() returned %d, want 2", len(enriched))
	}
	unenriched := FilterUnenriched(bookmarks)
	if len(unenriched) != 1 || unenriched[0].URL != "https://b.com" {
		t.Errorf("FilterUnenriched() = %+v", unenriched)
	}
}
