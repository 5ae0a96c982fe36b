package usecase

import (
	"fmt"
	"log"
	"strings"

	"marks/internal/domain"
	"marks/internal/port"
)

// indexState tracks the similarity index lifecycle. Every read
// operation goes through EnsureReady and every mutation through
// Invalidate, so staleness handling lives in exactly one place.
type indexState int

const (
	stateEmpty indexState = iota
	stateBuilding
	stateReady
	stateStale
)

// SimilarityService wraps a vector index behind a bookmark-oriented
// API. It owns the in-memory bookmark list; the index is a cache over
// it, rebuilt lazily after any mutation.
type SimilarityService struct {
	index     port.VectorIndex
	bookmarks []domain.Bookmark
	state     indexState
	byID      map[string]domain.Bookmark
}

// NewSimilarityService creates a service over the given index.
func NewSimilarityService(index port.VectorIndex) *SimilarityService {
	return &SimilarityService{
		index: index,
		byID:  make(map[string]domain.Bookmark),
	}
}

// SetBookmarks replaces the collection and invalidates the index.
func (s *SimilarityService) SetBookmarks(bookmarks []domain.Bookmark) {
	s.bookmarks = bookmarks
	s.Invalidate()
}

// Bookmarks returns the current collection.
func (s *SimilarityService) Bookmarks() []domain.Bookmark {
	return s.bookmarks
}

// Append adds a bookmark and invalidates the index.
func (s *SimilarityService) Append(b domain.Bookmark) {
	s.bookmarks = append(s.bookmarks, b)
	s.Invalidate()
}

// Remove deletes the bookmarks with the given URLs from the collection
// and invalidates the index. It returns how many were removed.
func (s *SimilarityService) Remove(urls map[string]bool) int {
	kept := s.bookmarks[:0]
	removed := 0
	for _, b := range s.bookmarks {
		if urls[b.URL] {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.bookmarks = kept
	if removed > 0 {
		s.Invalidate()
	}
	return removed
}

// RemoveOne deletes the first bookmark matching the target's URL,
// title, and source file, reporting whether anything was removed.
func (s *SimilarityService) RemoveOne(target domain.Bookmark) bool {
	for i, b := range s.bookmarks {
		if b.URL == target.URL && b.Title == target.Title && b.SourceFile == target.SourceFile {
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			s.Invalidate()
			return true
		}
	}
	return false
}

// Invalidate marks the index stale. The next read rebuilds it.
func (s *SimilarityService) Invalidate() {
	if len(s.bookmarks) == 0 {
		s.state = stateEmpty
		return
	}
	s.state = stateStale
}

// EnsureReady rebuilds the index from the current bookmark list unless
// it is already current. Bookmarks with an empty URL or no searchable
// text are never indexed.
func (s *SimilarityService) EnsureReady() error {
	if s.state == stateReady {
		return nil
	}
	if len(s.bookmarks) == 0 {
		return fmt.Errorf("no bookmarks to index")
	}

	s.state = stateBuilding

	items := make([]port.IndexItem, 0, len(s.bookmarks))
	byID := make(map[string]domain.Bookmark, len(s.bookmarks))
	for _, b := range s.bookmarks {
		if b.URL == "" || b.SearchText() == "" {
			continue
		}

		// Two bookmarks may share a URL; suffix the id so the index
		// never silently overwrites a prior entry. Reconciling true
		// duplicates is the duplicate detector's job, not the index's.
		id := b.URL
		for n := 1; ; n++ {
			if _, taken := byID[id]; !taken {
				break
			}
			id = fmt.Sprintf("%s_%d", b.URL, n)
		}

		byID[id] = b
		items = append(items, port.IndexItem{
			ID:   id,
			Text: b.SearchText(),
			Metadata: map[string]string{
				"url":         b.URL,
				"title":       b.Title,
				"domain":      b.Domain(),
				"source_file": b.SourceFile,
				"tags":        strings.Join(b.Tags, ","),
			},
		})
	}

	if len(items) == 0 {
		s.state = stateEmpty
		return fmt.Errorf("no indexable bookmarks")
	}

	if err := s.index.Rebuild(items); err != nil {
		s.state = stateStale
		return fmt.Errorf("failed to index bookmarks: %w", err)
	}

	s.byID = byID
	s.state = stateReady
	return nil
}

// Search returns the n most similar bookmarks for a free-text query.
// Index build failures and query errors yield an empty result rather
// than an error; search is non-fatal by design.
func (s *SimilarityService) Search(query string, n int) domain.SearchResult {
	empty := domain.SearchResult{Query: query}

	if err := s.EnsureReady(); err != nil {
		log.Printf("search unavailable: %v", err)
		return empty
	}

	hits, err := s.index.Query(query, n)
	if err != nil {
		log.Printf("search failed: %v", err)
		return empty
	}

	similar := make([]domain.SimilarBookmark, 0, len(hits))
	for _, hit := range hits {
		similar = append(similar, domain.SimilarBookmark{
			Bookmark: s.bookmarkFromHit(hit),
			Score:    hit.Score,
			Content:  hit.Text,
		})
	}

	return domain.SearchResult{
		Query:   query,
		Similar: similar,
		Total:   len(similar),
	}
}

// ResolveID maps an index id back to the bookmark it was built from.
func (s *SimilarityService) ResolveID(id string) (domain.Bookmark, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// bookmarkFromHit prefers the indexed bookmark; if the id is unknown
// (index older than the list) it reconstructs from stored metadata.
func (s *SimilarityService) bookmarkFromHit(hit port.IndexHit) domain.Bookmark {
	if b, ok := s.byID[hit.ID]; ok {
		return b
	}
	var tags []string
	if t := hit.Metadata["tags"]; t != "" {
		tags = strings.Split(t, ",")
	}
	return domain.Bookmark{
		URL:        hit.Metadata["url"],
		Title:      hit.Metadata["title"],
		Tags:       tags,
		SourceFile: hit.Metadata["source_file"],
	}
}
