package usecase

import (
	"log"
	"strings"

	"marks/internal/domain"
)

// DefaultSimilarityThreshold is the minimum embedding similarity for
// two bookmarks to count as content duplicates.
const DefaultSimilarityThreshold = 0.85

// DuplicateDetector finds bookmarks that refer to the same resource.
type DuplicateDetector struct {
	service   *SimilarityService
	threshold float64
}

// NewDuplicateDetector creates a detector over the similarity service.
func NewDuplicateDetector(service *SimilarityService, threshold float64) *DuplicateDetector {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &DuplicateDetector{service: service, threshold: threshold}
}

// IsDuplicate checks a candidate against the collection in strict
// cascading order: exact URL, then normalized title, then embedding
// similarity. It returns the first match; later, more expensive stages
// never run once an earlier one matches.
func (d *DuplicateDetector) IsDuplicate(candidate domain.Bookmark) (domain.Bookmark, bool) {
	// Stage 1: exact URL.
	if candidate.URL != "" {
		for _, b := range d.service.Bookmarks() {
			if b.URL != "" && b.URL == candidate.URL {
				return b, true
			}
		}
	}

	// Stage 2: normalized title.
	if title := candidate.NormalizedTitle(); title != "" {
		for _, b := range d.service.Bookmarks() {
			if b.Title != "" && b.NormalizedTitle() == title {
				return b, true
			}
		}
	}

	// Stage 3: embedding similarity, only worth running when the
	// candidate has content to compare.
	if candidate.Description == "" {
		return domain.Bookmark{}, false
	}

	if err := d.service.EnsureReady(); err != nil {
		log.Printf("content similarity check unavailable: %v", err)
		return domain.Bookmark{}, false
	}

	query := strings.TrimSpace(candidate.Title + " " + candidate.Description)
	if query == "" {
		return domain.Bookmark{}, false
	}

	hits, err := d.service.index.Query(query, 3)
	if err != nil {
		log.Printf("content similarity check failed: %v", err)
		return domain.Bookmark{}, false
	}

	for _, hit := range hits {
		if hit.Score >= d.threshold {
			if b, ok := d.service.ResolveID(hit.ID); ok {
				return b, true
			}
		}
	}

	return domain.Bookmark{}, false
}

// FindDuplicateGroups groups the collection by exact URL, then by
// normalized title among bookmarks not already grouped by URL. Each
// bookmark appears in at most one group. Unlike IsDuplicate, this batch
// path does not use embedding similarity; unifying the two would change
// group output for collections with near-duplicate content, so the
// asymmetry is kept.
func (d *DuplicateDetector) FindDuplicateGroups() []domain.DuplicateGroup {
	bookmarks := d.service.Bookmarks()
	var groups []domain.DuplicateGroup

	urlGroups := make(map[string][]domain.Bookmark)
	var urlOrder []string
	for _, b := range bookmarks {
		if b.URL == "" {
			continue
		}
		if _, seen := urlGroups[b.URL]; !seen {
			urlOrder = append(urlOrder, b.URL)
		}
		urlGroups[b.URL] = append(urlGroups[b.URL], b)
	}

	groupedURLs := make(map[string]bool)
	for _, url := range urlOrder {
		members := urlGroups[url]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, domain.DuplicateGroup{
			Bookmarks: members,
			Score:     1.0,
			Reason:    domain.ReasonExactURL,
		})
		groupedURLs[url] = true
	}

	titleGroups := make(map[string][]domain.Bookmark)
	var titleOrder []string
	for _, b := range bookmarks {
		if b.Title == "" {
			continue
		}
		key := b.NormalizedTitle()
		if _, seen := titleGroups[key]; !seen {
			titleOrder = append(titleOrder, key)
		}
		titleGroups[key] = append(titleGroups[key], b)
	}

	for _, key := range titleOrder {
		members := titleGroups[key]
		if len(members) < 2 {
			continue
		}
		unique := make([]domain.Bookmark, 0, len(members))
		for _, b := range members {
			if !groupedURLs[b.URL] {
				unique = append(unique, b)
			}
		}
		if len(unique) < 2 {
			continue
		}
		groups = append(groups, domain.DuplicateGroup{
			Bookmarks: unique,
			Score:     0.9,
			Reason:    domain.ReasonSimilarTitle,
		})
	}

	return groups
}
