package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"marks/internal/adapter/bookmarkfs"
	"marks/internal/domain"
)

// Categorizer suggests which category (source file) a bookmark belongs
// to and moves bookmarks between category files.
type Categorizer struct {
	service *SimilarityService
	loader  *bookmarkfs.Loader
}

// NewCategorizer creates a categorizer over the similarity service.
func NewCategorizer(service *SimilarityService, loader *bookmarkfs.Loader) *Categorizer {
	return &Categorizer{service: service, loader: loader}
}

// SuggestCategories proposes up to n categories for a bookmark by
// weighting nearest-neighbor hits by file of origin. Confidences are
// normalized so the top category is exactly 1.0; an empty result means
// the caller should fall back to an uncategorized bucket.
func (c *Categorizer) SuggestCategories(candidate domain.Bookmark, n int) []domain.CategoryScore {
	if err := c.service.EnsureReady(); err != nil {
		return nil
	}

	query := strings.TrimSpace(candidate.Title + " " + candidate.ContentText())
	result := c.service.Search(query, 10)
	if len(result.Similar) == 0 {
		return nil
	}

	sums := make(map[string]float64)
	var order []string
	for _, similar := range result.Similar {
		source := similar.Bookmark.SourceFile
		if source == "" {
			continue
		}
		if _, seen := sums[source]; !seen {
			order = append(order, source)
		}
		sums[source] += similar.Score
	}
	if len(sums) == 0 {
		return nil
	}

	max := 0.0
	for _, sum := range sums {
		if sum > max {
			max = sum
		}
	}
	// A degraded embedding backend can zero every score; confidences
	// must stay in (0, 1], so there is nothing to suggest.
	if max <= 0 {
		return nil
	}

	scores := make([]domain.CategoryScore, 0, len(sums))
	for _, source := range order {
		if sums[source] <= 0 {
			continue
		}
		scores = append(scores, domain.CategoryScore{
			Category:   source,
			Confidence: sums[source] / max,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})

	if n > 0 && len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

// FindCategoryCandidates searches the collection for bookmarks that
// should move into the named category. Results already in the target
// category are excluded; results below the threshold are dropped unless
// nothing clears the bar, in which case the top matches are returned
// anyway so a small collection never comes up empty-handed.
func (c *Categorizer) FindCategoryCandidates(category string, limit int, threshold float64) []domain.CandidateMatch {
	if limit <= 0 {
		limit = 5
	}

	// "3d-printing.json" searches as "3d printing".
	query := strings.TrimSuffix(category, ".json")
	query = strings.ReplaceAll(query, "-", " ")
	query = strings.ReplaceAll(query, "_", " ")

	target := CategoryFilename(category)

	// Over-fetch to leave room for post-filtering.
	result := c.service.Search(query, limit*3)
	if len(result.Similar) == 0 {
		return nil
	}

	var candidates []domain.CandidateMatch
	for _, similar := range result.Similar {
		if filepath.Base(similar.Bookmark.SourceFile) == target {
			continue
		}
		if similar.Score >= threshold {
			candidates = append(candidates, domain.CandidateMatch{
				Bookmark: similar.Bookmark,
				Score:    similar.Score,
			})
		}
		if len(candidates) >= limit {
			break
		}
	}

	if len(candidates) == 0 {
		for _, similar := range result.Similar {
			if filepath.Base(similar.Bookmark.SourceFile) == target {
				continue
			}
			candidates = append(candidates, domain.CandidateMatch{
				Bookmark: similar.Bookmark,
				Score:    similar.Score,
			})
			if len(candidates) >= limit {
				break
			}
		}
	}

	return candidates
}

// MoveBookmarksToCategory appends the selected bookmarks to the target
// category file and rewrites their source files without them. If saving
// the target fails, the sources are untouched; if a source rewrite
// fails after the target was saved, the error is reported (the on-disk
// state may then hold a bookmark in two places).
func (c *Categorizer) MoveBookmarksToCategory(toMove []domain.Bookmark, category, baseDir string) error {
	if len(toMove) == 0 {
		return nil
	}

	target := CategoryFilename(category)
	targetPath := filepath.Join(baseDir, target)

	var targetBookmarks []domain.Bookmark
	if _, err := os.Stat(targetPath); err == nil {
		targetBookmarks, err = c.loader.LoadFile(targetPath)
		if err != nil {
			return fmt.Errorf("failed to load target category: %w", err)
		}
	}

	moved := make([]domain.Bookmark, 0, len(toMove))
	for _, b := range toMove {
		b.SourceFile = target
		moved = append(moved, b)
	}

	if err := c.loader.SaveFile(append(targetBookmarks, moved...), targetPath); err != nil {
		return fmt.Errorf("failed to save target category: %w", err)
	}

	urls := make(map[string]bool, len(toMove))
	for _, b := range toMove {
		urls[b.URL] = true
	}
	c.service.Remove(urls)
	for _, b := range moved {
		c.service.Append(b)
	}

	if err := c.loader.SaveBySource(c.service.Bookmarks(), baseDir); err != nil {
		return fmt.Errorf("target saved but source files not fully updated: %w", err)
	}
	return nil
}

// CreateCategory writes a new empty category file, refusing to clobber
// an existing one.
func (c *Categorizer) CreateCategory(category, dir string) error {
	path := filepath.Join(dir, CategoryFilename(category))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("category file already exists: %s", path)
	}

	data, err := json.MarshalIndent([]domain.Record{}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to create category file: %w", err)
	}
	return nil
}

// CategoryFilename appends .json when the category name has no
// extension.
func CategoryFilename(category string) string {
	if strings.HasSuffix(category, ".json") || strings.HasSuffix(category, ".csv") {
		return category
	}
	return category + ".json"
}

// CategoryDisplayName strips the extension for display.
func CategoryDisplayName(category string) string {
	return strings.TrimSuffix(strings.TrimSuffix(category, ".json"), ".csv")
}
