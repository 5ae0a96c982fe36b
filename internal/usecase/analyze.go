package usecase

import (
	"sort"
	"strings"

	"marks/internal/domain"
)

// NameCount pairs a name with how often it occurs.
type NameCount struct {
	Name  string
	Count int
}

// Analysis summarizes a bookmark collection.
type Analysis struct {
	Total             int
	Enriched          int
	EnrichmentPercent float64
	UniqueDomains     int
	TopDomains        []NameCount
	UniqueTags        int
	TopTags           []NameCount
	Files             int
	FileCounts        map[string]int
}

// Analyze computes collection statistics: enrichment coverage, domain
// and tag frequencies, and per-file distribution.
func Analyze(bookmarks []domain.Bookmark) *Analysis {
	if len(bookmarks) == 0 {
		return &Analysis{FileCounts: map[string]int{}}
	}

	domains := make(map[string]int)
	tags := make(map[string]int)
	files := make(map[string]int)
	enriched := 0

	for _, b := range bookmarks {
		if b.IsEnriched() {
			enriched++
		}
		if d := b.Domain(); d != "" {
			domains[d]++
		}
		for _, tag := range b.Tags {
			tags[strings.ToLower(tag)]++
		}
		if b.SourceFile != "" {
			files[b.SourceFile]++
		}
	}

	return &Analysis{
		Total:             len(bookmarks),
		Enriched:          enriched,
		EnrichmentPercent: float64(enriched) / float64(len(bookmarks)) * 100,
		UniqueDomains:     len(domains),
		TopDomains:        topCounts(domains, 10),
		UniqueTags:        len(tags),
		TopTags:           topCounts(tags, 20),
		Files:             len(files),
		FileCounts:        files,
	}
}

func topCounts(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
