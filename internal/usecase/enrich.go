package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"golang.org/x/time/rate"

	"marks/internal/domain"
	"marks/internal/port"
)

// EnrichSummary reports counts and per-item failure detail for a batch
// enrichment run. Batches always complete and report, never throw.
type EnrichSummary struct {
	Enriched        []string
	AlreadyEnriched []string
	SkippedNoURL    []string
	FetchFailures   []string
	Failures        []string
	Interrupted     bool
}

// Total returns how many bookmarks the run looked at.
func (s *EnrichSummary) Total() int {
	return len(s.Enriched) + len(s.AlreadyEnriched) + len(s.SkippedNoURL) + len(s.Failures)
}

// Enricher fills missing descriptions and tags using the page fetcher
// and the text generator, with similar already-enriched bookmarks as
// prompt context.
type Enricher struct {
	service   *SimilarityService
	fetcher   port.PageFetcher
	generator port.Generator
	limiter   *rate.Limiter
}

// NewEnricher creates an enricher. rps throttles outbound generator and
// fetcher calls between iterations.
func NewEnricher(service *SimilarityService, fetcher port.PageFetcher, generator port.Generator, rps float64) *Enricher {
	if rps <= 0 {
		rps = 2
	}
	return &Enricher{
		service:   service,
		fetcher:   fetcher,
		generator: generator,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// EnrichAll enriches every unenriched bookmark in the collection, up to
// limit when limit > 0. Items are processed strictly one at a time; a
// single bad item never aborts the batch. Cancellation is checked
// between items, so an interrupt preserves the in-memory state of
// everything already processed and the caller can still save partial
// results.
func (e *Enricher) EnrichAll(ctx context.Context, limit int, progress func(done, total int)) *EnrichSummary {
	summary := &EnrichSummary{}

	var pending []int
	for i, b := range e.service.Bookmarks() {
		if !b.IsEnriched() {
			pending = append(pending, i)
		}
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	for done, idx := range pending {
		select {
		case <-ctx.Done():
			summary.Interrupted = true
			return summary
		default:
		}

		if err := e.limiter.Wait(ctx); err != nil {
			summary.Interrupted = true
			return summary
		}

		b := &e.service.bookmarks[idx]
		e.enrichOne(b, summary)

		if progress != nil {
			progress(done+1, len(pending))
		}
	}

	if len(summary.Enriched) > 0 {
		e.service.Invalidate()
	}
	return summary
}

// EnrichOne enriches a single bookmark in place.
func (e *Enricher) EnrichOne(b *domain.Bookmark) *EnrichSummary {
	summary := &EnrichSummary{}
	e.enrichOne(b, summary)
	if len(summary.Enriched) > 0 {
		e.service.Invalidate()
	}
	return summary
}

func (e *Enricher) enrichOne(b *domain.Bookmark, summary *EnrichSummary) {
	if b.URL == "" {
		title := b.Title
		if title == "" {
			title = "Unknown title"
		}
		summary.SkippedNoURL = append(summary.SkippedNoURL, title)
		return
	}
	if b.IsEnriched() {
		summary.AlreadyEnriched = append(summary.AlreadyEnriched, b.Title)
		return
	}

	if b.Title == "" || b.ContentText() == "" {
		title, description := e.fetcher.FetchPageSummary(b.URL)
		if title == "" && description == "" {
			summary.FetchFailures = append(summary.FetchFailures, b.URL)
		}
		if b.Title == "" && title != "" {
			b.Title = title
		}
		if b.ContentText() == "" && description != "" {
			b.Description = description
		}
	}

	query := strings.TrimSpace(b.Title + " " + b.ContentText())
	if query == "" {
		summary.Failures = append(summary.Failures, fmt.Sprintf("%s: no content to enrich from", b.URL))
		return
	}

	// Similar bookmarks give the generator collection context; an
	// empty search result is fine, enrichment proceeds without it.
	var contextLines strings.Builder
	result := e.service.Search(query, 3)
	if len(result.Similar) > 0 {
		contextLines.WriteString("Similar bookmarks in your collection:\n")
		for _, similar := range result.Similar {
			fmt.Fprintf(&contextLines, "- %s: %s\n", similar.Bookmark.Title, similar.Content)
		}
	}

	enrichment, err := e.generate(*b, contextLines.String())
	if err != nil {
		summary.Failures = append(summary.Failures, fmt.Sprintf("%s (%s): %v", b.Title, b.URL, err))
		return
	}

	if b.ContentText() == "" && enrichment.Description != "" {
		b.Description = enrichment.Description
	}
	if len(b.Tags) == 0 && len(enrichment.Tags) > 0 {
		b.Tags = enrichment.Tags
	}

	summary.Enriched = append(summary.Enriched, b.Title)
}

type enrichment struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (e *Enricher) generate(b domain.Bookmark, context string) (*enrichment, error) {
	var sb strings.Builder
	sb.WriteString("You are helping to enrich a bookmark collection. ")
	sb.WriteString("Based on the information provided, generate a concise description and relevant tags.\n\n")
	if context != "" {
		sb.WriteString(context)
		sb.WriteString("\n")
	}
	sb.WriteString("Bookmark to enrich:\n")
	fmt.Fprintf(&sb, "Title: %s\nURL: %s\nContent: %s\n\n", b.Title, b.URL, b.ContentText())
	sb.WriteString("Please provide:\n")
	sb.WriteString("1. A concise, informative description (1-2 sentences)\n")
	sb.WriteString("2. 3-5 relevant tags (single words or short phrases)\n\n")
	sb.WriteString("Respond ONLY with valid JSON in this exact format:\n")
	sb.WriteString(`{"description": "your description here", "tags": ["tag1", "tag2", "tag3"]}`)

	raw, err := e.generator.Generate(sb.String(), 0.3)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	jsonText, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var result enrichment
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		cleaned := strings.NewReplacer("\n", " ", "\r", " ").Replace(jsonText)
		if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
			log.Printf("could not parse enrichment JSON: %v", err)
			return nil, fmt.Errorf("malformed JSON in response")
		}
	}
	return &result, nil
}
