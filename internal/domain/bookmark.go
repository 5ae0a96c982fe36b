package domain

import (
	"net/url"
	"strings"
)

// Bookmark is one saved link. Field aliases from the wire formats
// (url/link, description/excerpt) are resolved once in FromRecord;
// internal code only ever reads the canonical fields.
type Bookmark struct {
	URL         string
	Title       string
	Description string
	Excerpt     string
	Tags        []string
	Type        string
	SourceFile  string
}

// Record is the JSON shape a bookmark is stored as. Exactly one of
// URL/Link and one of Description/Excerpt is populated on output; both
// are accepted on input.
type Record struct {
	URL         string   `json:"url,omitempty"`
	Link        string   `json:"link,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// FromRecord resolves field aliases and fills defaults.
func FromRecord(r Record) Bookmark {
	u := r.URL
	if u == "" {
		u = r.Link
	}
	typ := r.Type
	if typ == "" {
		typ = "link"
	}
	return Bookmark{
		URL:         u,
		Title:       r.Title,
		Description: r.Description,
		Excerpt:     r.Excerpt,
		Tags:        r.Tags,
		Type:        typ,
	}
}

// ToRecord converts back to the wire shape, preserving the original
// field preferences: "url" for http(s) URLs, "link" otherwise, and
// description over excerpt.
func (b Bookmark) ToRecord() Record {
	r := Record{
		Title: b.Title,
		Tags:  b.Tags,
		Type:  b.Type,
	}
	if strings.HasPrefix(b.URL, "http") {
		r.URL = b.URL
	} else {
		r.Link = b.URL
	}
	if b.Description != "" {
		r.Description = b.Description
	} else if b.Excerpt != "" {
		r.Excerpt = b.Excerpt
	}
	return r
}

// ContentText returns the preferred long-form text field.
func (b Bookmark) ContentText() string {
	if b.Description != "" {
		return b.Description
	}
	return b.Excerpt
}

// IsEnriched reports whether the bookmark has both content and tags.
func (b Bookmark) IsEnriched() bool {
	return b.ContentText() != "" && len(b.Tags) > 0
}

// Domain returns the host component of the URL, empty if unparseable.
func (b Bookmark) Domain() string {
	u, err := url.Parse(b.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// SearchText is the unit of embedding: title, content, and tags joined.
func (b Bookmark) SearchText() string {
	parts := make([]string, 0, 3)
	if b.Title != "" {
		parts = append(parts, b.Title)
	}
	if ct := b.ContentText(); ct != "" {
		parts = append(parts, ct)
	}
	if len(b.Tags) > 0 {
		parts = append(parts, strings.Join(b.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// NormalizedTitle is the title lowered and trimmed, the unit of
// title-equality duplicate matching.
func (b Bookmark) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(b.Title))
}

// SimilarBookmark is one hit from a vector search.
type SimilarBookmark struct {
	Bookmark Bookmark
	Score    float64
	Content  string
}

// SearchResult holds the ranked hits for one query.
type SearchResult struct {
	Query   string
	Similar []SimilarBookmark
	Total   int
}

// Duplicate-group reasons, in cascade order.
const (
	ReasonExactURL       = "exact_url"
	ReasonSimilarTitle   = "similar_title"
	ReasonSimilarContent = "similar_content"
)

// DuplicateGroup is a set of bookmarks judged to refer to the same
// resource. Reason determines the score: exact_url 1.0, similar_title
// 0.9, similar_content computed from embedding distance.
type DuplicateGroup struct {
	Bookmarks []Bookmark
	Score     float64
	Reason    string
}

// CategorySuggestion is a proposed category produced by clustering.
type CategorySuggestion struct {
	Name        string
	Description string
	Examples    []Bookmark
	SourceFiles []string
	Size        int
}

// CategoryScore pairs a category identifier with a confidence in (0, 1].
type CategoryScore struct {
	Category   string
	Confidence float64
}

// CandidateMatch pairs a bookmark with its similarity to a target category.
type CandidateMatch struct {
	Bookmark Bookmark
	Score    float64
}
