package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"marks/internal/adapter/bookmarkfs"
	"marks/internal/domain"
	"marks/internal/port"
)

// Importer adds new bookmarks from JSON, HTML, Markdown, or plain URL
// list files into an existing collection.
type Importer struct {
	service     *SimilarityService
	detector    *DuplicateDetector
	categorizer *Categorizer
	loader      *bookmarkfs.Loader
	fetcher     port.PageFetcher
}

// NewImporter creates an importer over the collection services.
func NewImporter(service *SimilarityService, detector *DuplicateDetector, categorizer *Categorizer, loader *bookmarkfs.Loader, fetcher port.PageFetcher) *Importer {
	return &Importer{
		service:     service,
		detector:    detector,
		categorizer: categorizer,
		loader:      loader,
		fetcher:     fetcher,
	}
}

// ImportResult reports what an import run did.
type ImportResult struct {
	Imported   []string
	DeadLinks  []string
	Duplicates []string
}

// format pairs a sniffing predicate with a parser. Formats are tried in
// order; the first whose predicate matches wins, so no parse failure is
// needed for dispatch on the happy path.
type format struct {
	name  string
	sniff func(raw string) bool
	parse func(raw string) ([]domain.Bookmark, error)
}

func importFormats() []format {
	return []format{
		{name: "json", sniff: sniffJSON, parse: parseJSONList},
		{name: "html", sniff: sniffHTML, parse: parseHTMLAnchors},
		{name: "markdown", sniff: sniffMarkdown, parse: parseMarkdownLinks},
		{name: "urls", sniff: sniffURLList, parse: parseURLList},
	}
}

// ParseBookmarkFile parses a file of new bookmarks in any supported
// format.
func ParseBookmarkFile(path string) ([]domain.Bookmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	raw := string(data)

	for _, f := range importFormats() {
		if f.sniff(raw) {
			bookmarks, err := f.parse(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s as %s: %w", path, f.name, err)
			}
			return bookmarks, nil
		}
	}
	return nil, fmt.Errorf("unrecognized bookmark format in %s", path)
}

// ImportFile parses the file and folds each new bookmark into the
// collection: dead links are reported, duplicates skipped, missing
// fields filled from the page, and each bookmark lands in its best
// suggested category file (or uncategorized.json).
func (im *Importer) ImportFile(path, collectionPath string, checkDuplicates bool) (*ImportResult, error) {
	bookmarks, err := ParseBookmarkFile(path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, b := range bookmarks {
		if !im.fetcher.CheckReachable(b.URL) {
			result.DeadLinks = append(result.DeadLinks, b.URL)
			continue
		}

		if checkDuplicates {
			if existing, found := im.detector.IsDuplicate(b); found {
				result.Duplicates = append(result.Duplicates,
					fmt.Sprintf("%s (duplicate of existing bookmark: %s)", b.URL, existing.Title))
				continue
			}
		}

		if b.Title == "" || b.Description == "" {
			title, description := im.fetcher.FetchPageSummary(b.URL)
			if b.Title == "" {
				b.Title = title
			}
			if b.Description == "" {
				b.Description = description
			}
		}

		if len(b.Tags) == 0 {
			if d := b.Domain(); d != "" {
				b.Tags = []string{d}
			}
		}

		target := "uncategorized.json"
		if suggestions := im.categorizer.SuggestCategories(b, 1); len(suggestions) > 0 {
			target = suggestions[0].Category
		}

		targetPath := collectionPath
		if info, err := os.Stat(collectionPath); err == nil && info.IsDir() {
			targetPath = filepath.Join(collectionPath, target)
		}

		var existing []domain.Bookmark
		if _, err := os.Stat(targetPath); err == nil {
			existing, err = im.loader.LoadFile(targetPath)
			if err != nil {
				return result, fmt.Errorf("failed to load %s: %w", targetPath, err)
			}
		}

		b.SourceFile = filepath.Base(targetPath)
		if err := im.loader.SaveFile(append(existing, b), targetPath); err != nil {
			return result, fmt.Errorf("failed to save %s: %w", targetPath, err)
		}

		im.service.Append(b)
		result.Imported = append(result.Imported, b.URL)
	}

	return result, nil
}

func sniffJSON(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return strings.HasPrefix(trimmed, "[")
}

func parseJSONList(raw string) ([]domain.Bookmark, error) {
	var records []domain.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, err
	}
	bookmarks := make([]domain.Bookmark, 0, len(records))
	for _, r := range records {
		bookmarks = append(bookmarks, domain.FromRecord(r))
	}
	return bookmarks, nil
}

func sniffHTML(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "<a ")
}

func parseHTMLAnchors(raw string) ([]domain.Bookmark, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var bookmarks []domain.Bookmark
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href, tagsAttr string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "href":
					href = attr.Val
				case "tags", "data-tags":
					if tagsAttr == "" {
						tagsAttr = attr.Val
					}
				}
			}
			if href != "" {
				var tags []string
				if tagsAttr != "" {
					tags = strings.Split(tagsAttr, ",")
				}
				bookmarks = append(bookmarks, domain.Bookmark{
					URL:   href,
					Title: strings.TrimSpace(anchorText(n)),
					Tags:  tags,
					Type:  "link",
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no anchors with href found")
	}
	return bookmarks, nil
}

func anchorText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)

func sniffMarkdown(raw string) bool {
	return markdownLink.MatchString(raw)
}

func parseMarkdownLinks(raw string) ([]domain.Bookmark, error) {
	matches := markdownLink.FindAllStringSubmatch(raw, -1)
	bookmarks := make([]domain.Bookmark, 0, len(matches))
	for _, m := range matches {
		bookmarks = append(bookmarks, domain.Bookmark{
			URL:   m[2],
			Title: m[1],
			Type:  "link",
		})
	}
	return bookmarks, nil
}

func sniffURLList(raw string) bool {
	lines := nonEmptyLines(raw)
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "http") {
			return false
		}
	}
	return true
}

func parseURLList(raw string) ([]domain.Bookmark, error) {
	lines := nonEmptyLines(raw)
	bookmarks := make([]domain.Bookmark, 0, len(lines))
	for _, line := range lines {
		bookmarks = append(bookmarks, domain.Bookmark{URL: line, Type: "link"})
	}
	return bookmarks, nil
}

func nonEmptyLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
