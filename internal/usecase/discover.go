package usecase

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"marks/internal/adapter/cluster"
	"marks/internal/domain"
	"marks/internal/port"
)

const (
	// minClusterMembers discards clusters too small to name.
	minClusterMembers = 3
	// maxExemplars caps the bookmarks quoted in a naming prompt and
	// carried on a suggestion.
	maxExemplars = 5
	// maxSuggestions caps the final suggestion list.
	maxSuggestions = 10

	namePlaceholder = "Untitled"
)

// genericNames is the blocklist of names that signal the generator
// found no coherent theme. Matching is exact and case-sensitive.
var genericNames = map[string]bool{
	"Untitled": true,
	"Various":  true,
	"Mixed":    true,
	"General":  true,
	"Other":    true,
}

// Discoverer clusters a collection's embeddings and asks the generator
// to name each cluster, producing proposed categories.
type Discoverer struct {
	embedder  port.Embedder
	generator port.Generator
	// ForceK, when > 0, skips density clustering and uses k-means with
	// exactly this many clusters.
	ForceK int
}

// NewDiscoverer creates a discoverer over the given backends.
func NewDiscoverer(embedder port.Embedder, generator port.Generator) *Discoverer {
	return &Discoverer{embedder: embedder, generator: generator}
}

// Discover embeds every bookmark, clusters the vectors, and returns
// named category suggestions, largest clusters first, capped at ten.
// It never fails on non-empty input; degenerate collections produce an
// empty list. progress, if non-nil, is called after each embedded
// bookmark.
func (d *Discoverer) Discover(bookmarks []domain.Bookmark, progress func(done, total int)) []domain.CategorySuggestion {
	if len(bookmarks) == 0 {
		return nil
	}

	vectors := make([][]float32, 0, len(bookmarks))
	for i, b := range bookmarks {
		vecs, err := d.embedder.Embed([]string{b.SearchText()})
		if err != nil || len(vecs) == 0 {
			// Degraded zero vector; clustering treats it as noise-like.
			vecs = [][]float32{make([]float32, d.embedder.Dimension())}
		}
		vectors = append(vectors, vecs[0])
		if progress != nil {
			progress(i+1, len(bookmarks))
		}
	}

	labels := d.clusterVectors(vectors)

	clusters := make(map[int][]int)
	var clusterOrder []int
	for idx, label := range labels {
		if label == cluster.Noise {
			continue
		}
		if _, seen := clusters[label]; !seen {
			clusterOrder = append(clusterOrder, label)
		}
		clusters[label] = append(clusters[label], idx)
	}

	// Largest clusters first.
	sort.SliceStable(clusterOrder, func(i, j int) bool {
		return len(clusters[clusterOrder[i]]) > len(clusters[clusterOrder[j]])
	})

	existing := existingCategoryNames(bookmarks)

	var suggestions []domain.CategorySuggestion
	for _, label := range clusterOrder {
		indices := clusters[label]
		if len(indices) < minClusterMembers {
			continue
		}

		group := make([]domain.Bookmark, 0, len(indices))
		for _, idx := range indices {
			group = append(group, bookmarks[idx])
		}

		name, description := d.nameCluster(group, existing)
		if genericNames[name] {
			continue
		}

		sources := make(map[string]bool)
		for _, b := range group {
			if b.SourceFile != "" {
				sources[b.SourceFile] = true
			}
		}
		sourceFiles := make([]string, 0, len(sources))
		for s := range sources {
			sourceFiles = append(sourceFiles, s)
		}
		sort.Strings(sourceFiles)

		examples := group
		if len(examples) > maxExemplars {
			examples = examples[:maxExemplars]
		}

		suggestions = append(suggestions, domain.CategorySuggestion{
			Name:        name,
			Description: description,
			Examples:    examples,
			SourceFiles: sourceFiles,
			Size:        len(group),
		})

		if len(suggestions) >= maxSuggestions {
			break
		}
	}

	return suggestions
}

// clusterVectors runs density-based clustering first and falls back to
// bounded-k k-means when it finds fewer than two clusters. The fallback
// always succeeds.
func (d *Discoverer) clusterVectors(vectors [][]float32) []int {
	if d.ForceK > 0 {
		return cluster.KMeans(vectors, d.ForceK)
	}

	labels := cluster.DBSCAN(vectors, cluster.DBSCANParamsFor(len(vectors)))
	if cluster.CountClusters(labels) >= 2 {
		return labels
	}

	log.Printf("density clustering found too little structure, falling back to k-means")
	return cluster.KMeans(vectors, cluster.KFor(len(vectors)))
}

// nameCluster asks the generator for a short name and one-sentence
// description, citing existing category names as a style guide.
func (d *Discoverer) nameCluster(group []domain.Bookmark, existing []string) (string, string) {
	sample := group
	if len(sample) > maxExemplars {
		sample = sample[:maxExemplars]
	}

	var sb strings.Builder
	sb.WriteString("Suggest a short category name and one sentence description for the following bookmarks. ")
	if len(existing) > 0 {
		style := existing
		if len(style) > 5 {
			style = style[:5]
		}
		fmt.Fprintf(&sb, "Follow the existing naming style from these categories: %s. Match their format, length, and style conventions. ", strings.Join(style, ", "))
	}
	sb.WriteString(`You MUST respond with ONLY valid JSON in this exact format: {"name":"category-name","description":"description"}` + "\n\n")
	sb.WriteString("Do not include any other text before or after the JSON.\n\n")
	for _, b := range sample {
		fmt.Fprintf(&sb, "- %s: %s\n", b.Title, b.URL)
	}

	raw, err := d.generator.Generate(sb.String(), 0.1)
	if err != nil {
		log.Printf("cluster naming failed: %v", err)
		return namePlaceholder, ""
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	jsonText, ok := ExtractJSONObject(raw)
	if !ok {
		log.Printf("no JSON object in generator response: %.100s", raw)
		return namePlaceholder, ""
	}

	if err := json.Unmarshal([]byte(jsonText), &meta); err != nil {
		// Retry once with whitespace normalized; generators sometimes
		// break strings across lines.
		cleaned := strings.NewReplacer("\n", " ", "\r", " ").Replace(jsonText)
		if err := json.Unmarshal([]byte(cleaned), &meta); err != nil {
			log.Printf("could not parse generator JSON: %v", err)
			return namePlaceholder, ""
		}
	}

	if meta.Name == "" {
		return namePlaceholder, meta.Description
	}
	return meta.Name, meta.Description
}

// ExtractJSONObject returns the first balanced top-level {...} object
// in the text. Brace counting tolerates nested objects and trailing
// commentary, which naive index-of slicing does not.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func existingCategoryNames(bookmarks []domain.Bookmark) []string {
	seen := make(map[string]bool)
	var names []string
	for _, b := range bookmarks {
		if b.SourceFile == "" {
			continue
		}
		name := CategoryDisplayName(filepath.Base(b.SourceFile))
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
