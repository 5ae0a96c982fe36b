package bookmarkfs

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"marks/internal/domain"
)

// Loader reads and writes bookmark collections stored as JSON or CSV
// files. A bookmark's category is the basename of the file it lives in.
type Loader struct {
	includes []string
	excludes []string
}

// NewLoader creates a loader scanning for the given include/exclude
// glob patterns when loading directories.
func NewLoader(includes, excludes []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"*.json", "*.csv"}
	}
	return &Loader{includes: includes, excludes: excludes}
}

// Load reads bookmarks from a file or every matching file in a
// directory.
func (l *Loader) Load(path string) ([]domain.Bookmark, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("path not found: %w", err)
	}
	if info.IsDir() {
		return l.LoadDirectory(path)
	}
	return l.LoadFile(path)
}

// LoadFile reads one JSON or CSV bookmark file and stamps each record
// with the file's basename as its source.
func (l *Loader) LoadFile(path string) ([]domain.Bookmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var bookmarks []domain.Bookmark
	if strings.HasSuffix(path, ".csv") {
		bookmarks, err = parseCSV(data)
	} else {
		bookmarks, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	source := filepath.Base(path)
	for i := range bookmarks {
		bookmarks[i].SourceFile = source
	}
	return bookmarks, nil
}

// LoadDirectory reads all matching bookmark files in a directory,
// sorted by filename so load order is deterministic.
func (l *Loader) LoadDirectory(dir string) ([]domain.Bookmark, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if l.matches(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var all []domain.Bookmark
	for _, name := range files {
		bookmarks, err := l.LoadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("skipping %s: %v", name, err)
			continue
		}
		all = append(all, bookmarks...)
	}
	return all, nil
}

func (l *Loader) matches(name string) bool {
	for _, pattern := range l.excludes {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return false
		}
	}
	for _, pattern := range l.includes {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// SaveFile writes bookmarks to a JSON or CSV file, by extension.
func (l *Loader) SaveFile(bookmarks []domain.Bookmark, path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".csv") {
		data, err = marshalCSV(bookmarks)
	} else {
		data, err = marshalJSON(bookmarks)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SaveBySource writes bookmarks back to their source files under dir,
// grouped by SourceFile. Bookmarks without a source file are skipped.
func (l *Loader) SaveBySource(bookmarks []domain.Bookmark, dir string) error {
	groups := make(map[string][]domain.Bookmark)
	var order []string
	for _, b := range bookmarks {
		if b.SourceFile == "" {
			continue
		}
		if _, seen := groups[b.SourceFile]; !seen {
			order = append(order, b.SourceFile)
		}
		groups[b.SourceFile] = append(groups[b.SourceFile], b)
	}

	var firstErr error
	for _, name := range order {
		if err := l.SaveFile(groups[name], filepath.Join(dir, name)); err != nil {
			log.Printf("failed to save %s: %v", name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func parseJSON(data []byte) ([]domain.Bookmark, error) {
	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	bookmarks := make([]domain.Bookmark, 0, len(records))
	for _, r := range records {
		bookmarks = append(bookmarks, domain.FromRecord(r))
	}
	return bookmarks, nil
}

func marshalJSON(bookmarks []domain.Bookmark) ([]byte, error) {
	records := make([]domain.Record, 0, len(bookmarks))
	for _, b := range bookmarks {
		records = append(records, b.ToRecord())
	}
	return json.MarshalIndent(records, "", "  ")
}

var csvHeader = []string{"url", "title", "description", "tags", "type"}

func parseCSV(data []byte) ([]domain.Bookmark, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Column order from the header row.
	col := make(map[string]int)
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	bookmarks := make([]domain.Bookmark, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := domain.Record{
			URL:         get(row, "url"),
			Link:        get(row, "link"),
			Title:       get(row, "title"),
			Description: get(row, "description"),
			Excerpt:     get(row, "excerpt"),
			Type:        get(row, "type"),
		}
		if tags := get(row, "tags"); tags != "" {
			rec.Tags = strings.Split(tags, ",")
		}
		bookmarks = append(bookmarks, domain.FromRecord(rec))
	}
	return bookmarks, nil
}

func marshalCSV(bookmarks []domain.Bookmark) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, b := range bookmarks {
		row := []string{
			b.URL,
			b.Title,
			b.ContentText(),
			strings.Join(b.Tags, ","),
			b.Type,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// FilterEnriched returns bookmarks that have both content and tags.
func FilterEnriched(bookmarks []domain.Bookmark) []domain.Bookmark {
	var out []domain.Bookmark
	for _, b := range bookmarks {
		if b.IsEnriched() {
			out = append(out, b)
		}
	}
	return out
}

// FilterUnenriched returns bookmarks missing content or tags.
func FilterUnenriched(bookmarks []domain.Bookmark) []domain.Bookmark {
	var out []domain.Bookmark
	for _, b := range bookmarks {
		if !b.IsEnriched() {
			out = append(out, b)
		}
	}
	return out
}
