package usecase

import (
	"errors"
	"fmt"

	"marks/internal/port"
)

var errQuery = errors.New("index query failed")

// stubIndex is a scriptable VectorIndex: Rebuild records what was
// indexed, Query returns canned hits.
type stubIndex struct {
	items    []port.IndexItem
	hits     []port.IndexHit
	rebuilds int
	queryErr error
}

func (s *stubIndex) Rebuild(items []port.IndexItem) error {
	s.items = items
	s.rebuilds++
	return nil
}

func (s *stubIndex) Query(text string, k int) ([]port.IndexHit, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if k > len(s.hits) {
		k = len(s.hits)
	}
	return s.hits[:k], nil
}

func (s *stubIndex) Clear() error {
	s.items = nil
	return nil
}

func (s *stubIndex) Count() int {
	return len(s.items)
}

// stubFetcher answers page fetches from canned data without a network.
type stubFetcher struct {
	title       string
	description string
	unreachable map[string]bool
	fetches     int
}

func (f *stubFetcher) FetchPageSummary(url string) (string, string) {
	f.fetches++
	return f.title, f.description
}

func (f *stubFetcher) CheckReachable(url string) bool {
	return !f.unreachable[url]
}

// hit builds a canned index hit whose id resolves through the service's
// byID map when the bookmark was indexed.
func hit(id string, score float64) port.IndexHit {
	return port.IndexHit{
		ID:    id,
		Score: score,
		Text:  fmt.Sprintf("text for %s", id),
	}
}
