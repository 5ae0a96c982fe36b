package webpage

import (
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"marks/internal/domain"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Fetcher extracts (title, description) summaries from web pages. All
// network and parse failures degrade to empty strings; the fetcher
// never fails outward.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPageSummary GETs the URL and extracts the <title> text and the
// first of meta description, og:description, twitter:description.
func (f *Fetcher) FetchPageSummary(url string) (string, string) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("fetch failed for %s: %v", url, err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("fetch returned status %d for %s", resp.StatusCode, url)
		return "", ""
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		log.Printf("parse failed for %s: %v", url, err)
		return "", ""
	}

	return extractSummary(doc)
}

// CheckReachable issues a HEAD request and reports whether the URL
// answers with a non-error status. Invalid URLs are unreachable by
// definition.
func (f *Fetcher) CheckReachable(url string) bool {
	if !domain.IsValidURL(url) {
		return false
	}

	req, err := http.NewRequest("HEAD", url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400
}

func extractSummary(doc *html.Node) (string, string) {
	var title string
	descriptions := make(map[string]string)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, property, content := "", "", ""
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						name = attr.Val
					case "property":
						property = attr.Val
					case "content":
						content = attr.Val
					}
				}
				if content == "" {
					break
				}
				switch {
				case name == "description":
					descriptions["description"] = strings.TrimSpace(content)
				case property == "og:description":
					descriptions["og"] = strings.TrimSpace(content)
				case name == "twitter:description":
					descriptions["twitter"] = strings.TrimSpace(content)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, key := range []string{"description", "og", "twitter"} {
		if d := descriptions[key]; d != "" {
			return title, d
		}
	}
	return title, ""
}
