// Package web fetches arbitrary web pages and normalizes their readable
// content into the source.Article model. It backs builds from non-Wikipedia
// URLs.
package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/semgraph/semgraph/internal/util"
	"github.com/semgraph/semgraph/pkg/apperr"
	"github.com/semgraph/semgraph/pkg/source"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

const requestTimeout = 15 * time.Second

// fetchMaxTries bounds attempts per page download: one retry after the
// first failure.
const fetchMaxTries = 2

// maxSectionParagraphs bounds how many paragraphs are merged into one
// section when the page has no heading structure to follow.
const maxSectionParagraphs = 3

// Fetcher loads a web page, extracts its main content with readability,
// and splits it into sections. Concurrent fetches of the same URL are
// collapsed and results cached.
type Fetcher struct {
	httpClient *http.Client

	cache   map[string]*source.Article
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewFetcher creates a Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      make(map[string]*source.Article),
	}
}

// Fetch treats the title as a URL, downloads the page, and extracts its
// readable text. The languages argument is ignored; a web page has a
// single edition.
func (f *Fetcher) Fetch(ctx context.Context, title string, _ []string) (*source.Article, error) {
	pageURL, err := url.Parse(title)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return nil, fmt.Errorf("%w: %q is not a valid url", apperr.ErrInvalidInput, title)
	}
	key := pageURL.String()

	f.cacheMu.RLock()
	if cached, ok := f.cache[key]; ok {
		f.cacheMu.RUnlock()
		return cached, nil
	}
	f.cacheMu.RUnlock()

	result, err, _ := f.group.Do(key, func() (any, error) {
		f.cacheMu.RLock()
		if cached, ok := f.cache[key]; ok {
			f.cacheMu.RUnlock()
			return cached, nil
		}
		f.cacheMu.RUnlock()

		article, err := util.RetryWithContext(ctx, fetchMaxTries, func(ctx context.Context) (*source.Article, error) {
			return f.fetchPage(ctx, pageURL)
		})
		if err != nil {
			return nil, err
		}

		f.cacheMu.Lock()
		f.cache[key] = article
		f.cacheMu.Unlock()

		return article, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*source.Article), nil
}

func (f *Fetcher) fetchPage(ctx context.Context, pageURL *url.URL) (*source.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", apperr.ErrUpstream, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: page %s", apperr.ErrNotFound, pageURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: page %s returned status %d", apperr.ErrUpstream, pageURL, resp.StatusCode)
	}

	page, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := page.RenderText(&builder); err != nil {
		return nil, fmt.Errorf("failed to render page text: %w", err)
	}

	title := page.Title()
	if title == "" {
		title = pageURL.Host
	}

	summary, sections := sectionsFromText(builder.String())

	return &source.Article{
		Title:    title,
		Summary:  summary,
		Sections: sections,
		References: []source.Reference{
			{
				ID:       "source-page",
				Label:    pageURL.Host,
				Detail:   pageURL.String(),
				Language: "en",
			},
		},
		Languages: []string{"en"},
	}, nil
}

// sectionsFromText groups paragraphs of heading-less readable text into
// sections. The first paragraph becomes the summary.
func sectionsFromText(text string) (string, []source.Section) {
	paragraphs := make([]string, 0)
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return "", nil
	}

	summary := paragraphs[0]
	rest := paragraphs[1:]

	sections := make([]source.Section, 0, len(rest)/maxSectionParagraphs+1)
	for start := 0; start < len(rest); start += maxSectionParagraphs {
		end := min(start+maxSectionParagraphs, len(rest))
		chunk := strings.Join(rest[start:end], "\n\n")
		sections = append(sections, source.Section{
			ID:    fmt.Sprintf("section%d", len(sections)+1),
			Title: sectionTitle(chunk, len(sections)+1),
			Text:  chunk,
			Level: 1,
		})
	}

	return summary, sections
}

// sectionTitle derives a short heading from a chunk's opening words.
func sectionTitle(chunk string, index int) string {
	words := strings.Fields(chunk)
	if len(words) == 0 {
		return fmt.Sprintf("Part %d", index)
	}
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
