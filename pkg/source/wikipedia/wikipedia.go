// Package wikipedia fetches articles through the MediaWiki action API and
// normalizes them into the source.Article model.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/semgraph/semgraph/internal/util"
	"github.com/semgraph/semgraph/pkg/apperr"
	"github.com/semgraph/semgraph/pkg/logger"
	"github.com/semgraph/semgraph/pkg/source"

	"golang.org/x/sync/singleflight"
)

const (
	defaultUserAgent = "semgraph/1.0 (knowledge graph builder)"
	requestTimeout   = 10 * time.Second
	fetchMaxTries    = 2
)

// Client fetches Wikipedia articles. Identical in-flight fetches are
// collapsed through singleflight and completed articles are cached by
// language and title.
type Client struct {
	httpClient *http.Client
	userAgent  string
	// baseURL overrides the per-language wikipedia.org endpoint in tests.
	baseURL string

	cache   map[string]*source.Article
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewClient creates a Client. The User-Agent is taken from
// WIKIPEDIA_USER_AGENT; the Wikimedia API policy requires a descriptive
// one, so a project default is used when unset.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  util.GetEnvString("WIKIPEDIA_USER_AGENT", defaultUserAgent),
		cache:      make(map[string]*source.Article),
	}
}

// Fetch retrieves the article in the first requested language (English
// when none is given) and records the remaining requested languages as
// cross-language reference sources via the article's langlinks.
func (c *Client) Fetch(ctx context.Context, title string, languages []string) (*source.Article, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: article title is required", apperr.ErrInvalidInput)
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	primary := languages[0]

	key := primary + "|" + title

	c.cacheMu.RLock()
	if cached, ok := c.cache[key]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	result, err, _ := c.group.Do(key, func() (any, error) {
		c.cacheMu.RLock()
		if cached, ok := c.cache[key]; ok {
			c.cacheMu.RUnlock()
			return cached, nil
		}
		c.cacheMu.RUnlock()

		page, err := util.RetryWithContext(ctx, fetchMaxTries, func(ctx context.Context) (*apiPage, error) {
			return c.queryPage(ctx, primary, title)
		})
		if err != nil {
			return nil, err
		}

		article := articleFromPage(page, primary, languages[1:])

		c.cacheMu.Lock()
		c.cache[key] = article
		c.cacheMu.Unlock()

		logger.Debug("[Wikipedia] Fetched article",
			"title", article.Title,
			"sections", len(article.Sections),
			"references", len(article.References),
		)

		return article, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*source.Article), nil
}

type apiPage struct {
	PageID    int    `json:"pageid"`
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Missing   any    `json:"missing,omitempty"`
	LangLinks []struct {
		Lang  string `json:"lang"`
		Title string `json:"*"`
	} `json:"langlinks"`
}

type apiResponse struct {
	Query struct {
		Pages map[string]apiPage `json:"pages"`
	} `json:"query"`
}

// queryPage calls the action API for the plain-text extract and langlinks
// of one title.
func (c *Client) queryPage(ctx context.Context, language, title string) (*apiPage, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|langlinks")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("lllimit", "max")
	params.Set("format", "json")
	params.Set("titles", title)

	base := c.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language)
	}
	endpoint := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: wikipedia api returned status %d", apperr.ErrUpstream, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode api response: %w", err)
	}

	for _, page := range parsed.Query.Pages {
		if page.Missing != nil || page.PageID == 0 {
			return nil, fmt.Errorf("%w: article %q", apperr.ErrNotFound, title)
		}
		return &page, nil
	}
	return nil, fmt.Errorf("%w: article %q", apperr.ErrNotFound, title)
}

// articleFromPage splits the extract into summary and sections, converts
// reference-style sections into citation sources, and appends one
// cross-language source per requested extra language that the article
// actually links to.
func articleFromPage(page *apiPage, primary string, extraLanguages []string) *source.Article {
	summary, sections, referenceLines := splitExtract(page.Extract)

	article := &source.Article{
		Title:     page.Title,
		Summary:   summary,
		Sections:  sections,
		Languages: []string{primary},
	}

	for i, line := range referenceLines {
		article.References = append(article.References, source.Reference{
			ID:       fmt.Sprintf("ref%d", i+1),
			Label:    referenceLabel(line),
			Detail:   line,
			Language: primary,
		})
	}

	linked := make(map[string]string, len(page.LangLinks))
	for _, link := range page.LangLinks {
		linked[link.Lang] = link.Title
	}
	for _, lang := range extraLanguages {
		linkedTitle, ok := linked[lang]
		if !ok {
			continue
		}
		article.Languages = append(article.Languages, lang)
		article.References = append(article.References, source.Reference{
			ID:       fmt.Sprintf("lang-%s", lang),
			Label:    fmt.Sprintf("%s (%s)", linkedTitle, lang),
			Detail:   fmt.Sprintf("Cross-language edition: %s", linkedTitle),
			Language: lang,
		})
	}

	return article
}
