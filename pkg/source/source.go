// Package source defines the article model produced by content fetchers
// and the Fetcher interface the graph build service consumes.
package source

import "context"

// Section is one titled text unit of an article.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	// Level is the heading depth, 1 for top-level sections. 0 is reserved
	// for the article summary.
	Level int `json:"level"`
}

// Reference is a cited source backing parts of an article.
type Reference struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Detail   string `json:"detail"`
	Language string `json:"language"`
	// SectionIDs lists the sections this reference supports, when known.
	SectionIDs []string `json:"section_ids,omitempty"`
	// Strength is the citation confidence in [0,1]; 0 means unknown.
	Strength float64 `json:"strength,omitempty"`
}

// Article is the normalized fetch result for one topic.
type Article struct {
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Sections   []Section   `json:"sections"`
	References []Reference `json:"references"`
	// Languages lists the language editions the article was assembled
	// from.
	Languages []string `json:"languages"`
}

// Fetcher retrieves an article for a topic. Implementations resolve the
// title within each requested language edition; an empty languages slice
// means English only.
type Fetcher interface {
	Fetch(ctx context.Context, title string, languages []string) (*Article, error)
}
