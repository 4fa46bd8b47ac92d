// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the market-digest pipeline:
// the normalized Article produced by source providers, the AnalysisResult
// derived from a set of articles, and the configuration for each stage.
package types

// DefaultSourceName is the source name given to articles whose origin could
// not be determined.
const DefaultSourceName = "Unknown"

// Source identifies the site an article was taken from.
type Source struct {
	// Name is the display name of the site (e.g. "MoneyControl", "Google News").
	Name string `json:"name" yaml:"name"`
}

// Article is one scraped news item in normalized form. Providers construct a
// fresh set of Articles per pipeline run; none are persisted.
type Article struct {
	// Title is the headline text, whitespace-collapsed.
	Title string `json:"title" yaml:"title"`

	// URL is the absolute link to the article.
	URL string `json:"url" yaml:"url"`

	// Source names the site the article came from.
	Source Source `json:"source" yaml:"source"`

	// PublishedAt is an optional machine-parsable timestamp (RFC 3339 or any
	// layout accepted by ParsePublished).
	PublishedAt string `json:"publishedAt" yaml:"published_at"`

	// Time is optional human-readable recency text ("2 hours ago"), used when
	// PublishedAt is absent.
	Time string `json:"time" yaml:"time"`

	// Content is optional body or snippet text.
	Content string `json:"content" yaml:"content"`

	// Summary is a short text derived from Content.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// RelevanceScore is the fraction of query terms found in the article,
	// set only when a query filter was applied.
	RelevanceScore *float64 `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
}

// Score returns the relevance score, or 0 when none was assigned.
func (a Article) Score() float64 {
	if a.RelevanceScore == nil {
		return 0
	}
	return *a.RelevanceScore
}

// Text returns the title and content joined for term matching.
func (a Article) Text() string {
	if a.Content == "" {
		return a.Title
	}
	return a.Title + " " + a.Content
}
