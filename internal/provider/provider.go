// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider turns external news pages into normalized articles. Each
// Provider wraps one source: a fixed set of site pages scraped with a
// selector chain, or a news search endpoint queried per request. Selector
// configuration is data (see sources.yaml), so adding a site needs no new
// type.
package provider

import (
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/market-digest/pkg/types"
)

// NoTitle is the placeholder title given to articles without a headline.
const NoTitle = "No title"

// Provider fetches articles from a single external source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]types.Article, error)
}

// Request scopes a fetch. All fields are optional.
type Request struct {
	// Query is free text; search providers send it to the endpoint.
	Query string

	// Country selects locale and default query (e.g. "us", "india").
	Country string

	// Topic selects a default query when Query is empty (e.g. "crypto").
	Topic string
}

// NormalizeArticle returns a with every field in its canonical shape: title,
// URL, time and content trimmed and whitespace-collapsed, an empty title
// replaced by NoTitle, and an empty source name replaced by
// types.DefaultSourceName.
func NormalizeArticle(a types.Article) types.Article {
	a.Title = collapse(a.Title)
	if a.Title == "" {
		a.Title = NoTitle
	}
	a.URL = strings.TrimSpace(a.URL)
	a.Source.Name = collapse(a.Source.Name)
	if a.Source.Name == "" {
		a.Source.Name = types.DefaultSourceName
	}
	a.PublishedAt = strings.TrimSpace(a.PublishedAt)
	a.Time = collapse(a.Time)
	a.Content = collapse(a.Content)
	return a
}

// Valid reports whether a normalized article may be surfaced: it has a real
// title and a URL.
func Valid(a types.Article) bool {
	return a.Title != "" && a.Title != NoTitle && a.URL != ""
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// discardIfNil returns log, or a logger that writes nowhere when log is nil.
func discardIfNil(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
