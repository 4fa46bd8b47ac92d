// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/market-digest/pkg/types"
)

// GoogleNewsFeedEndpoint is the RSS flavour of the news search. Tests point
// it at an httptest server.
var GoogleNewsFeedEndpoint = "https://news.google.com/rss/search"

const feedSourceName = "Google News RSS"

// FeedProvider queries the news search RSS feed. Item titles carry the
// publisher as a " - Publisher" suffix, which becomes the source name.
type FeedProvider struct {
	catalog  *Catalog
	get      Getter
	log      logrus.FieldLogger
	endpoint string
}

// NewFeedProvider returns a provider for GoogleNewsFeedEndpoint.
func NewFeedProvider(catalog *Catalog, get Getter, log logrus.FieldLogger) *FeedProvider {
	return &FeedProvider{
		catalog:  catalog,
		get:      get,
		log:      discardIfNil(log).WithField("provider", feedSourceName),
		endpoint: GoogleNewsFeedEndpoint,
	}
}

// Name returns "Google News RSS".
func (p *FeedProvider) Name() string { return feedSourceName }

// Fetch retrieves and parses the feed for req.
func (p *FeedProvider) Fetch(ctx context.Context, req Request) ([]types.Article, error) {
	u := buildSearchURL(p.endpoint, p.catalog, req)
	body, err := p.get.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	articles, err := p.Extract(body)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"url": u, "count": len(articles)}).Debug("feed parsed")
	return articles, nil
}

// Extract parses an RSS or Atom document.
func (p *FeedProvider) Extract(body []byte) ([]types.Article, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	seen := make(map[string]bool)
	var out []types.Article
	for _, item := range feed.Items {
		title, source := splitPublisher(item.Title)
		a := types.Article{
			Title:   title,
			URL:     item.Link,
			Source:  types.Source{Name: source},
			Content: stripTags(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else {
			a.PublishedAt = item.Published
		}
		a = NormalizeArticle(a)
		if !Valid(a) || seen[a.Title] {
			continue
		}
		seen[a.Title] = true
		out = append(out, a)
	}
	return out, nil
}

// splitPublisher separates "Headline - Publisher".
func splitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return title[:i], title[i+3:]
}

// stripTags returns the text content of an HTML fragment.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
