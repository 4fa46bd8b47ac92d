// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/pdiddy/market-digest/pkg/types"
)

// GoogleNewsEndpoint is the news search page. Tests point it at an
// httptest server.
var GoogleNewsEndpoint = "https://news.google.com/search"

const googleNewsBase = "https://news.google.com"

// The search results page changes class names often; every block selector
// is tried and their matches accumulate.
var (
	resultBlockSelectors = []string{
		"div.NiLAwe", "div.xrnccd", "article", "div.SbNwzf", "div[jscontroller]",
		"div.WjL5x", "c-wiz div.lBwEZb", "main article", "div.DBQmFf",
		"div[jsname='gKDw6b']", "div.XlKvRb", "div.ftJPW", "div.IBr9hb",
		"div.Oc0wGc", "div.vh5dYd",
	}
	resultTitleSelectors = []string{
		"h3 a", "h4 a", "a.VDXfz", "h3.ipQwMb a", "a[href*='articles']",
		"div.PsKE7e", "div.DY5T1d", "h4", "a.JtKRv", "div.vI3xob", "div.VDXfz",
	}
	resultSourceSelectors = []string{
		".SVJrMe", ".wsLqz", ".vr1PYe", "[data-n-tid]", ".KbnJ8", ".wEwyrc",
		".IH8v7", ".UOVrGd", ".GI74Re", ".MgUUmf",
	}
	resultTimeSelectors = []string{
		"time", ".WW6dff span", ".hvbAAd", ".LfVVr", ".ZoLQ5", "div[data-znc]", ".OSrXXb",
	}
)

const (
	resultLinkSelector = "a[href*='articles'], a[data-n-tid], a[jsname]"
	lastResortSelector = "a[href*='articles'], h3 a, h4 a"
	lastResortLimit    = 10
	minHeadlineRunes   = 16
	searchSourceName   = "Google News"
	recentTime         = "Recent"
)

// SearchProvider queries the news search page for each request.
type SearchProvider struct {
	catalog  *Catalog
	get      Getter
	log      logrus.FieldLogger
	endpoint string
}

// NewSearchProvider returns a provider for GoogleNewsEndpoint.
func NewSearchProvider(catalog *Catalog, get Getter, log logrus.FieldLogger) *SearchProvider {
	return &SearchProvider{
		catalog:  catalog,
		get:      get,
		log:      discardIfNil(log).WithField("provider", searchSourceName),
		endpoint: GoogleNewsEndpoint,
	}
}

// Name returns "Google News".
func (p *SearchProvider) Name() string { return searchSourceName }

// SearchURL builds the locale-aware search URL for req.
func (p *SearchProvider) SearchURL(req Request) string {
	return buildSearchURL(p.endpoint, p.catalog, req)
}

func buildSearchURL(endpoint string, catalog *Catalog, req Request) string {
	q := strings.TrimSpace(req.Query)
	loc := DefaultLocale
	if catalog != nil {
		if q == "" {
			q = catalog.DefaultQuery(req.Topic, req.Country)
		}
		loc = catalog.Locale(req.Country)
	}
	if q == "" {
		q = "stock market"
	}
	return fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s",
		endpoint, url.QueryEscape(q), loc.Language, loc.Region, url.QueryEscape(loc.Region+":en"))
}

// Fetch retrieves and parses one results page.
func (p *SearchProvider) Fetch(ctx context.Context, req Request) ([]types.Article, error) {
	u := p.SearchURL(req)
	body, err := p.get.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	articles, err := p.Extract(body)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"url": u, "count": len(articles)}).Debug("search page scraped")
	return articles, nil
}

// Extract parses a results page, dropping exact-title repeats.
func (p *SearchProvider) Extract(body []byte) ([]types.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	seenTitle := make(map[string]bool)
	var out []types.Article
	add := func(a types.Article) {
		if !Valid(a) || seenTitle[a.Title] {
			return
		}
		seenTitle[a.Title] = true
		out = append(out, a)
	}

	for _, block := range resultBlocks(doc) {
		a, ok := extractResult(block)
		if ok {
			add(a)
		}
	}

	if len(out) == 0 {
		anchors := doc.Find(lastResortSelector)
		anchors.Slice(0, min(lastResortLimit, anchors.Length())).Each(func(_ int, s *goquery.Selection) {
			text := collapse(s.Text())
			href, ok := s.Attr("href")
			if !ok || utf8.RuneCountInString(text) < minHeadlineRunes {
				return
			}
			add(NormalizeArticle(types.Article{
				Title:  text,
				URL:    NormalizeNewsURL(href),
				Source: types.Source{Name: searchSourceName},
				Time:   recentTime,
			}))
		})
		if len(out) > 0 {
			p.log.WithField("count", len(out)).Debug("result blocks empty, used headline anchors")
		}
	}
	return out, nil
}

// resultBlocks accumulates matches of every block selector, each DOM node
// once.
func resultBlocks(doc *goquery.Document) []*goquery.Selection {
	seen := make(map[*html.Node]bool)
	var out []*goquery.Selection
	for _, sel := range resultBlockSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if n := s.Get(0); !seen[n] {
				seen[n] = true
				out = append(out, s)
			}
		})
	}
	return out
}

func extractResult(block *goquery.Selection) (types.Article, bool) {
	var titleEl *goquery.Selection
	var title string
	for _, ts := range resultTitleSelectors {
		el := block.Find(ts).First()
		if t := collapse(el.Text()); t != "" {
			titleEl, title = el, t
			break
		}
	}
	if titleEl == nil {
		return types.Article{}, false
	}

	href, ok := titleEl.Closest("a").Attr("href")
	if !ok {
		href, ok = block.Find(resultLinkSelector).First().Attr("href")
	}
	if !ok {
		return types.Article{}, false
	}

	a := types.Article{
		Title: title,
		URL:   NormalizeNewsURL(href),
		Time:  recentTime,
	}
	for _, ss := range resultSourceSelectors {
		if s := collapse(block.Find(ss).First().Text()); s != "" {
			a.Source.Name = s
			break
		}
	}
	for _, ts := range resultTimeSelectors {
		el := block.Find(ts).First()
		if el.Length() == 0 {
			continue
		}
		if dt, ok := el.Attr("datetime"); ok {
			a.PublishedAt = dt
		}
		if t := collapse(el.Text()); t != "" {
			a.Time = t
		}
		break
	}
	return NormalizeArticle(a), true
}

// NormalizeNewsURL turns the link shapes found on the results page
// ("./articles/…", "/articles/…", absolute) into one absolute URL.
func NormalizeNewsURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "./"):
		return googleNewsBase + href[1:]
	case strings.HasPrefix(href, "/"):
		return googleNewsBase + href
	default:
		return googleNewsBase + "/" + href
	}
}
