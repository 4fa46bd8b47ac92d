// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const etPage = "https://economictimes.indiatimes.com/markets/stocks/news"

func etConfig() SiteConfig {
	return SiteConfig{
		Key:  "economic_times",
		Name: "Economic Times",
		URLs: []string{etPage},
		Selectors: Selectors{
			Article: ".eachStory, .story-box",
			Title:   "h3 a, .story-title",
			Link:    "h3 a, .story-title a",
			Time:    ".date-format, .story-date",
		},
	}
}

func TestSiteExtract_PrimarySelectors(t *testing.T) {
	p := NewSiteProvider(etConfig(), testCatalog(t), nil, nil)

	articles, err := p.Extract(etPage, readFixture(t, "site_primary.html"))
	require.NoError(t, err)
	require.Len(t, articles, 2, "container without a headline is skipped")

	a := articles[0]
	assert.Equal(t, "Sensex rises 500 points on positive global cues", a.Title)
	assert.Equal(t, "https://economictimes.indiatimes.com/markets/stocks/news/sensex-rises/articleshow/1.cms", a.URL)
	assert.Equal(t, "Economic Times", a.Source.Name)
	assert.Equal(t, "2026-03-09T08:30:00Z", a.PublishedAt)
	assert.Equal(t, "Mar 9, 2026", a.Time)
	assert.Equal(t, "Benchmark indices gained 0.8% as banks rallied.", a.Content)

	b := articles[1]
	assert.Equal(t, "Nifty ends flat", b.Title)
	assert.Equal(t, "https://economictimes.indiatimes.com/markets/nifty.cms", b.URL, "protocol-relative link takes page scheme")
	assert.Equal(t, "2 hours ago", b.Time)
	assert.Empty(t, b.PublishedAt)
}

func TestSiteExtract_MaxArticles(t *testing.T) {
	cfg := etConfig()
	cfg.MaxArticles = 1
	p := NewSiteProvider(cfg, testCatalog(t), nil, nil)

	articles, err := p.Extract(etPage, readFixture(t, "site_primary.html"))
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestSiteExtract_FallsBackToGenericSelectors(t *testing.T) {
	cfg := SiteConfig{
		Key:       "example",
		Name:      "Example",
		URLs:      []string{"https://example.com/markets"},
		Selectors: Selectors{Article: ".does-not-exist", Title: "h2 a", Link: "h2 a"},
	}
	p := NewSiteProvider(cfg, testCatalog(t), nil, nil)

	articles, err := p.Extract("https://example.com/markets", readFixture(t, "site_fallback.html"))
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Crude oil hits $80", articles[0].Title)
	assert.Equal(t, "https://example.com/news/crude-oil.html", articles[0].URL)

	// No heading: the first anchor with text wins, blank anchors are skipped.
	assert.Equal(t, "Gold steadies near record", articles[1].Title)
	assert.Equal(t, "https://example.com/news/gold.html", articles[1].URL)
}

func TestSiteExtract_FallsBackToHeadings(t *testing.T) {
	cfg := SiteConfig{
		Key:       "example",
		Name:      "Example",
		URLs:      []string{"https://example.com/"},
		Selectors: Selectors{Article: ".nope", Title: ".nope", Link: ".nope"},
	}
	p := NewSiteProvider(cfg, testCatalog(t), nil, nil)

	articles, err := p.Extract("https://example.com/", readFixture(t, "site_headings.html"))
	require.NoError(t, err)
	require.Len(t, articles, 4, "heading without any link is ignored")

	assert.Equal(t, "Markets wrap: Dow gains 1.2%", articles[0].Title)
	assert.Equal(t, "https://example.com/wrap", articles[0].URL, "link taken from heading's parent")
	assert.Equal(t, "Fed holds rates steady", articles[1].Title)
	assert.Equal(t, "https://example.com/fed", articles[1].URL)
	assert.Equal(t, "Sensex jumps 2% on foreign inflows", articles[2].Title)
	assert.Equal(t, "https://example.com/news/sensex-up", articles[2].URL, "link wrapping the heading")
	assert.Equal(t, "Gold slips as dollar firms", articles[3].Title)
	assert.Equal(t, "https://example.com/news/gold", articles[3].URL, "wrapping link directly under body")
}

func TestSiteExtract_NothingToFind(t *testing.T) {
	p := NewSiteProvider(etConfig(), testCatalog(t), nil, nil)
	articles, err := p.Extract(etPage, []byte("<html><body><p>maintenance</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestSiteFetch_SkipsFailingURL(t *testing.T) {
	cfg := etConfig()
	cfg.URLs = []string{"https://economictimes.indiatimes.com/down", etPage}
	get := &fakeGetter{pages: map[string][]byte{etPage: readFixture(t, "site_primary.html")}}
	p := NewSiteProvider(cfg, testCatalog(t), get, nil)

	articles, err := p.Fetch(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, cfg.URLs, get.calls)
}

func TestSiteFetch_AllURLsFail(t *testing.T) {
	boom := errors.New("connection refused")
	get := &fakeGetter{errs: map[string]error{etPage: boom}}
	p := NewSiteProvider(etConfig(), testCatalog(t), get, nil)

	articles, err := p.Fetch(context.Background(), Request{})
	assert.Empty(t, articles)
	assert.ErrorIs(t, err, boom)
}

func TestSiteFetch_CancelledContext(t *testing.T) {
	get := &fakeGetter{}
	p := NewSiteProvider(etConfig(), testCatalog(t), get, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	articles, err := p.Fetch(ctx, Request{})
	assert.Empty(t, articles)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, get.calls)
}

func TestSiteExtract_EveryArticleHasTitleAndURL(t *testing.T) {
	p := NewSiteProvider(etConfig(), testCatalog(t), nil, nil)
	for _, fixture := range []string{"site_primary.html", "site_fallback.html", "site_headings.html"} {
		articles, err := p.Extract(etPage, readFixture(t, fixture))
		require.NoError(t, err)
		for _, a := range articles {
			assert.NotEmpty(t, a.Title, fixture)
			assert.NotEqual(t, NoTitle, a.Title, fixture)
			assert.NotEmpty(t, a.URL, fixture)
			assert.NotEmpty(t, a.Source.Name, fixture)
			assert.Equal(t, a, NormalizeArticle(a))
		}
	}
}

func TestSiteProviderName(t *testing.T) {
	p := NewSiteProvider(etConfig(), nil, nil, nil)
	assert.Equal(t, "Economic Times", p.Name())
	assert.Equal(t, "economic_times", p.Key())
	var _ Provider = p
}
