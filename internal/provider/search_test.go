// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/market-digest/internal/httputil"
	"github.com/pdiddy/market-digest/pkg/types"
)

func TestSearchURL(t *testing.T) {
	p := NewSearchProvider(testCatalog(t), nil, nil)

	tests := []struct {
		name            string
		req             Request
		q, hl, gl, ceid string
	}{
		{"query default locale", Request{Query: "oil prices"}, "oil prices", "en-US", "US", "US:en"},
		{"india locale", Request{Query: "rbi policy", Country: "india"}, "rbi policy", "en-IN", "IN", "IN:en"},
		{"country default query", Request{Country: "us"}, "US stock market OR Dow Jones OR Nasdaq OR S&P 500 OR Wall Street", "en-US", "US", "US:en"},
		{"topic default query", Request{Topic: "ipo"}, "IPO OR initial public offering OR new listing", "en-US", "US", "US:en"},
		{"global default query", Request{}, "global stock market OR international finance OR world economy", "en-US", "US", "US:en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(p.SearchURL(tt.req))
			require.NoError(t, err)
			assert.Equal(t, "news.google.com", u.Host)
			assert.Equal(t, "/search", u.Path)
			v := u.Query()
			assert.Equal(t, tt.q, v.Get("q"))
			assert.Equal(t, tt.hl, v.Get("hl"))
			assert.Equal(t, tt.gl, v.Get("gl"))
			assert.Equal(t, tt.ceid, v.Get("ceid"))
		})
	}
}

func TestSearchExtract_AccumulatesBlocksAndDedups(t *testing.T) {
	p := NewSearchProvider(testCatalog(t), nil, nil)

	articles, err := p.Extract(readFixture(t, "search_results.html"))
	require.NoError(t, err)
	require.Len(t, articles, 3, "repeated title is dropped within one fetch")

	gold := articles[0]
	assert.Equal(t, "Gold prices rise", gold.Title)
	assert.Equal(t, "https://example.com/gold", gold.URL, "falls back to the block's link selector")
	assert.Equal(t, types.DefaultSourceName, gold.Source.Name)
	assert.Equal(t, "Recent", gold.Time)

	dow := articles[1]
	assert.Equal(t, "Dow Jones climbs 1.5% after strong jobs data", dow.Title)
	assert.Equal(t, "https://news.google.com/articles/CBMiAbc?hl=en-US", dow.URL)
	assert.Equal(t, "Reuters", dow.Source.Name)
	assert.Equal(t, "2026-03-09T14:00:00Z", dow.PublishedAt)
	assert.Equal(t, "2 hours ago", dow.Time)

	nasdaq := articles[2]
	assert.Equal(t, "Nasdaq slips 0.7% as tech shares retreat", nasdaq.Title)
	assert.Equal(t, "https://news.google.com/articles/CBMiDef", nasdaq.URL)
	assert.Equal(t, "Bloomberg", nasdaq.Source.Name)
}

func TestSearchExtract_LastResortAnchors(t *testing.T) {
	p := NewSearchProvider(testCatalog(t), nil, nil)

	articles, err := p.Extract(readFixture(t, "search_anchors.html"))
	require.NoError(t, err)
	require.Len(t, articles, 2, "short anchor text is not a headline")

	assert.Equal(t, "Sensex hits a fresh record high today", articles[0].Title)
	assert.Equal(t, "https://news.google.com/articles/two", articles[0].URL)
	assert.Equal(t, "Google News", articles[0].Source.Name)
	assert.Equal(t, "Rupee weakens against the dollar again", articles[1].Title)
}

func TestSearchExtract_EmptyPage(t *testing.T) {
	p := NewSearchProvider(testCatalog(t), nil, nil)
	articles, err := p.Extract([]byte("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestSearchFetch_HTTP(t *testing.T) {
	body := readFixture(t, "search_results.html")
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write(body)
	}))
	defer ts.Close()

	old := GoogleNewsEndpoint
	GoogleNewsEndpoint = ts.URL + "/search"
	defer func() { GoogleNewsEndpoint = old }()

	get := httputil.NewFetcher(types.HTTPConfig{}).WithClient(ts.Client())
	p := NewSearchProvider(testCatalog(t), get, nil)

	articles, err := p.Fetch(context.Background(), Request{Query: "dow jones", Country: "us"})
	require.NoError(t, err)
	assert.Len(t, articles, 3)
	assert.Equal(t, "dow jones", gotQuery.Get("q"))
	assert.Equal(t, "US:en", gotQuery.Get("ceid"))
}

func TestSearchFetch_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	old := GoogleNewsEndpoint
	GoogleNewsEndpoint = ts.URL
	defer func() { GoogleNewsEndpoint = old }()

	get := httputil.NewFetcher(types.HTTPConfig{}).WithClient(ts.Client())
	p := NewSearchProvider(testCatalog(t), get, nil)

	articles, err := p.Fetch(context.Background(), Request{Query: "x"})
	assert.Empty(t, articles)
	assert.ErrorIs(t, err, httputil.ErrStatus)
}
