// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedExtract(t *testing.T) {
	p := NewFeedProvider(testCatalog(t), nil, nil)

	articles, err := p.Extract(readFixture(t, "feed.xml"))
	require.NoError(t, err)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, "Sensex rises 500 points on positive global cues", a.Title)
	assert.Equal(t, "The Economic Times", a.Source.Name)
	assert.Equal(t, "https://news.google.com/rss/articles/abc", a.URL)
	assert.Equal(t, "2026-03-09T08:30:00Z", a.PublishedAt)
	assert.Contains(t, a.Content, "Sensex rises")
	assert.NotContains(t, a.Content, "<a")

	assert.Equal(t, "Nifty ends flat", articles[1].Title)
	assert.Equal(t, "Reuters", articles[1].Source.Name)
}

func TestFeedExtract_Malformed(t *testing.T) {
	p := NewFeedProvider(testCatalog(t), nil, nil)
	_, err := p.Extract([]byte("this is not a feed"))
	assert.Error(t, err)
}

func TestFeedFetch_UsesRSSEndpoint(t *testing.T) {
	feedURL := "https://news.google.com/rss/search"
	get := &fakeGetter{pages: map[string][]byte{}}
	p := NewFeedProvider(testCatalog(t), get, nil)

	u := buildSearchURL(feedURL, testCatalog(t), Request{Query: "nifty", Country: "india"})
	get.pages[u] = readFixture(t, "feed.xml")

	articles, err := p.Fetch(context.Background(), Request{Query: "nifty", Country: "india"})
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	require.Len(t, get.calls, 1)
	assert.True(t, strings.HasPrefix(get.calls[0], feedURL+"?q=nifty&hl=en-IN&gl=IN"))
}

func TestSplitPublisher(t *testing.T) {
	title, source := splitPublisher("Fed - ECB - divergence deepens - Financial Times")
	assert.Equal(t, "Fed - ECB - divergence deepens", title)
	assert.Equal(t, "Financial Times", source)

	title, source = splitPublisher("No publisher")
	assert.Equal(t, "No publisher", title)
	assert.Equal(t, "", source)
}
