// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/market-digest/pkg/types"
)

func providerNames(ps []Provider) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}

func TestBuildAndSelect(t *testing.T) {
	set := Build(testCatalog(t), types.ProvidersConfig{Search: true, Feed: true}, &fakeGetter{}, nil)

	assert.Len(t, set.All(), 8)
	assert.Equal(t,
		[]string{"MoneyControl", "Financial Express", "Economic Times", "Google News", "Google News RSS"},
		providerNames(set.Select("India")))
	assert.Equal(t,
		[]string{"Yahoo Finance", "CNBC", "MarketWatch", "Google News", "Google News RSS"},
		providerNames(set.Select("us")))
	assert.Len(t, set.Select("global"), 8, "unmapped country selects every provider")
	assert.Len(t, set.Select(""), 8)
}

func TestBuild_QueryProvidersOptional(t *testing.T) {
	set := Build(testCatalog(t), types.ProvidersConfig{}, &fakeGetter{}, nil)
	assert.Empty(t, set.Queries)
	assert.Len(t, set.All(), 6)
}
