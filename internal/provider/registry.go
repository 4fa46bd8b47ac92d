// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/market-digest/pkg/types"
)

// Set is the configured provider list. Site providers can be scoped by
// country; query providers (search, feed) always run and receive the
// country as a locale hint.
type Set struct {
	Sites     []*SiteProvider
	Queries   []Provider
	Countries map[string][]string
}

// Build constructs one SiteProvider per catalog site plus the query
// providers enabled in cfg.
func Build(catalog *Catalog, cfg types.ProvidersConfig, get Getter, log logrus.FieldLogger) Set {
	set := Set{Countries: catalog.Countries}
	for _, sc := range catalog.Sites {
		set.Sites = append(set.Sites, NewSiteProvider(sc, catalog, get, log))
	}
	if cfg.Search {
		set.Queries = append(set.Queries, NewSearchProvider(catalog, get, log))
	}
	if cfg.Feed {
		set.Queries = append(set.Queries, NewFeedProvider(catalog, get, log))
	}
	return set
}

// Select returns the providers for a country scope: the country's mapped
// sites in table order plus every query provider. An unmapped or empty
// country selects everything.
func (s Set) Select(country string) []Provider {
	keys, ok := s.Countries[strings.ToLower(country)]
	if !ok || len(keys) == 0 {
		return s.All()
	}

	byKey := make(map[string]*SiteProvider, len(s.Sites))
	for _, sp := range s.Sites {
		byKey[sp.Key()] = sp
	}
	var out []Provider
	for _, k := range keys {
		if sp, ok := byKey[k]; ok {
			out = append(out, sp)
		}
	}
	return append(out, s.Queries...)
}

// All returns every provider, sites first.
func (s Set) All() []Provider {
	out := make([]Provider, 0, len(s.Sites)+len(s.Queries))
	for _, sp := range s.Sites {
		out = append(out, sp)
	}
	return append(out, s.Queries...)
}
