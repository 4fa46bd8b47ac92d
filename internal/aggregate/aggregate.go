// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans a request out to the source providers, merges
// their articles in provider order, removes duplicate headlines, ranks by
// query relevance or recency, and bounds the result count.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/iter"

	"github.com/pdiddy/market-digest/internal/provider"
	"github.com/pdiddy/market-digest/internal/textutil"
	"github.com/pdiddy/market-digest/pkg/types"
)

// ErrTimeout marks a provider that did not answer within the provider
// timeout.
var ErrTimeout = errors.New("provider timed out")

// cancelGrace is how long a provider may keep running after the caller's
// context ends so that articles it already has are not lost.
var cancelGrace = 200 * time.Millisecond

// Query is one aggregation request. All fields are optional.
type Query struct {
	// Text is the free-text query. When set, articles are filtered and
	// ranked by relevance.
	Text string

	// Country scopes the site providers and the search locale.
	Country string

	// Topic picks the default search query and, when Country is empty,
	// the country scope.
	Topic string
}

// Output holds the ranked articles and merge statistics.
type Output struct {
	Articles       []types.Article
	Fetched        int
	DupsRemoved    int
	ProviderErrors []string
}

// Sources selects the providers for a country scope. provider.Set
// implements it.
type Sources interface {
	Select(country string) []provider.Provider
}

// Classifier maps free text to a country. *provider.Catalog implements it.
type Classifier interface {
	CountryFor(text string) string
}

// Aggregator runs providers and merges their output.
type Aggregator struct {
	sources    Sources
	classifier Classifier
	cfg        types.AggregateConfig
	log        logrus.FieldLogger

	// now is replaced in tests.
	now func() time.Time
}

// New returns an Aggregator. classifier may be nil. Zero config fields take
// types.DefaultConfig values.
func New(sources Sources, classifier Classifier, cfg types.AggregateConfig, log logrus.FieldLogger) *Aggregator {
	def := types.DefaultConfig().Aggregate
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = def.ProviderTimeout
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Aggregator{
		sources:    sources,
		classifier: classifier,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Resolve fills in Country from Topic when the caller gave no country.
func (a *Aggregator) Resolve(q Query) Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Country = strings.ToLower(strings.TrimSpace(q.Country))
	q.Topic = strings.ToLower(strings.TrimSpace(q.Topic))
	if q.Country == "" && q.Topic != "" && a.classifier != nil {
		q.Country = a.classifier.CountryFor(q.Topic)
	}
	return q
}

// Aggregate fetches from the providers selected for q, then merges,
// deduplicates, ranks and truncates. Provider failures and timeouts are
// logged and reported in Output.ProviderErrors; they never fail the call.
// If ctx ends early, the articles collected so far are ranked and returned.
// The error is non-nil only when no provider is configured.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (Output, error) {
	q = a.Resolve(q)
	providers := a.sources.Select(q.Country)
	if len(providers) == 0 {
		return Output{}, fmt.Errorf("no news providers configured")
	}

	results := a.fetchAll(ctx, providers, provider.Request{Query: q.Text, Country: q.Country, Topic: q.Topic})

	var all []types.Article
	var providerErrors []string
	for _, r := range results {
		if r.err != nil {
			providerErrors = append(providerErrors, fmt.Sprintf("%s: %v", r.name, r.err))
			a.log.WithField("provider", r.name).WithError(r.err).Warn("provider failed")
		}
		all = append(all, r.articles...)
	}

	deduped, removed := Deduplicate(all)

	var ranked []types.Article
	if q.Text != "" {
		ranked = RankByRelevance(deduped, q.Text)
	} else {
		ranked = SortByRecency(deduped, a.now())
	}

	if len(ranked) > a.cfg.Limit {
		ranked = ranked[:a.cfg.Limit]
	}

	a.log.WithFields(logrus.Fields{
		"providers": len(providers),
		"fetched":   len(all),
		"dups":      removed,
		"returned":  len(ranked),
	}).Info("aggregation complete")

	return Output{
		Articles:       ranked,
		Fetched:        len(all),
		DupsRemoved:    removed,
		ProviderErrors: providerErrors,
	}, nil
}

type fetchResult struct {
	name     string
	articles []types.Article
	err      error
}

// fetchAll runs providers on a bounded pool. Results keep provider order.
func (a *Aggregator) fetchAll(ctx context.Context, providers []provider.Provider, req provider.Request) []fetchResult {
	mapper := iter.Mapper[provider.Provider, fetchResult]{MaxGoroutines: a.cfg.Workers}
	return mapper.Map(providers, func(p *provider.Provider) fetchResult {
		return a.fetchOne(ctx, *p, req)
	})
}

// fetchOne bounds one provider by the provider timeout. The provider runs
// in its own goroutine so one that ignores its context cannot stall the
// pool.
func (a *Aggregator) fetchOne(ctx context.Context, p provider.Provider, req provider.Request) fetchResult {
	name := p.Name()
	if err := ctx.Err(); err != nil {
		return fetchResult{name: name, err: err}
	}

	pctx, cancel := context.WithTimeout(ctx, a.cfg.ProviderTimeout)
	defer cancel()

	ch := make(chan fetchResult, 1)
	go func() {
		r := fetchResult{name: name}
		defer func() {
			if v := recover(); v != nil {
				r.articles, r.err = nil, fmt.Errorf("provider panicked: %v", v)
			}
			ch <- r
		}()
		r.articles, r.err = p.Fetch(pctx, req)
	}()

	select {
	case r := <-ch:
		return r
	case <-pctx.Done():
	}

	if ctx.Err() != nil {
		t := time.NewTimer(cancelGrace)
		defer t.Stop()
		select {
		case r := <-ch:
			return r
		case <-t.C:
		}
		return fetchResult{name: name, err: ctx.Err()}
	}
	return fetchResult{name: name, err: fmt.Errorf("%w after %v", ErrTimeout, a.cfg.ProviderTimeout)}
}

// Deduplicate drops articles whose folded title matches an earlier one.
// The first occurrence wins. Articles whose title folds to nothing are
// keyed by URL instead.
func Deduplicate(articles []types.Article) ([]types.Article, int) {
	seen := make(map[string]bool, len(articles))
	out := make([]types.Article, 0, len(articles))
	removed := 0
	for _, art := range articles {
		key := "title:" + textutil.FoldTitle(art.Title)
		if key == "title:" {
			key = "url:" + art.URL
		}
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, art)
	}
	return out, removed
}

// RankByRelevance scores each article by the fraction of query terms found
// in its cleaned title and content, drops zero scores, and stable-sorts by
// score. A query made only of stopwords matches nothing.
func RankByRelevance(articles []types.Article, query string) []types.Article {
	terms := textutil.Terms(query)
	if len(terms) == 0 {
		return nil
	}

	var out []types.Article
	for _, art := range articles {
		text := textutil.Clean(art.Text())
		matches := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(len(terms))
		art.RelevanceScore = &score
		out = append(out, art)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	return out
}

// SortByRecency stable-sorts articles newest first. Articles without a
// parsable timestamp keep their merge order after the dated ones.
func SortByRecency(articles []types.Article, now time.Time) []types.Article {
	type dated struct {
		art types.Article
		at  time.Time
		ok  bool
	}
	ds := make([]dated, len(articles))
	for i, art := range articles {
		at, ok := art.Published(now)
		ds[i] = dated{art: art, at: at, ok: ok}
	}

	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].ok != ds[j].ok {
			return ds[i].ok
		}
		return ds[i].ok && ds[i].at.After(ds[j].at)
	})

	out := make([]types.Article, len(ds))
	for i, d := range ds {
		out[i] = d.art
	}
	return out
}
