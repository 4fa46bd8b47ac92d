// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one digest: aggregate articles, summarize each,
// analyze the set and render the message, falling back to the basic
// layout when analysis fails.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/market-digest/internal/aggregate"
	"github.com/pdiddy/market-digest/internal/analyze"
	"github.com/pdiddy/market-digest/internal/digest"
	"github.com/pdiddy/market-digest/internal/store"
	"github.com/pdiddy/market-digest/pkg/types"
)

// NoNews is the digest returned when aggregation yields no articles.
const NoNews = "No news articles found."

// FallbackSummary replaces the analysis summary when analysis fails.
const FallbackSummary = "Market news summary unavailable."

// Aggregator is the article source. *aggregate.Aggregator implements it.
type Aggregator interface {
	Resolve(q aggregate.Query) aggregate.Query
	Aggregate(ctx context.Context, q aggregate.Query) (aggregate.Output, error)
}

// Analyzer derives the analysis. *analyze.Analyzer implements it.
type Analyzer interface {
	Analyze(articles []types.Article, query, country string) types.AnalysisResult
}

// Result is the outcome of one run.
type Result struct {
	RunID          string               `json:"run_id"`
	Query          aggregate.Query      `json:"query"`
	Digest         string               `json:"digest"`
	Count          int                  `json:"count"`
	Articles       []types.Article      `json:"articles"`
	Analysis       types.AnalysisResult `json:"analysis"`
	ProviderErrors []string             `json:"provider_errors,omitempty"`

	// Fallback is set when the digest used the basic layout.
	Fallback bool `json:"fallback,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Pipeline chains the stages of a run.
type Pipeline struct {
	agg Aggregator
	an  Analyzer
	cfg types.Config
	log logrus.FieldLogger

	// Replaced in tests.
	now   func() time.Time
	newID func() string
}

// New returns a Pipeline. Zero timeouts and digest limits take
// types.DefaultConfig values.
func New(agg Aggregator, an Analyzer, cfg types.Config, log logrus.FieldLogger) *Pipeline {
	def := types.DefaultConfig()
	if cfg.Pipeline.Timeout <= 0 {
		cfg.Pipeline.Timeout = def.Pipeline.Timeout
	}
	if cfg.Digest.MaxLength <= 0 {
		cfg.Digest.MaxLength = def.Digest.MaxLength
	}
	if cfg.Digest.MaxArticles <= 0 {
		cfg.Digest.MaxArticles = def.Digest.MaxArticles
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if an == nil {
		an = analyze.New(log)
	}
	return &Pipeline{
		agg:   agg,
		an:    an,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Run produces a digest for q. The run is bounded by the pipeline timeout;
// when it expires the articles gathered so far are used. An error is
// returned only when aggregation cannot start (no providers).
func (p *Pipeline) Run(ctx context.Context, q aggregate.Query) (Result, error) {
	res := Result{RunID: p.newID(), StartedAt: p.now()}
	log := p.log.WithField("run_id", res.RunID)

	q = p.agg.Resolve(q)
	res.Query = q

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Pipeline.Timeout)
	defer cancel()

	out, err := p.agg.Aggregate(ctx, q)
	if err != nil {
		return res, fmt.Errorf("aggregating news: %w", err)
	}
	res.ProviderErrors = out.ProviderErrors

	if len(out.Articles) == 0 {
		log.Warn("no articles found")
		res.Digest = NoNews
		res.FinishedAt = p.now()
		return res, nil
	}

	articles := make([]types.Article, len(out.Articles))
	for i, a := range out.Articles {
		if a.Summary == "" {
			a.Summary = analyze.Summarize(a)
		}
		articles[i] = a
	}
	res.Articles = articles
	res.Count = len(articles)

	opts := digest.Options{
		MaxArticles: p.cfg.Digest.MaxArticles,
		MaxLength:   p.cfg.Digest.MaxLength,
		Now:         p.now,
	}

	analysis, msg, err := p.render(articles, q, opts)
	if err != nil {
		log.WithError(err).Error("analysis failed, using basic format")
		res.Fallback = true
		res.Analysis = types.AnalysisResult{Summary: FallbackSummary}
		res.Digest = digest.FormatBasic(articles, fallbackTitle(q), digest.Options{
			MaxLength: p.cfg.Digest.MaxLength,
			Now:       p.now,
		})
	} else {
		res.Analysis = analysis
		res.Digest = msg
	}
	res.FinishedAt = p.now()

	log.WithFields(logrus.Fields{
		"count":    res.Count,
		"length":   utf8.RuneCountInString(res.Digest),
		"fallback": res.Fallback,
	}).Info("digest ready")
	return res, nil
}

// render runs analysis and the full layout, turning a panic in either into
// an error.
func (p *Pipeline) render(articles []types.Article, q aggregate.Query, opts digest.Options) (analysis types.AnalysisResult, msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	query := q.Text
	if query == "" {
		query = q.Topic
	}
	analysis = p.an.Analyze(articles, query, q.Country)
	msg = digest.Format(articles, analysis, Title(q), opts)
	return analysis, msg, nil
}

// Title names a digest after its scope.
func Title(q aggregate.Query) string {
	if q.Topic != "" {
		switch q.Country {
		case "us":
			return "🇺🇸 US Market News"
		case "india":
			return "🇮🇳 Indian Market News"
		}
		return fmt.Sprintf("📈 %s News", cases.Title(language.English).String(q.Topic))
	}
	return "📰 Market News" + countrySuffix(q.Country)
}

func fallbackTitle(q aggregate.Query) string {
	return "📰 Latest Market News" + countrySuffix(q.Country)
}

func countrySuffix(country string) string {
	if country == "" {
		return ""
	}
	return " - " + strings.ToUpper(country)
}

// RunRecord returns the run metadata kept in history.
func (r Result) RunRecord() store.Run {
	return store.Run{
		ID:             r.RunID,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Query:          r.Query.Text,
		Country:        r.Query.Country,
		Topic:          r.Query.Topic,
		ArticleCount:   r.Count,
		DigestLength:   utf8.RuneCountInString(r.Digest),
		Fallback:       r.Fallback,
		ProviderErrors: r.ProviderErrors,
	}
}
