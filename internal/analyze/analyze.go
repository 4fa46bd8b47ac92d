// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze derives a market summary from a set of articles: key
// headlines, index movements with their stated causes, recurring themes and
// trending market terms. Every heuristic is pure string work over the
// articles passed in; nothing is fetched or remembered between calls.
package analyze

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/market-digest/internal/textutil"
	"github.com/pdiddy/market-digest/pkg/types"
)

const (
	maxKeyPoints = 3
	maxThemes    = 3
	maxTrending  = 5
	minThemeLen  = 4
)

// Fixed text used when the heuristics have nothing to report.
const (
	NoArticlesSummary = "No articles available for analysis."
	NoInsights        = "No significant market insights detected from recent news."
	LatestSummary     = "Here's the latest from the financial markets:"
)

// Analyzer runs the heuristics and logs heuristics that fail.
type Analyzer struct {
	log logrus.FieldLogger
}

// New returns an Analyzer. A nil log discards output.
func New(log logrus.FieldLogger) *Analyzer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Analyzer{log: log}
}

// Analyze is New(nil).Analyze.
func Analyze(articles []types.Article, query, country string) types.AnalysisResult {
	return New(nil).Analyze(articles, query, country)
}

// Analyze builds the result for articles. query and country are optional;
// country restricts movement detection to that country's indices and scopes
// the trending vocabulary. A failing heuristic contributes nothing.
func (an *Analyzer) Analyze(articles []types.Article, query, country string) types.AnalysisResult {
	if len(articles) == 0 {
		return types.AnalysisResult{Summary: NoArticlesSummary}
	}
	country = strings.ToLower(strings.TrimSpace(country))

	var res types.AnalysisResult
	an.guard("key_points", func() { res.KeyPoints = keyPoints(articles) })
	an.guard("movements", func() { res.Movements = movements(articles, country) })
	an.guard("themes", func() { res.Themes = themes(articles) })
	an.guard("trending", func() { res.TrendingTopics = trending(articles, country) })

	res.Summary = summaryLine(query, res.TrendingTopics)
	res.Insights = insights(res.Movements, res.Themes, res.TrendingTopics)
	return res
}

// guard runs fn and turns a panic into a logged warning.
func (an *Analyzer) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			an.log.WithField("heuristic", name).Warnf("analysis heuristic failed: %v", r)
		}
	}()
	fn()
}

// keyPoints returns up to three distinct titles with ellipses removed.
func keyPoints(articles []types.Article) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range articles {
		t := strings.ReplaceAll(a.Title, "...", "")
		t = strings.TrimSpace(strings.ReplaceAll(t, "…", ""))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == maxKeyPoints {
			break
		}
	}
	return out
}

type counted struct {
	word  string
	count int
	first int
}

// themes returns the most frequent title words longer than three letters
// that occur at least twice. Ties keep first-seen order.
func themes(articles []types.Article) []string {
	counts := make(map[string]*counted)
	var order []*counted
	for _, a := range articles {
		for _, w := range textutil.Words(a.Title) {
			if utf8.RuneCountInString(w) < minThemeLen || textutil.IsStopword(w) {
				continue
			}
			c, ok := counts[w]
			if !ok {
				c = &counted{word: w, first: len(order)}
				counts[w] = c
				order = append(order, c)
			}
			c.count++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].count > order[j].count })
	var out []string
	for _, c := range order {
		if c.count < 2 || len(out) == maxThemes {
			break
		}
		out = append(out, c.word)
	}
	return out
}

// trending counts market vocabulary once per article and returns the top
// display names, most frequent first.
func trending(articles []types.Article, country string) []string {
	vocab := vocabulary(country)
	counts := make([]int, len(vocab))
	for _, a := range articles {
		text := lowerText(a.Title, a.Content)
		for i, term := range vocab {
			if findTerm(text, term) >= 0 {
				counts[i]++
			}
		}
	}

	idx := make([]int, 0, len(vocab))
	for i, n := range counts {
		if n > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(i, j int) bool { return counts[idx[i]] > counts[idx[j]] })

	seen := make(map[string]bool)
	var out []string
	for _, i := range idx {
		name := displayName(vocab[i])
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == maxTrending {
			break
		}
	}
	return out
}

func summaryLine(query string, trending []string) string {
	if q := strings.TrimSpace(query); q != "" {
		return fmt.Sprintf("Here's what I found about '%s':", q)
	}
	if len(trending) > 0 {
		n := min(len(trending), 3)
		return fmt.Sprintf("Current market focus is on %s.", strings.Join(trending[:n], ", "))
	}
	return LatestSummary
}

func insights(moves []types.Movement, themes, trending []string) string {
	var lines []string
	for _, m := range moves {
		lines = append(lines, statement(m))
	}
	if len(themes) > 0 {
		lines = append(lines, fmt.Sprintf("Key themes: %s.", strings.Join(themes, ", ")))
	}
	if len(trending) > 0 {
		lines = append(lines, fmt.Sprintf("Market focus: %s.", strings.Join(trending, ", ")))
	}
	if len(lines) == 0 {
		return NoInsights
	}
	return strings.Join(lines, "\n")
}
