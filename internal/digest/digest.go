// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest renders articles and their analysis as a chat message in
// Telegram's legacy Markdown, bounded to the platform's message size.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/market-digest/pkg/types"
)

// Defaults applied to zero Options fields.
const (
	DefaultTitle       = "📊 Market Analysis"
	DefaultBasicTitle  = "Latest News"
	DefaultMaxArticles = 7
	DefaultBasicMax    = 10
	DefaultMaxLength   = 4000
)

// NoArticles is the body of a digest rendered from an empty article set.
const NoArticles = "No news articles available at this time."

// Options controls rendering.
type Options struct {
	// MaxArticles bounds the "Latest Articles" entries.
	MaxArticles int

	// MaxLength is the message ceiling in characters.
	MaxLength int

	// Now anchors humanized publication times. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults(maxArticles int) Options {
	if o.MaxArticles <= 0 {
		o.MaxArticles = maxArticles
	}
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Format renders the full digest: title, summary line, insights, top
// headlines, trending topics and the article entries with their summaries.
// Empty analysis fields are left out. The result never exceeds
// opts.MaxLength characters.
func Format(articles []types.Article, analysis types.AnalysisResult, title string, opts Options) string {
	if title == "" {
		title = DefaultTitle
	}
	opts = opts.withDefaults(DefaultMaxArticles)
	if len(articles) == 0 {
		return Truncate(empty(title), opts.MaxLength)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", escapeText(title))

	if analysis.Summary != "" {
		b.WriteString(escapeText(analysis.Summary))
		b.WriteString("\n\n")
	}
	if analysis.Insights != "" {
		fmt.Fprintf(&b, "*Key Market Insights:*\n%s\n\n", escapeText(analysis.Insights))
	}
	if len(analysis.KeyPoints) > 0 {
		b.WriteString("*Top Headlines:*\n")
		for _, p := range analysis.KeyPoints {
			fmt.Fprintf(&b, "• %s\n", escapeText(p))
		}
		b.WriteString("\n")
	}
	if len(analysis.TrendingTopics) > 0 {
		topics := analysis.TrendingTopics[:min(5, len(analysis.TrendingTopics))]
		fmt.Fprintf(&b, "*Trending Topics:* %s\n\n", escapeText(strings.Join(topics, ", ")))
	}

	b.WriteString("*Latest Articles:*\n\n")
	writeEntries(&b, articles, opts, true)
	return Truncate(b.String(), opts.MaxLength)
}

// FormatBasic renders the title and article entries without analysis. It
// is the fallback when analysis fails.
func FormatBasic(articles []types.Article, title string, opts Options) string {
	if title == "" {
		title = DefaultBasicTitle
	}
	opts = opts.withDefaults(DefaultBasicMax)
	if len(articles) == 0 {
		return Truncate(empty(title), opts.MaxLength)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", escapeText(title))
	writeEntries(&b, articles, opts, false)
	return Truncate(b.String(), opts.MaxLength)
}

func empty(title string) string {
	return fmt.Sprintf("*%s*\n\n%s", escapeText(title), NoArticles)
}

func writeEntries(b *strings.Builder, articles []types.Article, opts Options, withSummary bool) {
	now := opts.Now()
	shown := articles[:min(opts.MaxArticles, len(articles))]
	for i, a := range shown {
		if a.URL != "" {
			fmt.Fprintf(b, "*%d.* [%s](%s)", i+1, linkText(a.Title), linkURL(a.URL))
		} else {
			fmt.Fprintf(b, "*%d.* %s", i+1, escapeText(a.Title))
		}

		var meta []string
		if name := a.Source.Name; name != "" && name != types.DefaultSourceName {
			meta = append(meta, "_"+escapeText(name)+"_")
		}
		if r := recency(a, now); r != "" {
			meta = append(meta, escapeText(r))
		}
		if len(meta) > 0 {
			fmt.Fprintf(b, "\n   %s", strings.Join(meta, " | "))
		}

		if withSummary && a.Summary != "" {
			fmt.Fprintf(b, "\n   _%s_", escapeText(a.Summary))
		}
		b.WriteString("\n\n")
	}
	if more := len(articles) - len(shown); more > 0 {
		fmt.Fprintf(b, "_...and %d more articles_", more)
	}
}

// recency prefers the scraped time text, then a humanized publication time,
// then the raw publication string.
func recency(a types.Article, now time.Time) string {
	if t := strings.TrimSpace(a.Time); t != "" {
		return t
	}
	if a.PublishedAt == "" {
		return ""
	}
	if ts, ok := types.ParsePublished(a.PublishedAt, now); ok {
		return humanize.RelTime(ts, now, "ago", "from now")
	}
	return a.PublishedAt
}
