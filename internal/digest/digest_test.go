// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/market-digest/pkg/types"
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func fixedOpts() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

func manyArticles(n int) []types.Article {
	out := make([]types.Article, n)
	for i := range out {
		out[i] = types.Article{
			Title:   fmt.Sprintf("Headline %d", i+1),
			URL:     fmt.Sprintf("https://example.com/%d", i+1),
			Source:  types.Source{Name: "Example"},
			Summary: strings.Repeat("Markets moved on the day. ", 6),
		}
	}
	return out
}

// --- Format ---

func TestFormat_Layout(t *testing.T) {
	articles := []types.Article{
		{
			Title:   "Sensex up",
			URL:     "https://ex.com/a",
			Source:  types.Source{Name: "Moneycontrol"},
			Time:    "2 hours ago",
			Summary: "Gains broad.",
		},
		{Title: "Nifty flat", Source: types.Source{Name: types.DefaultSourceName}},
	}
	analysis := types.AnalysisResult{
		Summary:        "Here's the latest from the financial markets:",
		Insights:       "Sensex is up 1%.",
		KeyPoints:      []string{"Sensex up"},
		TrendingTopics: []string{"Sensex"},
	}

	got := Format(articles, analysis, "Daily", fixedOpts())

	want := "*Daily*\n\n" +
		"Here's the latest from the financial markets:\n\n" +
		"*Key Market Insights:*\nSensex is up 1%.\n\n" +
		"*Top Headlines:*\n• Sensex up\n\n" +
		"*Trending Topics:* Sensex\n\n" +
		"*Latest Articles:*\n\n" +
		"*1.* [Sensex up](https://ex.com/a)\n   _Moneycontrol_ | 2 hours ago\n   _Gains broad._\n\n" +
		"*2.* Nifty flat\n\n"
	assert.Equal(t, want, got)
}

func TestFormat_EmptyArticles(t *testing.T) {
	got := Format(nil, types.AnalysisResult{Summary: "x"}, "Daily", Options{})
	assert.Equal(t, "*Daily*\n\n"+NoArticles, got)
}

func TestFormat_DefaultTitle(t *testing.T) {
	got := Format(manyArticles(1), types.AnalysisResult{}, "", fixedOpts())
	assert.True(t, strings.HasPrefix(got, "*"+DefaultTitle+"*\n\n*Latest Articles:*"))
}

func TestFormat_MoreArticlesNote(t *testing.T) {
	got := Format(manyArticles(9), types.AnalysisResult{}, "Daily", Options{MaxLength: 100000, Now: fixedOpts().Now})
	assert.Contains(t, got, "*7.* [Headline 7]")
	assert.NotContains(t, got, "*8.*")
	assert.True(t, strings.HasSuffix(got, "_...and 2 more articles_"))
}

func TestFormat_TrendingCappedAtFive(t *testing.T) {
	analysis := types.AnalysisResult{TrendingTopics: []string{"A", "B", "C", "D", "E", "F"}}
	got := Format(manyArticles(1), analysis, "Daily", fixedOpts())
	assert.Contains(t, got, "*Trending Topics:* A, B, C, D, E\n\n")
}

func TestFormat_NeverExceedsMaxLength(t *testing.T) {
	for _, limit := range []int{50, 200, 500, 1000, DefaultMaxLength} {
		got := Format(manyArticles(40), types.AnalysisResult{Summary: "s"}, "Daily",
			Options{MaxArticles: 40, MaxLength: limit, Now: fixedOpts().Now})
		assert.LessOrEqual(t, utf8.RuneCountInString(got), limit, "limit %d", limit)
	}
}

func TestFormat_HumanizedPublishedAt(t *testing.T) {
	articles := []types.Article{{Title: "Gold firm", PublishedAt: "2026-10-18T06:00:00Z"}}
	got := Format(articles, types.AnalysisResult{}, "Daily", fixedOpts())
	assert.Contains(t, got, "*1.* Gold firm\n   3 hours ago\n\n")
}

func TestFormat_EscapesMarkdown(t *testing.T) {
	articles := []types.Article{{
		Title:   "Q3 [preview]_notes",
		URL:     "https://ex.com/a(1)",
		Source:  types.Source{Name: "Some_Site"},
		Summary: "EPS *beat* estimates",
	}}
	got := Format(articles, types.AnalysisResult{}, "Daily", fixedOpts())
	assert.Contains(t, got, `[Q3 (preview)\_notes](https://ex.com/a(1%29)`)
	assert.Contains(t, got, `_Some\_Site_`)
	assert.Contains(t, got, `_EPS \*beat\* estimates_`)
}

// --- FormatBasic ---

func TestFormatBasic(t *testing.T) {
	articles := manyArticles(12)
	got := FormatBasic(articles, "", Options{MaxLength: 100000, Now: fixedOpts().Now})

	assert.True(t, strings.HasPrefix(got, "*Latest News*\n\n*1.* [Headline 1](https://example.com/1)\n   _Example_\n\n"))
	assert.Contains(t, got, "*10.*")
	assert.NotContains(t, got, "*11.*")
	assert.NotContains(t, got, "Markets moved", "basic format has no summaries")
	assert.True(t, strings.HasSuffix(got, "_...and 2 more articles_"))
}

func TestFormatBasic_Empty(t *testing.T) {
	assert.Equal(t, "*Latest News*\n\n"+NoArticles, FormatBasic(nil, "", Options{}))
}

// --- Truncate ---

func TestTruncate(t *testing.T) {
	a60 := strings.Repeat("a", 60)
	b60 := strings.Repeat("b", 60)

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "fits", in: "short", max: 100, want: "short"},
		{name: "paragraph break", in: a60 + "\n\n" + b60, max: 100, want: a60 + "..."},
		{name: "sentence break", in: a60 + ". " + b60, max: 100, want: a60 + "...."},
		{name: "hard cut", in: strings.Repeat("a", 200), max: 100, want: strings.Repeat("a", 97) + "..."},
		{name: "early break ignored", in: "aa\n\n" + strings.Repeat("a", 200), max: 100, want: "aa\n\n" + strings.Repeat("a", 93) + "..."},
		{name: "runes", in: strings.Repeat("é", 200), max: 100, want: strings.Repeat("é", 97) + "..."},
		{name: "tiny max", in: "abcdef", max: 2, want: "ab"},
		{name: "zero max", in: "abcdef", max: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestTruncate_DoesNotSplitLink(t *testing.T) {
	in := strings.Repeat("a", 60) + " [" + strings.Repeat("t", 30) + "](https://example.com/y)" + strings.Repeat("c", 50)
	got := Truncate(in, 100)
	assert.Equal(t, strings.Repeat("a", 60)+" ...", got)
}

func TestTruncate_DoesNotSplitItalic(t *testing.T) {
	head := "*1.* [Title](https://x.com/a_b)\n   "
	in := head + "_" + strings.Repeat("word ", 30) + "_"
	got := Truncate(in, 100)
	assert.Equal(t, head+"...", got, "underscore inside the URL is not a marker")
}

func TestTruncate_DoesNotSplitBold(t *testing.T) {
	in := strings.Repeat("a", 60) + " *" + strings.Repeat("b", 60) + "*"
	got := Truncate(in, 100)
	assert.Equal(t, strings.Repeat("a", 60)+" ...", got)
}

func TestTruncate_EscapedMarkersIgnored(t *testing.T) {
	in := strings.Repeat(`a\_`, 30)
	got := Truncate(in, 50)
	assert.Equal(t, in[:47]+"...", got)
}

func TestTruncate_MarkersBalanced(t *testing.T) {
	msg := Format(manyArticles(30), types.AnalysisResult{Summary: "Latest", Insights: "Sensex gained 1.2%."}, "Daily",
		Options{MaxArticles: 30, MaxLength: 1 << 20, Now: fixedOpts().Now})
	for limit := 20; limit < 1500; limit += 7 {
		got := Truncate(msg, limit)
		_, open := openMarker(got, linkRe.FindAllStringIndex(got, -1))
		assert.False(t, open, "limit %d: %q", limit, got)
	}
}

func TestTruncate_CeilingAndIdempotent(t *testing.T) {
	msg := Format(manyArticles(30), types.AnalysisResult{Summary: "Latest"}, "Daily",
		Options{MaxArticles: 30, MaxLength: 1 << 20, Now: fixedOpts().Now})
	for _, limit := range []int{10, 64, 333, 1000, 4000} {
		once := Truncate(msg, limit)
		assert.LessOrEqual(t, utf8.RuneCountInString(once), limit)
		assert.Equal(t, once, Truncate(once, limit))
	}
}

// --- escaping ---

func TestEscaping(t *testing.T) {
	assert.Equal(t, "a\\_b\\*c\\`d\\[e]", escapeText("a_b*c`d[e]"))
	assert.Equal(t, "(x)\\_y", linkText("[x]_y"))
	assert.Equal(t, "https://x/a(1%29%20b", linkURL("https://x/a(1) b"))
}
