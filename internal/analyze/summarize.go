// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/market-digest/pkg/types"
)

const (
	maxSummaryRunes = 280
	shortSummary    = 200
)

// Summarize returns the first sentences of the article content: three when
// they fit in shortSummary characters, two otherwise, capped at
// maxSummaryRunes. Articles without content get an empty summary.
func Summarize(a types.Article) string {
	content := strings.Join(strings.Fields(a.Content), " ")
	if content == "" {
		return ""
	}

	sentences := splitSentences(content)
	n := min(3, len(sentences))
	s := strings.Join(sentences[:n], " ")
	if utf8.RuneCountInString(s) >= shortSummary && n > 2 {
		s = strings.Join(sentences[:2], " ")
	}

	if utf8.RuneCountInString(s) > maxSummaryRunes {
		r := []rune(s)
		s = strings.TrimRight(string(r[:maxSummaryRunes-3]), " ") + "..."
	}
	return s
}

// splitSentences splits after '.', '!' or '?' followed by whitespace. s is
// already whitespace-collapsed.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				out = append(out, s[start:i+1])
				start = i + 2
			}
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
