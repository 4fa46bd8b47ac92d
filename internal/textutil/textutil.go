// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil holds the text normalization shared by ranking and
// analysis: cleaning, tokenizing, stopwords, and title folding.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Clean lowercases s, drops apostrophes, and replaces every rune that is
// not a letter, digit or '&' with a space, collapsing the result.
// "S&P 500's rally!" becomes "s&p 500s rally".
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Words returns the tokens of Clean(s).
func Words(s string) []string {
	return strings.Fields(Clean(s))
}

// Terms returns the distinct non-stopword tokens of s in first-seen order.
func Terms(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range Words(s) {
		if IsStopword(w) || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// FoldTitle returns the dedup key for a headline: NFKC-normalized,
// case-folded, punctuation removed, whitespace collapsed. Titles that
// differ only in case, spacing, punctuation or Unicode presentation
// share a key.
func FoldTitle(title string) string {
	s := cases.Fold().String(norm.NFKC.String(title))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
