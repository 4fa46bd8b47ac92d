// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// indexTerm maps a lowercase term to the name it is reported under.
type indexTerm struct {
	term      string
	canonical string
}

// indexTerms is scanned in order for movement statements. Longer variants
// follow their prefixes so that "s&p 500" and "s&p" share a canonical name.
var indexTerms = []indexTerm{
	{"dow", "Dow Jones"},
	{"djia", "Dow Jones"},
	{"nasdaq", "NASDAQ"},
	{"s&p", "S&P 500"},
	{"s&p 500", "S&P 500"},
	{"nyse", "NYSE"},
	{"russell", "Russell"},
	{"sensex", "Sensex"},
	{"nifty", "Nifty"},
	{"bse", "BSE"},
	{"nse", "NSE"},
	{"rbi", "RBI"},
	{"sebi", "SEBI"},
	{"fed", "Federal Reserve"},
	{"federal reserve", "Federal Reserve"},
	{"wall street", "Wall Street"},
	{"wall st", "Wall Street"},
	{"dalal street", "Dalal Street"},
}

// countryIndices restricts movement statements when a country is given.
var countryIndices = map[string][]string{
	"us":    {"dow", "nasdaq", "s&p", "s&p 500", "djia"},
	"india": {"sensex", "nifty", "bse", "nse"},
}

// Market vocabulary counted for trending topics.
var (
	globalTerms = []string{
		"market", "stock", "equity", "trade", "investor", "economy",
		"bull", "bear", "volatile", "rally", "correction", "crash",
		"investment", "dividend", "yield", "bond", "treasury", "etf",
		"index", "portfolio", "fund", "asset", "derivative", "hedge",
		"inflation", "recession", "growth", "interest rate", "fed", "central bank",
	}
	countryTerms = map[string][]string{
		"us": {
			"dow", "nasdaq", "s&p", "s&p 500", "djia", "nyse", "wall street",
			"russell", "ftse", "dax", "federal reserve", "fed", "powell",
			"treasury", "yellen", "sec", "wall st",
		},
		"india": {
			"sensex", "nifty", "bse", "nse", "rbi", "sebi", "dalal street",
			"bombay stock exchange", "national stock exchange", "reserve bank of india",
		},
	}
	countryOrder = []string{"us", "india"}
)

// displayName renders a vocabulary term: canonical index name when known,
// title case otherwise.
func displayName(term string) string {
	for _, it := range indexTerms {
		if it.term == term {
			return it.canonical
		}
	}
	return cases.Title(language.English).String(term)
}

// vocabulary returns the terms counted for country: global terms plus the
// country's terms, or every country's terms when country is unknown.
// Duplicates are dropped, first position kept.
func vocabulary(country string) []string {
	var terms []string
	terms = append(terms, globalTerms...)
	if ct, ok := countryTerms[country]; ok {
		terms = append(terms, ct...)
	} else {
		for _, c := range countryOrder {
			terms = append(terms, countryTerms[c]...)
		}
	}

	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// termPatterns caches one whole-word matcher per term. A trailing plural
// "s" is allowed so "bonds" counts as "bond".
var termPatterns = map[string]*regexp.Regexp{}

func init() {
	all := append([]string(nil), globalTerms...)
	for _, c := range countryOrder {
		all = append(all, countryTerms[c]...)
	}
	for _, it := range indexTerms {
		all = append(all, it.term)
	}
	for _, t := range all {
		if _, ok := termPatterns[t]; !ok {
			termPatterns[t] = regexp.MustCompile(`(?:^|[^\pL\pN&])(` + regexp.QuoteMeta(t) + `)s?(?:[^\pL\pN&]|$)`)
		}
	}
}

// findTerm returns the byte offset of the first whole-word occurrence of
// term in text (lowercase, whitespace-collapsed), or -1.
func findTerm(text, term string) int {
	re, ok := termPatterns[term]
	if !ok {
		return -1
	}
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return -1
	}
	return loc[2]
}

// lowerText returns the lowercase, whitespace-collapsed title and content.
// A title without closing punctuation gets a period so that a reason
// phrase does not run on into the body.
func lowerText(title, content string) string {
	title = strings.TrimSpace(title)
	if title != "" && strings.TrimSpace(content) != "" && !strings.ContainsAny(title[len(title)-1:], ".!?") {
		title += "."
	}
	return strings.Join(strings.Fields(strings.ToLower(title+" "+content)), " ")
}
