// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/market-digest/pkg/types"
)

const (
	maxMovements = 3
	windowRadius = 50
	maxReasonLen = 8
)

var percentRe = regexp.MustCompile(`([+-]?\d+(?:\.\d+)?)\s*%`)

// Connectors that introduce the stated cause of a move.
var (
	reasonConnectors = []string{"as", "after", "due to", "following", "amid", "on", "because of"}
	gainConnectors   = []string{"boosted by", "lifted by", "supported by", "driven by"}
	lossConnectors   = []string{"dragged by", "pressured by", "weighed by", "hit by"}
)

// Direction words used when a percentage carries no sign.
var (
	upWords = []string{
		"up", "rise", "rises", "rose", "gain", "gains", "gained", "climb", "climbs", "climbed",
		"jump", "jumps", "jumped", "surge", "surges", "surged", "rally", "rallies", "rallied",
		"advance", "advances", "advanced", "higher", "soar", "soars", "soared", "add", "adds", "added",
	}
	downWords = []string{
		"down", "fall", "falls", "fell", "drop", "drops", "dropped", "decline", "declines", "declined",
		"slip", "slips", "slipped", "slide", "slides", "slid", "lose", "loses", "lost", "lower",
		"tumble", "tumbles", "tumbled", "plunge", "plunges", "plunged", "sink", "sinks", "sank",
		"shed", "sheds", "dip", "dips", "dipped", "retreat", "retreats", "retreated", "crash", "crashed",
	}
	directionRe = regexp.MustCompile(`\b(` + strings.Join(append(append([]string(nil), upWords...), downWords...), "|") + `)\b`)
	downSet     = toSet(downWords)
)

var sentenceEndRe = regexp.MustCompile(`[.!?;](\s|$)`)

var connectorPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, list := range [][]string{reasonConnectors, gainConnectors, lossConnectors} {
		for _, c := range list {
			m[c] = regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `\b`)
		}
	}
	return m
}()

// movements scans articles for index mentions with a nearby percentage. At
// most maxMovements are returned and each canonical index at most once.
func movements(articles []types.Article, country string) []types.Movement {
	allowed := countryIndices[country]
	reported := make(map[string]bool)
	var out []types.Movement

	for _, a := range articles {
		text := lowerText(a.Title, a.Content)
		if !percentRe.MatchString(text) {
			continue
		}
		for _, it := range indexTerms {
			if len(allowed) > 0 && !contains(allowed, it.term) {
				continue
			}
			if reported[it.canonical] {
				continue
			}
			m, ok := movementAt(text, it)
			if !ok {
				continue
			}
			reported[it.canonical] = true
			out = append(out, m)
			if len(out) >= maxMovements {
				return out
			}
		}
	}
	return out
}

// movementAt looks for a percentage within windowRadius bytes of the first
// mention of it.term.
func movementAt(text string, it indexTerm) (types.Movement, bool) {
	pos := findTerm(text, it.term)
	if pos < 0 {
		return types.Movement{}, false
	}
	start, end := runeFloor(text, pos-windowRadius), runeFloor(text, pos+windowRadius)
	window := text[start:end]

	loc := percentRe.FindStringSubmatchIndex(window)
	if loc == nil {
		return types.Movement{}, false
	}
	raw := window[loc[2]:loc[3]]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value == 0 || math.IsInf(value, 0) {
		return types.Movement{}, false
	}

	dir := types.DirectionUp
	switch {
	case strings.HasPrefix(raw, "-"):
		dir = types.DirectionDown
	case strings.HasPrefix(raw, "+"):
	default:
		dir = inferDirection(window, loc[0])
	}

	return types.Movement{
		Index:     it.canonical,
		Change:    math.Abs(value),
		Direction: dir,
		Reason:    extractReason(text, span{start, end}, pos, span{start + loc[0], start + loc[1]}, dir),
	}, true
}

// inferDirection picks the direction word closest to the percentage at
// pct. Without any direction word the move counts as a gain.
func inferDirection(window string, pct int) types.Direction {
	best, bestDist := types.DirectionUp, -1
	for _, m := range directionRe.FindAllStringIndex(window, -1) {
		d := m[0] - pct
		if d < 0 {
			d = pct - m[1]
		}
		if bestDist >= 0 && d >= bestDist {
			continue
		}
		bestDist = d
		if downSet[window[m[0]:m[1]]] {
			best = types.DirectionDown
		} else {
			best = types.DirectionUp
		}
	}
	return best
}

// span is a half-open byte range of the lowered article text.
type span struct{ from, to int }

// extractReason looks for a connector inside the window win. A connector
// after the percentage pct wins and takes up to maxReasonLen following
// words, stopping at a sentence end. Otherwise a connector before the
// percentage in the same sentence is used; its phrase also stops at a
// comma, a direction word or the index mention at subject.
func extractReason(text string, win span, subject int, pct span, dir types.Direction) string {
	connectors := append([]string(nil), reasonConnectors...)
	if dir == types.DirectionUp {
		connectors = append(connectors, gainConnectors...)
	} else {
		connectors = append(connectors, lossConnectors...)
	}

	type hit struct {
		at   int
		conn string
	}
	var after, before []hit
	for _, c := range connectors {
		for _, loc := range connectorPatterns[c].FindAllStringIndex(text, -1) {
			switch {
			case loc[0] < win.from || loc[1] > win.to:
			case loc[0] >= pct.to:
				after = append(after, hit{at: loc[0], conn: c})
			case loc[1] <= pct.from:
				before = append(before, hit{at: loc[0], conn: c})
			}
		}
	}
	byPosition := func(hits []hit) {
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].at != hits[j].at {
				return hits[i].at < hits[j].at
			}
			return len(hits[i].conn) > len(hits[j].conn)
		})
	}
	byPosition(after)
	byPosition(before)

	for _, h := range after {
		if r := reasonWords(text[h.at+len(h.conn):], false); r != "" {
			return h.conn + " " + r
		}
	}
	for _, h := range before {
		from, stop := h.at+len(h.conn), pct.from
		if subject >= from && subject < stop {
			stop = subject
		}
		phrase := text[from:stop]
		if sentenceEndRe.MatchString(phrase) {
			continue
		}
		if m := directionRe.FindStringIndex(phrase); m != nil {
			phrase = phrase[:m[0]]
		}
		if r := reasonWords(phrase, true); r != "" {
			return h.conn + " " + r
		}
	}
	return ""
}

// reasonWords takes up to maxReasonLen words of s, ending after a word that
// closes a sentence (or a clause, when atComma is set).
func reasonWords(s string, atComma bool) string {
	var words []string
	for _, w := range strings.Fields(s) {
		words = append(words, w)
		if len(words) == maxReasonLen || strings.HasSuffix(w, ".") || strings.HasSuffix(w, ";") ||
			(atComma && strings.HasSuffix(w, ",")) {
			break
		}
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;:")
}

// statement renders a movement as a sentence.
func statement(m types.Movement) string {
	pct := strconv.FormatFloat(m.Change, 'f', -1, 64)
	switch {
	case m.Direction == types.DirectionUp && m.Reason != "":
		return fmt.Sprintf("%s gained %s%% %s.", m.Index, pct, m.Reason)
	case m.Direction == types.DirectionUp:
		return fmt.Sprintf("%s is up %s%%.", m.Index, pct)
	case m.Reason != "":
		return fmt.Sprintf("%s fell %s%% %s.", m.Index, pct, m.Reason)
	default:
		return fmt.Sprintf("%s is down %s%%.", m.Index, pct)
	}
}

// runeFloor clamps i to [0, len(s)] and moves it back to a rune start.
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
