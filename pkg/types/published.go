// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// publishedLayouts are the absolute timestamp layouts seen on news pages and
// feeds, most common first.
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006 15:04 MST",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
	"2 January 2006",
}

var relativeRe = regexp.MustCompile(`^(\d+|an?)\s*(seconds?|secs?|minutes?|mins?|hours?|hrs?|days?|weeks?|months?|years?)\s+ago$`)

// ParsePublished interprets s as either an absolute timestamp or relative
// recency text ("3 hours ago", "yesterday", "just now"), resolving relative
// forms against now. It reports false when s is empty or unrecognized.
func ParsePublished(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return parseRelative(strings.ToLower(s), now)
}

func parseRelative(s string, now time.Time) (time.Time, bool) {
	switch s {
	case "just now", "now", "today":
		return now, true
	case "yesterday":
		return now.Add(-24 * time.Hour), true
	}

	m := relativeRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	n := 1
	if m[1] != "a" && m[1] != "an" {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		n = v
	}

	var unit time.Duration
	switch {
	case strings.HasPrefix(m[2], "sec"):
		unit = time.Second
	case strings.HasPrefix(m[2], "min"):
		unit = time.Minute
	case strings.HasPrefix(m[2], "h"):
		unit = time.Hour
	case strings.HasPrefix(m[2], "day"):
		unit = 24 * time.Hour
	case strings.HasPrefix(m[2], "week"):
		unit = 7 * 24 * time.Hour
	case strings.HasPrefix(m[2], "month"):
		unit = 30 * 24 * time.Hour
	default:
		unit = 365 * 24 * time.Hour
	}
	return now.Add(-time.Duration(n) * unit), true
}

// Published resolves the article's timestamp from PublishedAt, falling back
// to the Time recency text.
func (a Article) Published(now time.Time) (time.Time, bool) {
	if t, ok := ParsePublished(a.PublishedAt, now); ok {
		return t, true
	}
	return ParsePublished(a.Time, now)
}
