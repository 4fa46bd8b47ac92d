// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

var (
	textEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)
	linkEscaper = strings.NewReplacer("[", "(", "]", ")", "_", `\_`, "*", `\*`, "`", "\\`")
	urlEscaper  = strings.NewReplacer(")", "%29", " ", "%20")

	linkRe = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
)

// escapeText escapes the legacy Markdown markers in free text.
func escapeText(s string) string { return textEscaper.Replace(s) }

// linkText makes s safe inside [...]: brackets become parentheses.
func linkText(s string) string { return linkEscaper.Replace(s) }

// linkURL makes s safe inside (...).
func linkURL(s string) string { return urlEscaper.Replace(s) }

// Truncate bounds s to maxLen characters (runes). An over-long message is cut
// at the last blank line, else after the last sentence, when either lies in
// the second half of the allowed length; otherwise it is cut hard. A cut
// never falls inside a [text](url) link or a *bold* or _italic_ span, and
// "..." is appended. The result is at most maxLen characters, so
// truncating twice changes nothing.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string([]rune(s)[:maxLen])
	}

	limit := byteOffset(s, maxLen-len(ellipsis))
	head := s[:limit]
	half := maxLen / 2

	cut := strings.LastIndex(head, "\n\n")
	if cut < 0 || utf8.RuneCountInString(head[:cut]) < half {
		cut = strings.LastIndex(head, ". ")
		if cut >= 0 {
			cut++
		}
	}
	if cut < 0 || utf8.RuneCountInString(head[:cut]) < half {
		cut = limit
	}

	links := linkRe.FindAllStringIndex(s, -1)
	for _, span := range links {
		if span[0] >= cut {
			break
		}
		if cut < span[1] {
			cut = span[0]
			break
		}
	}
	if at, ok := openMarker(s[:cut], links); ok {
		cut = at
	}
	return s[:cut] + ellipsis
}

// openMarker reports the offset of a bold or italic marker left open at the
// end of s. Escaped markers and link spans are skipped.
func openMarker(s string, links [][]int) (int, bool) {
	var open byte
	at := 0
	for i := 0; i < len(s); i++ {
		for len(links) > 0 && links[0][1] <= i {
			links = links[1:]
		}
		if len(links) > 0 && i >= links[0][0] {
			i = links[0][1] - 1
			links = links[1:]
			continue
		}
		switch c := s[i]; c {
		case '\\':
			i++
		case '*', '_':
			switch open {
			case 0:
				open, at = c, i
			case c:
				open = 0
			}
		}
	}
	return at, open != 0
}

// byteOffset returns the byte index of the n-th rune of s.
func byteOffset(s string, n int) int {
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
