// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"net/url"
	"strings"
)

// BaseURL returns the scheme and host of rawURL ("https://example.com").
func BaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// MakeAbsolute resolves href against base. Absolute URLs are returned as
// is, protocol-relative URLs ("//host/path") take the base scheme, and
// everything else is joined to base.
func MakeAbsolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	if strings.HasPrefix(href, "//") {
		scheme := b.Scheme
		if scheme == "" {
			scheme = "https"
		}
		return scheme + ":" + href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
