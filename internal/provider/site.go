// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/pdiddy/market-digest/pkg/types"
)

const defaultMaxArticles = 10

// headingSelector finds candidate headlines when no container selector
// matched.
const headingSelector = "h1, h2, h3, h4"

// Getter retrieves a page body. *httputil.Fetcher implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// SiteProvider scrapes a fixed set of pages of one site.
type SiteProvider struct {
	cfg     SiteConfig
	catalog *Catalog
	get     Getter
	log     logrus.FieldLogger
}

// NewSiteProvider returns a provider for cfg. The catalog supplies the
// fallback selector chain.
func NewSiteProvider(cfg SiteConfig, catalog *Catalog, get Getter, log logrus.FieldLogger) *SiteProvider {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = defaultMaxArticles
	}
	return &SiteProvider{
		cfg:     cfg,
		catalog: catalog,
		get:     get,
		log:     discardIfNil(log).WithField("provider", cfg.Name),
	}
}

// Name returns the site display name.
func (p *SiteProvider) Name() string { return p.cfg.Name }

// Key returns the site key used by country scoping.
func (p *SiteProvider) Key() string { return p.cfg.Key }

// Fetch scrapes every configured URL. A URL that fails is logged and
// skipped; an error is returned only when no URL produced articles.
func (p *SiteProvider) Fetch(ctx context.Context, _ Request) ([]types.Article, error) {
	var out []types.Article
	var errs []error

	for _, u := range p.cfg.URLs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		body, err := p.get.Get(ctx, u)
		if err != nil {
			p.log.WithField("url", u).WithError(err).Warn("fetch failed")
			errs = append(errs, err)
			continue
		}

		articles, err := p.Extract(u, body)
		if err != nil {
			p.log.WithField("url", u).WithError(err).Warn("parse failed")
			errs = append(errs, err)
			continue
		}
		p.log.WithFields(logrus.Fields{"url": u, "count": len(articles)}).Debug("page scraped")
		out = append(out, articles...)
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Extract parses one page and returns its articles, at most MaxArticles.
func (p *SiteProvider) Extract(pageURL string, body []byte) ([]types.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	base := BaseURL(pageURL)
	var out []types.Article
	for _, c := range p.containers(doc, pageURL) {
		if len(out) >= p.cfg.MaxArticles {
			break
		}
		a, err := p.extractArticle(c, base)
		if err != nil {
			p.log.WithField("url", pageURL).Debugf("skipping container: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// containers applies the primary article selector, then the fallback chain,
// then the heading heuristic: the parent of every heading that holds, sits
// inside, or sits next to a link.
func (p *SiteProvider) containers(doc *goquery.Document, pageURL string) []*goquery.Selection {
	if sel := doc.Find(p.cfg.Selectors.Article); sel.Length() > 0 {
		return splitSelection(sel)
	}

	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Host
	}
	if p.catalog != nil {
		for _, fs := range p.catalog.FallbacksFor(host) {
			if sel := doc.Find(fs); sel.Length() > 0 {
				p.log.WithField("selector", fs).Debug("primary selector empty, using fallback")
				return splitSelection(sel)
			}
		}
	}

	seen := make(map[*html.Node]bool)
	var out []*goquery.Selection
	doc.Find(headingSelector).Each(func(_ int, h *goquery.Selection) {
		parent := h.Parent()
		if parent.Length() == 0 || seen[parent.Get(0)] {
			return
		}
		if h.Find("a").Length() > 0 || h.Closest("a").Length() > 0 || parent.Find("a").Length() > 0 {
			seen[parent.Get(0)] = true
			out = append(out, parent)
		}
	})
	if len(out) > 0 {
		p.log.Debug("no container selector matched, using headings")
	}
	return out
}

func (p *SiteProvider) extractArticle(c *goquery.Selection, base string) (types.Article, error) {
	title := collapse(c.Find(p.cfg.Selectors.Title).First().Text())
	link := ""
	if href, ok := c.Find(p.cfg.Selectors.Link).First().Attr("href"); ok {
		link = MakeAbsolute(base, href)
	}
	if title == "" || link == "" {
		title, link = fallbackTitleLink(c, base)
	}

	a := NormalizeArticle(types.Article{
		Title:   title,
		URL:     link,
		Source:  types.Source{Name: p.cfg.Name},
		Content: c.Find("p").First().Text(),
	})
	if p.cfg.Selectors.Time != "" {
		t := c.Find(p.cfg.Selectors.Time).First()
		a.Time = collapse(t.Text())
		if dt, ok := t.Attr("datetime"); ok {
			a.PublishedAt = dt
		}
	}
	if !Valid(a) {
		return types.Article{}, fmt.Errorf("no title or link (title=%q)", title)
	}
	return a, nil
}

// fallbackTitleLink takes the first heading and its link (inside it, around
// it, or next to it), then the first hyperlink with text.
func fallbackTitleLink(c *goquery.Selection, base string) (string, string) {
	var title, link string

	if h := c.Find("h1, h2, h3, h4, h5").First(); h.Length() > 0 {
		title = collapse(h.Text())
		a := h.Find("a").First()
		if a.Length() == 0 {
			a = h.Closest("a")
		}
		if a.Length() == 0 {
			a = h.Parent().Find("a").First()
		}
		if href, ok := a.Attr("href"); ok {
			link = MakeAbsolute(base, href)
		}
	}

	if title == "" || link == "" {
		c.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			text := collapse(a.Text())
			href, ok := a.Attr("href")
			if text == "" || !ok {
				return true
			}
			title, link = text, MakeAbsolute(base, href)
			return false
		})
	}
	return title, link
}

func splitSelection(sel *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}
