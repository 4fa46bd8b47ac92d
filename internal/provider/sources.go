// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"go.yaml.in/yaml/v3"
)

//go:embed sources.yaml
var builtinSources []byte

// Selectors is the primary selector chain of a site. Each value may list
// comma-separated alternatives.
type Selectors struct {
	Article string `yaml:"article"`
	Title   string `yaml:"title"`
	Link    string `yaml:"link"`
	Time    string `yaml:"time,omitempty"`
}

// SiteConfig describes one site-scrape source.
type SiteConfig struct {
	Key         string    `yaml:"key"`
	Name        string    `yaml:"name"`
	URLs        []string  `yaml:"urls"`
	Selectors   Selectors `yaml:"selectors"`
	MaxArticles int       `yaml:"max_articles"`
}

// Locale is the region/language pair sent to the news search endpoint.
type Locale struct {
	Region   string `yaml:"region"`
	Language string `yaml:"language"`
}

// DefaultLocale is used for countries without a locales entry.
var DefaultLocale = Locale{Region: "US", Language: "en-US"}

// Catalog is the full source table: sites, fallback selectors, country
// scoping, locales, and topic defaults.
type Catalog struct {
	Sites             []SiteConfig        `yaml:"sites"`
	FallbackSelectors []string            `yaml:"fallback_selectors"`
	FamilySelectors   map[string][]string `yaml:"family_selectors"`
	Countries         map[string][]string `yaml:"countries"`
	Locales           map[string]Locale   `yaml:"locales"`
	TopicQueries      map[string]string   `yaml:"topic_queries"`
	TopicCountries    map[string]string   `yaml:"topic_countries"`
}

// DefaultCatalog returns the built-in source table.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(builtinSources)
}

// LoadCatalog reads a source table from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML source table.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing sources: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	for i, s := range c.Sites {
		if s.Key == "" {
			return fmt.Errorf("site %d: missing key", i)
		}
		if seen[s.Key] {
			return fmt.Errorf("site %s: duplicate key", s.Key)
		}
		seen[s.Key] = true
		if len(s.URLs) == 0 {
			return fmt.Errorf("site %s: no urls", s.Key)
		}
		if s.Selectors.Article == "" {
			return fmt.Errorf("site %s: missing article selector", s.Key)
		}
	}
	for country, keys := range c.Countries {
		for _, k := range keys {
			if !seen[k] {
				return fmt.Errorf("country %s: unknown site %q", country, k)
			}
		}
	}
	return nil
}

// Site returns the site with the given key.
func (c *Catalog) Site(key string) (SiteConfig, bool) {
	for _, s := range c.Sites {
		if s.Key == key {
			return s, true
		}
	}
	return SiteConfig{}, false
}

// Locale returns the search locale for country, or DefaultLocale.
func (c *Catalog) Locale(country string) Locale {
	if l, ok := c.Locales[strings.ToLower(country)]; ok {
		return l
	}
	return DefaultLocale
}

// FallbacksFor returns the generic fallback selectors followed by any
// site-family selectors whose key occurs in host.
func (c *Catalog) FallbacksFor(host string) []string {
	out := append([]string(nil), c.FallbackSelectors...)
	keys := make([]string, 0, len(c.FamilySelectors))
	for k := range c.FamilySelectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(host, k) {
			out = append(out, c.FamilySelectors[k]...)
		}
	}
	return out
}

// DefaultQuery returns the search query used when the caller gave none:
// the topic's query, then the country's, then the global one.
func (c *Catalog) DefaultQuery(topic, country string) string {
	for _, k := range []string{topic, country, "global"} {
		if q, ok := c.TopicQueries[strings.ToLower(k)]; ok && k != "" {
			return q
		}
	}
	return "stock market"
}

// CountryFor classifies free text into a country using the topic keyword
// table. Longer keywords are tried first so "wall street" wins over a bare
// substring match. It returns "" when nothing matches.
func (c *Catalog) CountryFor(text string) string {
	text = strings.ToLower(text)
	if text == "" {
		return ""
	}
	if country, ok := c.TopicCountries[text]; ok {
		return country
	}

	keys := make([]string, 0, len(c.TopicCountries))
	for k := range c.TopicCountries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	words := " " + strings.Join(strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '?' || r == '!' || r == ':' || r == ';'
	}), " ") + " "
	for _, k := range keys {
		if strings.Contains(words, " "+k+" ") {
			return c.TopicCountries[k]
		}
	}
	return ""
}

// CheckSelectors compiles every CSS selector in the catalog and returns one
// error per selector that does not parse.
func (c *Catalog) CheckSelectors() []error {
	var errs []error
	check := func(where, sel string) {
		if strings.TrimSpace(sel) == "" {
			return
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", where, sel, err))
		}
	}

	for _, s := range c.Sites {
		check(s.Key+".article", s.Selectors.Article)
		check(s.Key+".title", s.Selectors.Title)
		check(s.Key+".link", s.Selectors.Link)
		check(s.Key+".time", s.Selectors.Time)
	}
	for i, sel := range c.FallbackSelectors {
		check(fmt.Sprintf("fallback_selectors[%d]", i), sel)
	}
	families := make([]string, 0, len(c.FamilySelectors))
	for k := range c.FamilySelectors {
		families = append(families, k)
	}
	sort.Strings(families)
	for _, k := range families {
		for i, sel := range c.FamilySelectors[k] {
			check(fmt.Sprintf("family_selectors.%s[%d]", k, i), sel)
		}
	}
	return errs
}
