// Package article pulls title, publisher and publish date out of arbitrary
// article pages using ordered waterfalls of tolerant extraction rules.
package article

import (
	"regexp"

	"github.com/JakeFAU/editorial-harvester/internal/dates"
	"github.com/JakeFAU/editorial-harvester/internal/extract"
	"github.com/JakeFAU/editorial-harvester/internal/publisher"
)

// Metadata is what could be recovered from one article page. Publisher is
// always set; the other fields are nil when nothing usable was found.
type Metadata struct {
	Title       *string `json:"title"`
	Publisher   string  `json:"publisher"`
	PublishDate *string `json:"publishDate"`
}

const (
	propertyAttr = `(?:property|name)`
	nameAttr     = `name`
)

var (
	ogTitleRules      = metaRules(propertyAttr, `og:title`)
	twitterTitleRules = metaRules(propertyAttr, `twitter:title`)
	titleTagRule      = extract.NewRule(`(?is)<title\b[^>]*>(.*?)</title>`, false)
	h1Rule            = extract.NewRule(`(?is)<h1\b[^>]*>(.*?)</h1>`, false)

	siteNameRules = metaRules(propertyAttr, `og:site_name`)

	// Allows one level of nested objects (such as "logo") before "name".
	jsonLDPublisherRule = extract.NewRule(`(?s)"publisher"\s*:\s*\{(?:[^{}]|\{[^{}]*\})*?"name"\s*:\s*"([^"]+)"`, true)

	dateRules = concat(
		[]extract.Rule{extract.NewRule(`"datePublished"\s*:\s*"([^"]+)"`, true)},
		metaRules(propertyAttr, `article:published_time`),
		[]extract.Rule{extract.NewRule(`(?is)<time\b[^>]*?\sdatetime\s*=\s*["']([^"']+)["']`, true)},
		metaRules(nameAttr, `(?:date|pubdate|publish_date|publication_date)`),
		metaRules(nameAttr, `dc\.date`),
	)

	titleSeparator = regexp.MustCompile(`\s[|–-]\s`)
)

// metaRules matches the content of a <meta> tag whose attr equals key, with
// either attribute order and either quote style. Values are left encoded.
func metaRules(attr, key string) []extract.Rule {
	keyed := `\s` + attr + `\s*=\s*["']` + key + `["']`
	return []extract.Rule{
		extract.NewRule(`(?is)<meta\b[^>]*?`+keyed+`[^>]*?\scontent\s*=\s*"([^"]*)"`, false),
		extract.NewRule(`(?is)<meta\b[^>]*?`+keyed+`[^>]*?\scontent\s*=\s*'([^']*)'`, false),
		extract.NewRule(`(?is)<meta\b[^>]*?\scontent\s*=\s*"([^"]*)"[^>]*?`+keyed, false),
		extract.NewRule(`(?is)<meta\b[^>]*?\scontent\s*=\s*'([^']*)'[^>]*?`+keyed, false),
	}
}

func concat(groups ...[]extract.Rule) []extract.Rule {
	var out []extract.Rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Extract reads metadata from html. sourceURL supplies the default
// publisher. It never fails; missing fields stay nil.
func Extract(html, sourceURL string) Metadata {
	return Metadata{
		Title:       title(html),
		Publisher:   publisherName(html, sourceURL),
		PublishDate: publishDate(html),
	}
}

func title(html string) *string {
	var raw string
	if v, ok := extract.FirstMatch(html, ogTitleRules...); ok {
		raw = v
	} else if v, ok := extract.FirstMatch(html, twitterTitleRules...); ok {
		raw = v
	} else if v, ok := titleTagRule.Match(html); ok {
		raw = stripSiteSuffix(extract.StripHTML(v))
	} else if v, ok := h1Rule.Match(html); ok {
		raw = v
	}
	text := extract.StripHTML(extract.DecodeEntities(raw))
	if text == "" {
		return nil
	}
	return &text
}

// stripSiteSuffix drops a trailing " | Site Name" style segment. Only the
// last separator counts and the title is never emptied.
func stripSiteSuffix(title string) string {
	locs := titleSeparator.FindAllStringIndex(title, -1)
	if len(locs) == 0 {
		return title
	}
	head := extract.StripHTML(title[:locs[len(locs)-1][0]])
	if head == "" {
		return title
	}
	return head
}

func publisherName(html, sourceURL string) string {
	if v, ok := extract.FirstMatch(html, siteNameRules...); ok {
		if name := extract.StripHTML(extract.DecodeEntities(v)); name != "" {
			return name
		}
	}
	if v, ok := jsonLDPublisherRule.Match(html); ok {
		if name := extract.StripHTML(v); name != "" {
			return name
		}
	}
	return publisher.DefaultName(sourceURL)
}

// publishDate walks every candidate in waterfall order and returns the first
// one the date normalizer accepts.
func publishDate(html string) *string {
	for _, rule := range dateRules {
		for _, candidate := range rule.All(html) {
			if iso, ok := dates.Normalize(candidate, dates.DateOnly); ok {
				return &iso
			}
		}
	}
	return nil
}
