// Package feed extracts item records from RSS 2.0 and Atom payloads.
//
// Parsing is pattern based: payloads are never validated as XML, so a
// truncated or malformed document simply yields fewer items.
package feed

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/editorial-harvester/internal/dates"
	"github.com/JakeFAU/editorial-harvester/internal/extract"
)

// DescriptionLimit caps Item.Description in runes.
const DescriptionLimit = 300

// Item is a single normalized feed entry.
type Item struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Description string  `json:"description"`
	PublishDate *string `json:"publishDate"`
	SourceName  string  `json:"sourceName"`
}

var (
	rssItemBlock   = regexp.MustCompile(`(?is)<item\b[^>]*>(.*?)</item>`)
	atomEntryBlock = regexp.MustCompile(`(?is)<entry\b[^>]*>(.*?)</entry>`)

	titleRules = []extract.Rule{
		extract.NewRule(`(?is)<title\b[^>]*>(.*?)</title>`, true),
	}
	rssLinkRules = []extract.Rule{
		extract.NewRule(`(?is)<link\b[^>]*>(.*?)</link>`, true),
	}
	rssGUIDRule = extract.NewRule(`(?is)<guid\b[^>]*>(.*?)</guid>`, true)

	rssDescriptionRules = []extract.Rule{
		extract.NewRule(`(?is)<description\b[^>]*>(.*?)</description>`, true),
		extract.NewRule(`(?is)<content:encoded\b[^>]*>(.*?)</content:encoded>`, true),
	}
	rssDateRules = []extract.Rule{
		extract.NewRule(`(?is)<pubDate\b[^>]*>(.*?)</pubDate>`, true),
		extract.NewRule(`(?is)<dc:date\b[^>]*>(.*?)</dc:date>`, true),
	}

	atomLinkTag  = regexp.MustCompile(`(?is)<link\b([^>]*)>`)
	atomHrefAttr = regexp.MustCompile(`(?is)(?:^|\s)href\s*=\s*["']([^"']+)["']`)
	atomRelAttr  = regexp.MustCompile(`(?is)(?:^|\s)rel\s*=\s*["']([^"']*)["']`)

	atomDescriptionRules = []extract.Rule{
		extract.NewRule(`(?is)<summary\b[^>]*>(.*?)</summary>`, true),
		extract.NewRule(`(?is)<content\b[^>]*>(.*?)</content>`, true),
	}
	atomDateRules = []extract.Rule{
		extract.NewRule(`(?is)<published\b[^>]*>(.*?)</published>`, true),
		extract.NewRule(`(?is)<updated\b[^>]*>(.*?)</updated>`, true),
	}
)

// Parse extracts items from payload in document order. RSS <item> blocks are
// tried first; Atom <entry> blocks are read only when no RSS item qualified.
// Items lacking a title or link are dropped. The result is never nil.
func Parse(payload, source string) []Item {
	items := parseRSS(payload, source)
	if len(items) > 0 {
		return items
	}
	return parseAtom(payload, source)
}

func parseRSS(payload, source string) []Item {
	items := make([]Item, 0)
	for _, block := range blocks(rssItemBlock, payload) {
		title := itemTitle(block)
		link, ok := extract.FirstMatch(block, rssLinkRules...)
		if !ok {
			link = permalinkGUID(block)
		}
		if title == "" || link == "" {
			continue
		}
		items = append(items, Item{
			Title:       title,
			Link:        link,
			Description: description(block, rssDescriptionRules),
			PublishDate: publishDate(block, rssDateRules),
			SourceName:  source,
		})
	}
	return items
}

func parseAtom(payload, source string) []Item {
	items := make([]Item, 0)
	for _, block := range blocks(atomEntryBlock, payload) {
		title := itemTitle(block)
		link := atomLink(block)
		if title == "" || link == "" {
			continue
		}
		items = append(items, Item{
			Title:       title,
			Link:        link,
			Description: description(block, atomDescriptionRules),
			PublishDate: publishDate(block, atomDateRules),
			SourceName:  source,
		})
	}
	return items
}

func blocks(pattern *regexp.Regexp, payload string) []string {
	matches := pattern.FindAllStringSubmatch(payload, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func itemTitle(block string) string {
	raw, ok := extract.FirstMatch(block, titleRules...)
	if !ok {
		return ""
	}
	return extract.StripHTML(raw)
}

func permalinkGUID(block string) string {
	guid, ok := rssGUIDRule.Match(block)
	if !ok || !strings.HasPrefix(guid, "http") {
		return ""
	}
	return guid
}

// atomLink reads the href attribute of the entry's alternate <link>, falling
// back to the first <link> carrying any href.
func atomLink(block string) string {
	var fallback string
	for _, m := range atomLinkTag.FindAllStringSubmatch(block, -1) {
		attrs := m[1]
		href := atomHrefAttr.FindStringSubmatch(attrs)
		if href == nil {
			continue
		}
		value := strings.TrimSpace(extract.DecodeEntities(href[1]))
		if value == "" {
			continue
		}
		rel := atomRelAttr.FindStringSubmatch(attrs)
		if rel == nil || strings.EqualFold(strings.TrimSpace(rel[1]), "alternate") {
			return value
		}
		if fallback == "" {
			fallback = value
		}
	}
	return fallback
}

func description(block string, rules []extract.Rule) string {
	raw, ok := extract.FirstMatch(block, rules...)
	if !ok {
		return ""
	}
	return extract.Truncate(extract.StripHTML(raw), DescriptionLimit)
}

func publishDate(block string, rules []extract.Rule) *string {
	raw, ok := extract.FirstMatch(block, rules...)
	if !ok {
		return nil
	}
	iso, ok := dates.Normalize(raw, dates.Timestamp)
	if !ok {
		return nil
	}
	return &iso
}
