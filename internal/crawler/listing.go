package crawler

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/editorial-harvester/internal/dates"
	"github.com/JakeFAU/editorial-harvester/internal/extract"
)

const (
	minLinkTextRunes = 5
	excerptLimit     = 300
	excerptWindow    = 2048
)

var (
	anchorPattern    = regexp.MustCompile(`(?is)<a\b([^>]*)>(.*?)</a>`)
	hrefAttr         = regexp.MustCompile(`(?is)(?:^|\s)href\s*=\s*["']([^"']+)["']`)
	headingPattern   = regexp.MustCompile(`(?is)<h[1-4]\b[^>]*>(.*?)</h[1-4]>`)
	headingStart     = regexp.MustCompile(`(?i)<h[1-4]\b`)
	paragraphPattern = regexp.MustCompile(`(?is)<p\b[^>]*>(.*?)</p>`)
	paginationPath   = regexp.MustCompile(`(?i)/page/\d+/?$`)

	timeRule  = extract.NewRule(`(?is)<time\b[^>]*?\sdatetime\s*=\s*["']([^"']+)["']`, true)
	imageRule = extract.NewRule(`(?is)<img\b[^>]*?\ssrc\s*=\s*["']([^"']+)["']`, true)
)

var genericLinkText = map[string]struct{}{
	"read more":        {},
	"continue reading": {},
	"learn more":       {},
	"view more":        {},
	"see more":         {},
}

var imageDenylist = []string{"logo", "icon", "avatar", "pixel", "1x1", "tracking"}

// listingPage is one fetched listing page plus the rules that decide which
// of its links are records.
type listingPage struct {
	url    *url.URL
	self   []string
	prefix string
	brand  string
	body   string
}

// records runs the anchor pass, the heading pass and the positional
// backfill. Records are unique per page by normalized URL, in first-seen
// order.
func (p listingPage) records() []StudyRecord {
	var out []StudyRecord
	index := make(map[string]int)

	for _, m := range anchorPattern.FindAllStringSubmatch(p.body, -1) {
		link := p.candidate(m[1])
		if link == "" {
			continue
		}
		title := extract.Text(m[2])
		if utf8.RuneCountInString(title) < minLinkTextRunes || isGeneric(title) {
			continue
		}
		key := NormalizeURL(link)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(out)
		out = append(out, p.newRecord(link, title))
	}

	for _, loc := range headingPattern.FindAllStringSubmatchIndex(p.body, -1) {
		inner := p.body[loc[2]:loc[3]]
		anchor := anchorPattern.FindStringSubmatch(inner)
		if anchor == nil {
			continue
		}
		link := p.candidate(anchor[1])
		if link == "" {
			continue
		}
		title := extract.Text(anchor[2])
		if title == "" || isGeneric(title) {
			continue
		}
		key := NormalizeURL(link)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, p.newRecord(link, title))
		} else if utf8.RuneCountInString(title) > utf8.RuneCountInString(out[i].Title) {
			out[i].Title = title
		}
		if out[i].Excerpt == nil {
			out[i].Excerpt = p.excerptAfter(loc[1])
		}
	}

	p.backfill(out)
	return out
}

// candidate returns the absolute URL of an anchor if it points at a record
// under the path prefix, or "".
func (p listingPage) candidate(attrs string) string {
	m := hrefAttr.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	link := resolveURL(p.url, extract.DecodeEntities(m[1]))
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || !strings.EqualFold(u.Hostname(), p.url.Hostname()) {
		return ""
	}
	lowerPath := strings.ToLower(u.Path)
	prefix := withTrailingSlash(strings.ToLower(p.prefix))
	if !strings.HasPrefix(lowerPath, prefix) || lowerPath == prefix {
		return ""
	}
	if paginationPath.MatchString(u.Path) ||
		strings.Contains(lowerPath, "/category/") ||
		strings.Contains(lowerPath, "/tag/") {
		return ""
	}
	key := NormalizeURL(link)
	for _, self := range p.self {
		if key == NormalizeURL(self) {
			return ""
		}
	}
	return link
}

func (p listingPage) newRecord(link, title string) StudyRecord {
	return StudyRecord{
		ID:    lastPathSegment(link),
		Title: title,
		URL:   link,
		Brand: p.brand,
	}
}

// excerptAfter returns the first paragraph following offset, provided it
// appears before the next heading and within excerptWindow bytes.
func (p listingPage) excerptAfter(offset int) *string {
	window := p.body[offset:]
	if len(window) > excerptWindow {
		window = window[:excerptWindow]
	}
	if loc := headingStart.FindStringIndex(window); loc != nil {
		window = window[:loc[0]]
	}
	m := paragraphPattern.FindStringSubmatch(window)
	if m == nil {
		return nil
	}
	text := extract.Truncate(extract.Text(m[1]), excerptLimit)
	if text == "" {
		return nil
	}
	return &text
}

// backfill fills missing dates and images by position: the Nth value found
// on the page goes to the Nth record still lacking that field. Values that
// are already set are never overwritten.
func (p listingPage) backfill(records []StudyRecord) {
	var found []string
	for _, raw := range timeRule.All(p.body) {
		if iso, ok := dates.Normalize(raw, dates.DateOnly); ok {
			found = append(found, iso)
		}
	}
	next := 0
	for i := range records {
		if next >= len(found) {
			break
		}
		if records[i].PublishDate == nil {
			d := found[next]
			records[i].PublishDate = &d
			next++
		}
	}

	var images []string
	for _, src := range imageRule.All(p.body) {
		if deniedImage(src) {
			continue
		}
		if abs := resolveURL(p.url, src); abs != "" {
			images = append(images, abs)
		}
	}
	next = 0
	for i := range records {
		if next >= len(images) {
			break
		}
		if records[i].Image == nil {
			img := images[next]
			records[i].Image = &img
			next++
		}
	}
}

func isGeneric(text string) bool {
	key := strings.ToLower(strings.Trim(text, " .…»›→>"))
	_, ok := genericLinkText[key]
	return ok
}

func deniedImage(src string) bool {
	lower := strings.ToLower(src)
	for _, word := range imageDenylist {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
