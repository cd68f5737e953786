// Package extract implements tolerant, rule-based field extraction over raw
// markup. Rules are evaluated in order against the unparsed text and the first
// non-empty match wins; nothing here builds a DOM or rejects malformed input.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is a single extraction strategy.
type Rule struct {
	// Pattern is evaluated against the raw text.
	Pattern *regexp.Regexp
	// Group selects the capture group holding the value.
	Group int
	// Unwrap strips a CDATA wrapper and decodes HTML entities in the capture.
	Unwrap bool
}

// NewRule compiles expr into a Rule reading capture group 1.
func NewRule(expr string, unwrap bool) Rule {
	return Rule{Pattern: regexp.MustCompile(expr), Group: 1, Unwrap: unwrap}
}

var (
	cdataPattern      = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*?)\]\]>\s*$`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&#x27;", "'",
		"&#x2F;", "/",
		"&nbsp;", " ",
	)
)

// FirstMatch returns the first non-empty value produced by rules, in order.
func FirstMatch(text string, rules ...Rule) (string, bool) {
	for _, rule := range rules {
		if value, ok := rule.Match(text); ok {
			return value, true
		}
	}
	return "", false
}

// Match applies the rule to text.
func (r Rule) Match(text string) (string, bool) {
	if r.Pattern == nil || text == "" {
		return "", false
	}
	m := r.Pattern.FindStringSubmatch(text)
	if r.Group < 0 || r.Group >= len(m) {
		return "", false
	}
	value := m[r.Group]
	if r.Unwrap {
		value = DecodeEntities(Unwrap(value))
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// All returns every non-empty capture of rule in document order.
func (r Rule) All(text string) []string {
	if r.Pattern == nil || text == "" {
		return nil
	}
	var out []string
	for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
		if r.Group < 0 || r.Group >= len(m) {
			continue
		}
		value := m[r.Group]
		if r.Unwrap {
			value = DecodeEntities(Unwrap(value))
		}
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// Unwrap removes a surrounding <![CDATA[ ... ]]> section if present.
func Unwrap(s string) string {
	if m := cdataPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// DecodeEntities replaces the small set of entities feeds and article pages
// commonly emit. Decoding is a single pass, so "&amp;lt;" becomes "&lt;".
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}

// StripHTML removes every tag, collapses whitespace runs and trims.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Text decodes entities and then strips tags, which is the order needed for
// escaped markup inside feed descriptions.
func Text(s string) string {
	return StripHTML(DecodeEntities(Unwrap(s)))
}

// Truncate limits s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
