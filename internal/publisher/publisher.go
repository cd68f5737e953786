// Package publisher derives display names for the sites articles come from.
package publisher

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is returned when no hostname can be read from the URL.
const Unknown = "Unknown"

var known = map[string]string{
	"nytimes.com":          "The New York Times",
	"washingtonpost.com":   "The Washington Post",
	"wsj.com":              "The Wall Street Journal",
	"theguardian.com":      "The Guardian",
	"bbc.com":              "BBC",
	"bbc.co.uk":            "BBC",
	"reuters.com":          "Reuters",
	"apnews.com":           "AP News",
	"npr.org":              "NPR",
	"greenhousegrower.com": "Greenhouse Grower",
	"gardencentermag.com":  "Garden Center",
	"nurserymag.com":       "Nursery Management",
	"growertalks.com":      "GrowerTalks",
}

// DefaultName maps rawURL to a publisher name. Well-known domains use a fixed
// table; anything else becomes the title-cased first hostname label, so
// "green-industry.com" yields "Green Industry".
func DefaultName(rawURL string) string {
	host := Host(rawURL)
	if host == "" {
		return Unknown
	}
	if name, ok := known[host]; ok {
		return name
	}
	label, _, _ := strings.Cut(host, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return Unknown
	}
	// Casers carry state and are not shared across goroutines.
	return cases.Title(language.English).String(label)
}

// Host returns the lowercased hostname of rawURL without a leading "www.".
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
