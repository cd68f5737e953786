package crawler

import "net/http"

// Default header values used when configuration leaves them empty.
const (
	DefaultBrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultAcceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	DefaultAcceptLanguage = "en-US,en;q=0.9"
	DefaultFeedUserAgent  = "editorial-harvester/1.0 (+https://github.com/JakeFAU/editorial-harvester)"
	DefaultAcceptFeed     = "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8"
)

// HeaderProfile is the set of request headers sent with a class of requests.
type HeaderProfile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

// BrowserProfile returns the realistic browser headers article and listing
// fetches require, filling empty fields with defaults.
func BrowserProfile(userAgent, accept, language string) HeaderProfile {
	return HeaderProfile{
		UserAgent:      firstNonEmpty(userAgent, DefaultBrowserUserAgent),
		Accept:         firstNonEmpty(accept, DefaultAcceptHTML),
		AcceptLanguage: firstNonEmpty(language, DefaultAcceptLanguage),
	}
}

// FeedProfile returns the identifying headers used for syndication feeds.
func FeedProfile(userAgent, accept string) HeaderProfile {
	return HeaderProfile{
		UserAgent: firstNonEmpty(userAgent, DefaultFeedUserAgent),
		Accept:    firstNonEmpty(accept, DefaultAcceptFeed),
	}
}

// Header renders the profile as an http.Header.
func (p HeaderProfile) Header() http.Header {
	h := http.Header{}
	if p.UserAgent != "" {
		h.Set("User-Agent", p.UserAgent)
	}
	if p.Accept != "" {
		h.Set("Accept", p.Accept)
	}
	if p.AcceptLanguage != "" {
		h.Set("Accept-Language", p.AcceptLanguage)
	}
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
