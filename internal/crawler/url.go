package crawler

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NormalizeURL folds a URL into its deduplication key: trailing slashes are
// stripped and the whole string is lowercased. It is a comparison key only
// and is never emitted.
func NormalizeURL(rawURL string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(rawURL), "/"))
}

// PageURL returns the address of listing page n. Page 1 is the base URL
// itself; page N is the base URL followed by "page/N/".
func PageURL(baseURL string, n int) string {
	if n <= 1 {
		return baseURL
	}
	return withTrailingSlash(baseURL) + fmt.Sprintf("page/%d/", n)
}

func withTrailingSlash(raw string) string {
	if strings.HasSuffix(raw, "/") {
		return raw
	}
	return raw + "/"
}

// resolveURL resolves href against base and drops the fragment. It returns
// "" for hrefs that are not http(s) links.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// lastPathSegment returns the final non-empty path segment of rawURL.
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
