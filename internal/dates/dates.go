// Package dates converts heterogeneous date strings into canonical ISO form.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout selects the canonical output form.
type Layout int

const (
	// Timestamp renders a full UTC ISO-8601 timestamp (feed contexts).
	Timestamp Layout = iota
	// DateOnly renders YYYY-MM-DD (article and listing contexts).
	DateOnly
)

const (
	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	dateFormat      = "2006-01-02"
)

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// zoneOffsets maps the RFC 822 North American zone names, which dateparse
// would otherwise read as zero-offset zones.
var zoneOffsets = map[string]string{
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

const monthAlternation = `(january|february|march|april|may|june|july|august|september|october|november|december)`

var (
	monthDayYear = regexp.MustCompile(`(?i)\b` + monthAlternation + `\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthAlternation + `,?\s+(\d{4})\b`)
	trailingZone = regexp.MustCompile(`\s(EST|EDT|CST|CDT|MST|MDT|PST|PDT)$`)
)

// Normalize resolves raw through the fallback chain: generic calendar parse,
// "Month DD, YYYY", then "DD Month YYYY" (DateOnly only). It reports false when
// nothing matched and never panics.
func Normalize(raw string, layout Layout) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if t, ok := genericParse(raw); ok {
		return format(t, layout), true
	}
	if m := monthDayYear.FindStringSubmatch(raw); m != nil {
		if t, ok := build(m[3], m[1], m[2]); ok {
			return t.Format(dateFormat), true
		}
	}
	if layout == DateOnly {
		if m := dayMonthYear.FindStringSubmatch(raw); m != nil {
			if t, ok := build(m[3], m[2], m[1]); ok {
				return t.Format(dateFormat), true
			}
		}
	}
	return "", false
}

// Parse reads a value previously produced by Normalize back into a time.
func Parse(iso string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, iso); err == nil {
		return t, true
	}
	if t, err := time.Parse(dateFormat, iso); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func format(t time.Time, layout Layout) string {
	t = t.UTC()
	if layout == DateOnly {
		return t.Format(dateFormat)
	}
	return t.Format(timestampFormat)
}

func genericParse(raw string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(numericZone(raw), time.UTC)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed, true
}

// numericZone replaces a trailing RFC 822 zone name with its offset.
func numericZone(raw string) string {
	m := trailingZone.FindStringSubmatchIndex(raw)
	if m == nil {
		return raw
	}
	return raw[:m[2]] + zoneOffsets[raw[m[2]:m[3]]]
}

// build assembles a calendar day, rejecting values time.Date would roll over.
func build(yearStr, monthStr, dayStr string) (time.Time, bool) {
	month, ok := months[strings.ToLower(monthStr)]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
