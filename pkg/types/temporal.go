package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var yearOnlyRe = regexp.MustCompile(`^\d{4}$`)

// dateLayouts are tried in order when parsing temporal range strings.
// LLM collaborators are inconsistent about precision, so everything from
// full RFC3339 down to a bare month is accepted.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDateString parses an ISO-8601-ish date string into a UTC timestamp.
// A bare 4-digit year parses to January 1st UTC of that year. Unparseable
// input resolves to nil, never an error: malformed temporal strings are a
// per-item condition, not a batch failure.
func ParseDateString(value string) *time.Time {
	value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"`))
	if value == "" || strings.EqualFold(value, "null") || strings.EqualFold(value, "none") {
		return nil
	}

	if yearOnlyRe.MatchString(value) {
		year, _ := strconv.Atoi(value)
		t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// ParseTemporalRange converts the collaborator's raw date strings into UTC
// timestamps, dropping whatever cannot be parsed.
func ParseTemporalRange(raw RawTemporalRange) (validAt, invalidAt *time.Time) {
	return ParseDateString(raw.ValidAt), ParseDateString(raw.InvalidAt)
}
