package feed

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// SentinelDate is substituted when a feed's date cannot be parsed. The zero
// time sorts below every real publication date, so unparsable items land at
// the bottom of a most-recent-first ordering deterministically.
var SentinelDate = time.Time{}

// rfc822Layouts cover the pubDate dialects seen across journal feeds. Go's
// time.Parse is locale-independent, so month and weekday names match
// regardless of the host locale.
var rfc822Layouts = []string{
	time.RFC1123Z, // Mon, 02 Jan 2006 15:04:05 -0700
	time.RFC1123,  // Mon, 02 Jan 2006 15:04:05 MST
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

// ParseDate converts a feed-native date string into a timestamp. It tries the
// RFC-822 family first, then ISO-8601, then a lenient catch-all, and falls
// back to SentinelDate. It never fails: a malformed date must not drop an
// otherwise-good item.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SentinelDate
	}

	for _, layout := range rfc822Layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}

	if t, err := dateparse.ParseAny(raw); err == nil {
		return t
	}

	return SentinelDate
}
