package schedule

import (
	"regexp"
	"time"
)

// DisplayLayout is the human date format used as the DaySchedule key.
const DisplayLayout = "January 2, 2006"

// ISOLayout is the calendar date layout.
const ISOLayout = "2006-01-02"

var (
	clockPattern   = regexp.MustCompile(`T(\d{2}:\d{2})`)
	isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseClock returns the HH:MM component that follows the "T" separator, or "".
func ParseClock(ts string) string {
	m := clockPattern.FindStringSubmatch(ts)
	if m == nil {
		return ""
	}
	return m[1]
}

// ISODate returns the first YYYY-MM-DD substring of ts, or "".
func ISODate(ts string) string {
	return isoDatePattern.FindString(ts)
}

// DisplayDate formats the calendar date written in ts as "February 6, 2026".
// The date is taken literally from the timestamp, so the source's local day is kept
// regardless of its offset. Returns "" when no valid date is present.
func DisplayDate(ts string) string {
	iso := ISODate(ts)
	if iso == "" {
		return ""
	}
	d, err := time.Parse(ISOLayout, iso)
	if err != nil {
		return ""
	}
	return d.Format(DisplayLayout)
}

// ParseDisplayDate parses a DaySchedule date key.
// Returns time.Time{} (zero value) if parsing fails.
func ParseDisplayDate(s string) time.Time {
	t, err := time.Parse(DisplayLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseTimestamp parses an ISO-like instant. Timestamps without a zone are read in loc.
func ParseTimestamp(ts string, loc *time.Location) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
