package schedule

import (
	"regexp"
	"strings"
	"time"
)

var sheetPattern = regexp.MustCompile(`Sheet\s+([A-D])`)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the time source used for status derivation.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithLocation sets the zone used for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		n.loc = loc
	}
}

// Normalizer turns raw records into per-day schedules.
type Normalizer struct {
	codes Codes
	now   func() time.Time
	loc   *time.Location
}

// NewNormalizer creates a Normalizer that resolves codes through the given tables.
func NewNormalizer(codes Codes, opts ...Option) *Normalizer {
	n := &Normalizer{
		codes: codes,
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize groups records by display date, resolves codes and statuses, and drops
// duplicates. Days appear in the order their first record was seen; events within a
// day are ordered by time. Records without a time or date are skipped.
func (n *Normalizer) Normalize(records []RawRecord) []DaySchedule {
	days := make([]DaySchedule, 0)
	index := make(map[string]int)

	for _, raw := range records {
		ev, date, ok := n.event(raw)
		if !ok {
			continue
		}
		i, exists := index[date]
		if !exists {
			days = append(days, DaySchedule{Date: date, Events: make([]ScheduleEvent, 0)})
			i = len(days) - 1
			index[date] = i
		}
		days[i].Add(ev)
	}

	return days
}

func (n *Normalizer) event(raw RawRecord) (ScheduleEvent, string, bool) {
	clock := ParseClock(raw.Start)
	date := DisplayDate(raw.Start)
	if clock == "" || date == "" {
		return ScheduleEvent{}, "", false
	}

	name := raw.EventUnit
	if raw.Location != "" && raw.Discipline == "Curling" {
		if m := sheetPattern.FindStringSubmatch(raw.Location); m != nil {
			name = raw.EventUnit + " - Sheet " + m[1]
		}
	}

	var teams string
	if len(raw.ParticipantCodes) > 0 {
		names := make([]string, 0, len(raw.ParticipantCodes))
		for _, code := range raw.ParticipantCodes {
			names = append(names, n.codes.Country(strings.TrimSpace(code)))
		}
		teams = strings.Join(names, TeamSeparator)
	}

	return ScheduleEvent{
		Time:     clock,
		Event:    name,
		Sport:    raw.Discipline,
		Venue:    n.codes.Venue(raw.VenueCode),
		Teams:    teams,
		Status:   n.status(raw),
		Athletes: strings.Join(raw.AthleteNames, ", "),
	}, date, true
}

// status keeps meaningful scraped statuses and derives the rest from the start/end
// window. Unparseable timestamps leave the status as scraped.
func (n *Normalizer) status(raw RawRecord) string {
	scraped := strings.TrimSpace(raw.Status)
	upper := strings.ToUpper(scraped)
	if strings.Contains(upper, "PROGRESS") {
		return StatusInProgress
	}
	if scraped != "" && upper != StatusScheduled {
		return scraped
	}

	start, ok := ParseTimestamp(raw.Start, n.loc)
	if !ok {
		return StatusScheduled
	}
	now := n.now()

	if end, ok := ParseTimestamp(raw.End, n.loc); ok {
		switch {
		case !now.Before(start) && !now.After(end):
			return StatusInProgress
		case end.Before(now):
			return StatusFinished
		}
		return StatusScheduled
	}

	if start.Before(now) {
		return StatusFinished
	}
	return StatusScheduled
}
