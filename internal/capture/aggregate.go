package capture

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

var bareClock = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Nationality is the affiliation filter. Code is matched as a substring of a sighting's
// nationality code; Word is matched case-insensitively inside the name.
type Nationality struct {
	Code string `json:"code"`
	Word string `json:"word"`
}

// Enabled reports whether the filter names an affiliation.
func (n Nationality) Enabled() bool {
	return n.Code != "" || n.Word != ""
}

// AthleteAppearance is an accepted, normalized sighting.
type AthleteAppearance struct {
	Time     string `json:"time"`
	Sport    string `json:"sport"`
	Athlete  string `json:"athlete"`
	Event    string `json:"event"`
	DateISO  string `json:"dateIso"`
	EventISO string `json:"eventIso"`
}

func (a AthleteAppearance) key() string {
	return a.Athlete + "|" + a.Event + "|" + a.Time
}

// AthleteDay groups the appearances of one display date.
type AthleteDay struct {
	Date     string              `json:"date"`
	Athletes []AthleteAppearance `json:"athletes"`
}

// AthleteSummary is the degraded output shape used when aggregation fails.
type AthleteSummary struct {
	Athlete string `json:"athlete"`
	NOC     string `json:"noc"`
	URL     string `json:"url,omitempty"`
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		a.loc = loc
	}
}

// CrossReference fills a missing sport or event for a raw athlete name from the schedule.
type CrossReference func(name, sport, event string, days []schedule.DaySchedule) (string, string)

// WithCrossReference replaces the schedule lookup used for incomplete sightings.
func WithCrossReference(fn CrossReference) Option {
	return func(a *Aggregator) {
		a.xref = fn
	}
}

// Aggregator merges sightings into per-day appearances for one nationality.
type Aggregator struct {
	nat  Nationality
	now  func() time.Time
	loc  *time.Location
	xref CrossReference
}

// NewAggregator creates an Aggregator for the given nationality.
func NewAggregator(nat Nationality, opts ...Option) *Aggregator {
	a := &Aggregator{
		nat:  nat,
		now:  time.Now,
		loc:  time.Local,
		xref: crossReference,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Today returns the current instant in the aggregator's zone.
func (a *Aggregator) Today() time.Time {
	return a.now().In(a.loc)
}

// Accepts reports whether a sighting belongs to the target nationality. Sightings
// without a name, or whose name is only the nationality word, are rejected.
func (a *Aggregator) Accepts(s Sighting) bool {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return false
	}
	if a.nat.Word != "" && strings.EqualFold(name, a.nat.Word) {
		return false
	}
	if a.nat.Code != "" && strings.Contains(strings.ToUpper(s.NationalityCode), strings.ToUpper(a.nat.Code)) {
		return true
	}
	return a.nat.Word != "" && strings.Contains(strings.ToLower(name), strings.ToLower(a.nat.Word))
}

// Aggregate filters, normalizes and groups sightings. Missing sport or event is filled
// from the first schedule event that lists the athlete. Appearances with no time, sport
// or event instant are dropped. Days are returned in ascending date order.
// A panic during the merge is returned as an error; callers fall back to Degraded.
func (a *Aggregator) Aggregate(sightings []Sighting, days []schedule.DaySchedule) (result []AthleteDay, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("aggregating sightings: %v", r)
		}
	}()

	today := a.Today()
	todayDisplay := today.Format(schedule.DisplayLayout)
	todayISO := today.Format(schedule.ISOLayout)

	grouped := make([]AthleteDay, 0)
	index := make(map[string]int)
	seen := make(map[string]map[string]bool)

	for _, s := range sightings {
		if !a.Accepts(s) {
			continue
		}

		raw := strings.TrimSpace(s.Name)
		app := AthleteAppearance{
			Time:    clock(s.Time),
			Sport:   s.Sport,
			Athlete: NormalizeName(raw),
			Event:   s.Event,
			DateISO: schedule.ISODate(s.Time),
		}
		if app.DateISO != "" {
			app.EventISO = s.Time
		} else {
			app.DateISO = todayISO
		}

		if app.Sport == "" || app.Event == "" {
			app.Sport, app.Event = a.xref(raw, app.Sport, app.Event, days)
		}

		if app.Time == "" && app.Sport == "" && app.EventISO == "" {
			continue
		}

		date := schedule.DisplayDate(s.Time)
		if date == "" {
			date = todayDisplay
		}

		i, ok := index[date]
		if !ok {
			grouped = append(grouped, AthleteDay{Date: date, Athletes: make([]AthleteAppearance, 0)})
			i = len(grouped) - 1
			index[date] = i
			seen[date] = make(map[string]bool)
		}
		if seen[date][app.key()] {
			continue
		}
		seen[date][app.key()] = true
		grouped[i].Athletes = append(grouped[i].Athletes, app)
	}

	sort.SliceStable(grouped, func(i, j int) bool {
		ti := schedule.ParseDisplayDate(grouped[i].Date)
		tj := schedule.ParseDisplayDate(grouped[j].Date)
		if ti.IsZero() || tj.IsZero() {
			return !ti.IsZero() && tj.IsZero()
		}
		return ti.Before(tj)
	})

	return grouped, nil
}

// Degraded builds the flat fallback list from sightings that match the nationality,
// keeping the first sighting of each name.
func (a *Aggregator) Degraded(sightings []Sighting) []AthleteSummary {
	out := make([]AthleteSummary, 0)
	seen := make(map[string]bool)
	for _, s := range sightings {
		if !a.Accepts(s) || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, AthleteSummary{Athlete: s.Name, NOC: s.NationalityCode, URL: s.URL})
	}
	return out
}

// clock extracts HH:MM from a timestamp or accepts a bare clock value.
func clock(ts string) string {
	if c := schedule.ParseClock(ts); c != "" {
		return c
	}
	ts = strings.TrimSpace(ts)
	if bareClock.MatchString(ts) {
		return ts
	}
	return ""
}

// crossReference fills missing sport and event from the schedule. An event whose athlete
// list contains the name wins; otherwise, while the event is still unknown, an event
// whose name contains the first token of the name is used.
func crossReference(name, sport, event string, days []schedule.DaySchedule) (string, string) {
	lower := strings.ToLower(name)
	first := ""
	if fields := strings.Fields(lower); len(fields) > 0 {
		first = fields[0]
	}

	for _, day := range days {
		for _, ev := range day.Events {
			switch {
			case ev.Athletes != "" && strings.Contains(strings.ToLower(ev.Athletes), lower):
			case event == "" && first != "" && strings.Contains(strings.ToLower(ev.Event), first):
			default:
				continue
			}
			if sport == "" {
				sport = ev.Sport
			}
			if event == "" {
				event = ev.Event
			}
			if sport != "" && event != "" {
				return sport, event
			}
		}
	}
	return sport, event
}
