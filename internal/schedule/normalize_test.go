package schedule

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNormalizeStatusWindow(t *testing.T) {
	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	raw := RawRecord{
		Discipline: "Biathlon",
		EventUnit:  "Men's 20km Individual",
		VenueCode:  "ANS",
		Start:      "2026-02-10T09:00:00Z",
		End:        "2026-02-10T10:00:00Z",
		Status:     StatusScheduled,
	}

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before start", start.Add(-5 * time.Minute), StatusScheduled},
		{"at start", start, StatusInProgress},
		{"inside window", start.Add(30 * time.Minute), StatusInProgress},
		{"at end", start.Add(60 * time.Minute), StatusInProgress},
		{"after end", start.Add(61 * time.Minute), StatusFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(DefaultCodes(), WithClock(fixedClock(tt.now)))
			days := n.Normalize([]RawRecord{raw})
			if len(days) != 1 || len(days[0].Events) != 1 {
				t.Fatalf("expected one event, got %+v", days)
			}
			if got := days[0].Events[0].Status; got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeStatusRules(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  RawRecord
		want string
	}{
		{
			name: "in progress token",
			raw:  RawRecord{Start: "2026-02-11T09:00:00Z", Status: "IN_PROGRESS"},
			want: StatusInProgress,
		},
		{
			name: "lowercase progress token",
			raw:  RawRecord{Start: "2026-02-11T09:00:00Z", Status: "running / in progress"},
			want: StatusInProgress,
		},
		{
			name: "verbatim scraped status",
			raw:  RawRecord{Start: "2026-02-09T09:00:00Z", Status: "POSTPONED"},
			want: "POSTPONED",
		},
		{
			name: "empty status no end past start",
			raw:  RawRecord{Start: "2026-02-10T09:00:00Z"},
			want: StatusFinished,
		},
		{
			name: "no end future start",
			raw:  RawRecord{Start: "2026-02-10T13:00:00Z", Status: StatusScheduled},
			want: StatusScheduled,
		},
		{
			name: "malformed end treated as absent",
			raw:  RawRecord{Start: "2026-02-10T09:00:00Z", End: "soon", Status: StatusScheduled},
			want: StatusFinished,
		},
		{
			name: "unparseable start keeps status",
			raw:  RawRecord{Start: "2026-02-10T09:00:00 CET", Status: StatusScheduled},
			want: StatusScheduled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw.Discipline = "Alpine Skiing"
			tt.raw.EventUnit = "Women's Super-G"
			tt.raw.VenueCode = "SSC"
			n := NewNormalizer(DefaultCodes(), WithClock(fixedClock(now)))
			days := n.Normalize([]RawRecord{tt.raw})
			if len(days) != 1 {
				t.Fatalf("expected one day, got %d", len(days))
			}
			if got := days[0].Events[0].Status; got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeCurlingSheetAndTeams(t *testing.T) {
	raw := RawRecord{
		Discipline:       "Curling",
		EventUnit:        "Men's Round Robin Session 4",
		VenueCode:        "CSC",
		Start:            "2026-02-13T14:05:00+01:00",
		Location:         "Sheet B",
		ParticipantCodes: []string{"SWE", "CAN", "SUI", "XYZ"},
		Status:           StatusScheduled,
	}

	n := NewNormalizer(DefaultCodes(), WithClock(fixedClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))))
	days := n.Normalize([]RawRecord{raw})
	if len(days) != 1 {
		t.Fatalf("expected one day, got %d", len(days))
	}

	ev := days[0].Events[0]
	if days[0].Date != "February 13, 2026" {
		t.Errorf("date = %q", days[0].Date)
	}
	if !strings.HasSuffix(ev.Event, "- Sheet B") {
		t.Errorf("event = %q, want sheet suffix", ev.Event)
	}
	if ev.Teams != "Sweden vs Canada vs Switzerland vs XYZ" {
		t.Errorf("teams = %q", ev.Teams)
	}
	if ev.Venue != "Cortina" {
		t.Errorf("venue = %q, want Cortina", ev.Venue)
	}
	if ev.Time != "14:05" {
		t.Errorf("time = %q", ev.Time)
	}
}

func TestNormalizeSheetOnlyForCurling(t *testing.T) {
	raw := RawRecord{
		Discipline: "Ice Hockey",
		EventUnit:  "Women's Preliminary Round",
		VenueCode:  "IHM",
		Start:      "2026-02-13T14:05:00",
		Location:   "Sheet A",
	}
	days := NewNormalizer(DefaultCodes()).Normalize([]RawRecord{raw})
	if got := days[0].Events[0].Event; got != "Women's Preliminary Round" {
		t.Errorf("event = %q", got)
	}
}

func TestNormalizeDedupAndOrder(t *testing.T) {
	records := []RawRecord{
		{Discipline: "Luge", EventUnit: "Women's Singles Run 1", VenueCode: "PSJ", Start: "2026-02-10T17:00:00"},
		{Discipline: "Luge", EventUnit: "Women's Singles Run 1", VenueCode: "PSJ", Start: "2026-02-10T17:00:00", Status: "FINISHED"},
		{Discipline: "Alpine Skiing", EventUnit: "Men's Super-G", VenueCode: "BFS", Start: "2026-02-10T11:30:00"},
		{Discipline: "Snowboard", EventUnit: "Men's Halfpipe Qualification", VenueCode: "LSP", Start: "2026-02-11T09:00:00"},
		{Discipline: "Biathlon", EventUnit: "Mixed Relay", VenueCode: "ANS", Start: "2026-02-10T11:30:00"},
		{Discipline: "Biathlon", EventUnit: "Broken", VenueCode: "ANS", Start: "2026-02-10"},
	}

	n := NewNormalizer(DefaultCodes(), WithClock(fixedClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))))
	days := n.Normalize(records)

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "February 10, 2026" || days[1].Date != "February 11, 2026" {
		t.Errorf("unexpected day order: %q, %q", days[0].Date, days[1].Date)
	}

	got := make([]string, 0)
	for _, ev := range days[0].Events {
		got = append(got, ev.Time+" "+ev.Event)
	}
	want := []string{
		"11:30 Men's Super-G",
		"11:30 Mixed Relay",
		"17:00 Women's Singles Run 1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if days[0].Events[2].Status != StatusScheduled {
		t.Errorf("first occurrence should win, got status %q", days[0].Events[2].Status)
	}

	for _, day := range days {
		seen := make(map[string]bool)
		for i, ev := range day.Events {
			if seen[ev.Key()] {
				t.Errorf("duplicate key %q on %s", ev.Key(), day.Date)
			}
			seen[ev.Key()] = true
			if i > 0 && day.Events[i-1].Time > ev.Time {
				t.Errorf("events out of order on %s", day.Date)
			}
		}
	}
}

func TestNormalizeAthletes(t *testing.T) {
	raw := RawRecord{
		Discipline:   "Cross-Country Skiing",
		EventUnit:    "Men's Sprint Final",
		VenueCode:    "TES",
		Start:        "2026-02-10T13:15:00",
		AthleteNames: []string{"KLAEBO Johannes", "NISKANEN Iivo"},
	}
	days := NewNormalizer(DefaultCodes()).Normalize([]RawRecord{raw})
	ev := days[0].Events[0]
	if ev.Athletes != "KLAEBO Johannes, NISKANEN Iivo" {
		t.Errorf("athletes = %q", ev.Athletes)
	}
	if ev.Venue != "TES" {
		t.Errorf("unknown venue code should pass through, got %q", ev.Venue)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	days := NewNormalizer(DefaultCodes()).Normalize(nil)
	if len(days) != 0 {
		t.Errorf("expected no days, got %d", len(days))
	}
}

// toRaw re-serializes normalized days into raw-record shape.
func toRaw(days []DaySchedule) []RawRecord {
	records := make([]RawRecord, 0)
	for _, day := range days {
		d := ParseDisplayDate(day.Date)
		for _, ev := range day.Events {
			raw := RawRecord{
				Discipline: ev.Sport,
				EventUnit:  ev.Event,
				VenueCode:  ev.Venue,
				Start:      d.Format(ISOLayout) + "T" + ev.Time + ":00",
				Status:     ev.Status,
			}
			if ev.Teams != "" {
				raw.ParticipantCodes = strings.Split(ev.Teams, TeamSeparator)
			}
			if ev.Athletes != "" {
				raw.AthleteNames = strings.Split(ev.Athletes, ", ")
			}
			records = append(records, raw)
		}
	}
	return records
}

func TestNormalizeIdempotent(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	records := []RawRecord{
		{Discipline: "Curling", EventUnit: "Women's Round Robin Session 2", VenueCode: "CSC", Start: "2026-02-10T09:05:00", Location: "Sheet C", ParticipantCodes: []string{"SWE", "GBR"}},
		{Discipline: "Speed Skating", EventUnit: "Men's 500m", VenueCode: "MSI", Start: "2026-02-10T16:00:00", End: "2026-02-10T17:30:00"},
		{Discipline: "Ski Jumping", EventUnit: "Women's Normal Hill Final", VenueCode: "PSJ", Start: "2026-02-12T18:45:00", Status: "POSTPONED", AthleteNames: []string{"A One", "B Two"}},
	}

	n := NewNormalizer(DefaultCodes(), WithClock(fixedClock(now)))
	first := n.Normalize(records)
	second := n.Normalize(toRaw(first))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalize is not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}
