package capture

import (
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

var today = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func newTestAggregator() *Aggregator {
	return NewAggregator(finland,
		WithClock(func() time.Time { return today }),
		WithLocation(time.UTC))
}

var testDays = []schedule.DaySchedule{{
	Date: "February 10, 2026",
	Events: []schedule.ScheduleEvent{
		{Time: "10:15", Event: "Men's Sprint Classic Qualification", Sport: "Cross-Country Skiing", Venue: "Tesero", Athletes: "NISKANEN Iivo, HYVARINEN Perttu"},
		{Time: "13:00", Event: "Lehto Invitational", Sport: "Exhibition", Venue: "Milano"},
	},
}}

func TestAccepts(t *testing.T) {
	a := newTestAggregator()

	tests := []struct {
		name string
		s    Sighting
		want bool
	}{
		{"code match", Sighting{Name: "LEHTO Kalle", NationalityCode: "FIN"}, true},
		{"code contains target", Sighting{Name: "LEHTO Kalle", NationalityCode: "fin-1"}, true},
		{"name contains word", Sighting{Name: "Team Finland Relay"}, true},
		{"other nation", Sighting{Name: "DOE Jane", NationalityCode: "USA"}, false},
		{"empty name", Sighting{Name: "  ", NationalityCode: "FIN"}, false},
		{"bare nationality word", Sighting{Name: "finland", NationalityCode: "FIN"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Accepts(tt.s); got != tt.want {
				t.Errorf("Accepts(%+v) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	sightings := []Sighting{
		{Name: "NISKANEN Iivo", NationalityCode: "FIN", Sport: "Cross-Country Skiing", Event: "Men's Sprint Classic Qualification", Time: "2026-02-10T10:15:00+01:00", Source: SourceDayAPI},
		{Name: "NISKANEN Iivo", NationalityCode: "FIN", Sport: "Cross-Country Skiing", Event: "Men's Sprint Classic Qualification", Time: "2026-02-10T10:15:00+01:00", Source: SourceNetwork},
		{Name: "HYVARINEN Perttu", NationalityCode: "FIN", Source: SourceNetwork},
		{Name: "PARMAKOSKI Krista", NationalityCode: "FIN", Sport: "Cross-Country Skiing", Event: "Women's 10km", Time: "2026-02-12T11:00:00+01:00", Source: SourceDayAPI},
		{Name: "LEHTO Kalle", NationalityCode: "FIN", Time: "13:00", Source: SourceDOM},
		{Name: "DOE Jane", NationalityCode: "USA", Sport: "Biathlon", Time: "2026-02-10T14:00:00", Source: SourceDayAPI},
		{Name: "Ghost Entry", NationalityCode: "FIN", Source: SourceDOM},
	}

	got, err := newTestAggregator().Aggregate(sightings, testDays)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	want := []AthleteDay{
		{
			Date: "February 10, 2026",
			Athletes: []AthleteAppearance{
				{Time: "10:15", Sport: "Cross-Country Skiing", Athlete: "Iivo Niskanen", Event: "Men's Sprint Classic Qualification", DateISO: "2026-02-10", EventISO: "2026-02-10T10:15:00+01:00"},
				{Time: "", Sport: "Cross-Country Skiing", Athlete: "Perttu Hyvarinen", Event: "Men's Sprint Classic Qualification", DateISO: "2026-02-10"},
				{Time: "13:00", Sport: "Exhibition", Athlete: "Kalle Lehto", Event: "Lehto Invitational", DateISO: "2026-02-10"},
			},
		},
		{
			Date: "February 12, 2026",
			Athletes: []AthleteAppearance{
				{Time: "11:00", Sport: "Cross-Country Skiing", Athlete: "Krista Parmakoski", Event: "Women's 10km", DateISO: "2026-02-12", EventISO: "2026-02-12T11:00:00+01:00"},
			},
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestAggregateNoiseFilter(t *testing.T) {
	sightings := []Sighting{
		{Name: "LEHTO Kalle", NationalityCode: "FIN", Source: SourceNetwork},
	}
	got, err := newTestAggregator().Aggregate(sightings, nil)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("sighting without time, sport or instant should be dropped, got %+v", got)
	}
}

func TestAggregateSortsDays(t *testing.T) {
	sightings := []Sighting{
		{Name: "A Aa", NationalityCode: "FIN", Sport: "Luge", Time: "2026-02-20T10:00:00"},
		{Name: "B Bb", NationalityCode: "FIN", Sport: "Luge", Time: "2026-02-08T10:00:00"},
		{Name: "C Cc", NationalityCode: "FIN", Sport: "Luge", Time: "2026-02-14T10:00:00"},
	}
	got, err := newTestAggregator().Aggregate(sightings, nil)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	var dates []string
	for _, d := range got {
		dates = append(dates, d.Date)
	}
	want := []string{"February 8, 2026", "February 14, 2026", "February 20, 2026"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("dates = %v, want %v", dates, want)
	}
}

func TestAggregateDedupInvariant(t *testing.T) {
	var sightings []Sighting
	for i := 0; i < 3; i++ {
		sightings = append(sightings,
			Sighting{Name: "LEHTO Kalle", NationalityCode: "FIN", Sport: "Biathlon", Event: "Sprint", Time: "2026-02-10T14:00:00"},
			Sighting{Name: "kalle lehto", NationalityCode: "FIN", Sport: "Biathlon", Event: "Sprint", Time: "2026-02-10T14:00:00"},
		)
	}
	got, _ := newTestAggregator().Aggregate(sightings, nil)
	for _, day := range got {
		seen := make(map[string]bool)
		for _, a := range day.Athletes {
			if seen[a.key()] {
				t.Errorf("duplicate appearance %+v", a)
			}
			seen[a.key()] = true
		}
	}
	if len(got) != 1 || len(got[0].Athletes) != 1 {
		t.Errorf("expected a single appearance, got %+v", got)
	}
}

func TestDegraded(t *testing.T) {
	sightings := []Sighting{
		{Name: "LEHTO Kalle", NationalityCode: "FIN", URL: "u1"},
		{Name: "LEHTO Kalle", NationalityCode: "FIN", URL: "u2"},
		{Name: "DOE Jane", NationalityCode: "USA", URL: "u3"},
		{Name: "Finland", NationalityCode: "FIN", URL: "u4"},
	}
	got := newTestAggregator().Degraded(sightings)
	want := []AthleteSummary{{Athlete: "LEHTO Kalle", NOC: "FIN", URL: "u1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Degraded() = %+v, want %+v", got, want)
	}
}

func TestAggregateRecoversPanic(t *testing.T) {
	var calls int
	a := NewAggregator(finland,
		WithClock(func() time.Time { return today }),
		WithLocation(time.UTC),
		WithCrossReference(func(name, sport, event string, days []schedule.DaySchedule) (string, string) {
			calls++
			panic("schedule index out of range")
		}))

	sightings := []Sighting{{Name: "HYVARINEN Perttu", NationalityCode: "FIN", Source: SourceNetwork}}
	got, err := a.Aggregate(sightings, testDays)
	if err == nil || !strings.Contains(err.Error(), "schedule index out of range") {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got != nil || calls != 1 {
		t.Errorf("Aggregate() = %+v after %d lookups", got, calls)
	}

	want := []AthleteSummary{{Athlete: "HYVARINEN Perttu", NOC: "FIN"}}
	if d := a.Degraded(sightings); !reflect.DeepEqual(d, want) {
		t.Errorf("Degraded() = %+v, want %+v", d, want)
	}
}

func TestDecodeAthletes(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		wantDays     []AthleteDay
		wantDegraded []AthleteSummary
		wantErr      bool
	}{
		{
			name:     "days",
			data:     `[{"date":"February 10, 2026","athletes":[{"time":"10:15","sport":"Biathlon","athlete":"Kalle Lehto","event":"Sprint","dateIso":"2026-02-10","eventIso":""}]}]`,
			wantDays: []AthleteDay{{Date: "February 10, 2026", Athletes: []AthleteAppearance{{Time: "10:15", Sport: "Biathlon", Athlete: "Kalle Lehto", Event: "Sprint", DateISO: "2026-02-10"}}}},
		},
		{
			name:         "degraded",
			data:         `[{"athlete":"LEHTO Kalle","noc":"FIN"}]`,
			wantDegraded: []AthleteSummary{{Athlete: "LEHTO Kalle", NOC: "FIN"}},
		},
		{name: "empty", data: `[]`, wantDays: []AthleteDay{}},
		{name: "unknown shape", data: `[{"date":"February 10, 2026"}]`, wantErr: true},
		{name: "not a list", data: `{"athlete":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, degraded, err := DecodeAthletes([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeAthletes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(days, tt.wantDays) {
				t.Errorf("days = %+v, want %+v", days, tt.wantDays)
			}
			if !reflect.DeepEqual(degraded, tt.wantDegraded) {
				t.Errorf("degraded = %+v, want %+v", degraded, tt.wantDegraded)
			}
		})
	}
}

func TestCollectorConcurrent(t *testing.T) {
	var c Collector
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Add(Sighting{Name: "X Y", Source: SourceNetwork})
			}
		}()
	}
	wg.Wait()

	if c.Len() != 500 {
		t.Errorf("Len() = %d, want 500", c.Len())
	}
	counts := CountBySource(c.Sightings())
	if counts[SourceNetwork] != 500 {
		t.Errorf("CountBySource() = %v", counts)
	}
}
