package schedule

import (
	"reflect"
	"testing"
)

func TestDayScheduleAdd(t *testing.T) {
	day := DaySchedule{Date: "February 10, 2026"}

	added := []bool{
		day.Add(ScheduleEvent{Time: "12:00", Event: "B", Sport: "Luge", Venue: "Cortina"}),
		day.Add(ScheduleEvent{Time: "09:00", Event: "A", Sport: "Luge", Venue: "Cortina"}),
		day.Add(ScheduleEvent{Time: "12:00", Event: "C", Sport: "Luge", Venue: "Cortina"}),
		day.Add(ScheduleEvent{Time: "12:00", Event: "B", Sport: "Luge", Venue: "Cortina", Status: StatusFinished}),
	}
	if !reflect.DeepEqual(added, []bool{true, true, true, false}) {
		t.Errorf("Add results = %v", added)
	}

	var order []string
	for _, ev := range day.Events {
		order = append(order, ev.Event)
	}
	if !reflect.DeepEqual(order, []string{"A", "B", "C"}) {
		t.Errorf("order = %v, want [A B C]", order)
	}
}

func TestCountEventsAndFindDay(t *testing.T) {
	days := Fallback()
	if got := CountEvents(days); got != 4 {
		t.Errorf("CountEvents() = %d, want 4", got)
	}
	if d := FindDay(days, "February 6, 2026"); d == nil || d.Events[0].Event != "Opening Ceremony" {
		t.Errorf("FindDay() = %+v", d)
	}
	if FindDay(days, "March 1, 2026") != nil {
		t.Error("expected nil for unknown day")
	}
}

func TestMentionsTeam(t *testing.T) {
	days := []DaySchedule{{
		Date: "February 12, 2026",
		Events: []ScheduleEvent{
			{Time: "12:10", Event: "Men's Preliminary Round", Sport: "Ice Hockey", Teams: "Finland vs Sweden"},
		},
	}}

	if !MentionsTeam(days, "FIN", "finland") {
		t.Error("expected Finland to be mentioned")
	}
	if MentionsTeam(days, "NOR", "Norway") {
		t.Error("did not expect Norway")
	}
	if MentionsTeam(days, "") {
		t.Error("empty token should never match")
	}
}

func TestFallbackIsFresh(t *testing.T) {
	a := Fallback()
	a[0].Events[0].Event = "mutated"
	b := Fallback()
	if b[0].Events[0].Event != "Men's Downhill 1st Official Training" {
		t.Error("Fallback() returned shared data")
	}
	if len(b) != 3 || b[2].Date != "February 22, 2026" {
		t.Errorf("unexpected fallback shape: %+v", b)
	}
	for _, day := range b {
		for _, ev := range day.Events {
			if ev.Status != "" {
				t.Errorf("fallback event %q carries status %q", ev.Event, ev.Status)
			}
		}
	}
}

func TestCodes(t *testing.T) {
	codes := DefaultCodes()
	if got := codes.Venue("LSP"); got != "Livigno" {
		t.Errorf("Venue(LSP) = %q", got)
	}
	if got := codes.Country("FIN"); got != "Finland" {
		t.Errorf("Country(FIN) = %q", got)
	}
	if got := codes.Country("AIN"); got != "AIN" {
		t.Errorf("unknown code should pass through, got %q", got)
	}

	custom := Codes{Venues: map[string]string{"X": "Elsewhere"}}
	if got := custom.Venue("X"); got != "Elsewhere" {
		t.Errorf("custom Venue(X) = %q", got)
	}
	if got := custom.Country("FIN"); got != "FIN" {
		t.Errorf("nil country table should pass through, got %q", got)
	}

	codes.Venues["LSP"] = "changed"
	if DefaultCodes().Venue("LSP") != "Livigno" {
		t.Error("DefaultCodes() returned shared maps")
	}
}
