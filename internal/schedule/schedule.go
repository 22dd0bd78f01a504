package schedule

import (
	"sort"
	"strings"
)

// Statuses produced by the normalizer. Scraped statuses outside this set are kept verbatim.
const (
	StatusScheduled  = "SCHEDULED"
	StatusInProgress = "IN PROGRESS"
	StatusFinished   = "FINISHED"
)

// TeamSeparator joins participant codes and team names.
const TeamSeparator = " vs "

// RawRecord is one embedded record recovered from page markup, before normalization.
type RawRecord struct {
	Discipline       string   `json:"disciplineName"`
	EventUnit        string   `json:"eventUnitName"`
	VenueCode        string   `json:"venue"`
	Start            string   `json:"startDate"`
	End              string   `json:"endDate,omitempty"`
	Location         string   `json:"locationDescription,omitempty"`
	ParticipantCodes []string `json:"participantCodes,omitempty"`
	AthleteNames     []string `json:"athleteNames,omitempty"`
	Status           string   `json:"status"`
}

// ScheduleEvent is a single normalized schedule entry
type ScheduleEvent struct {
	Time     string `json:"time"`
	Event    string `json:"event"`
	Sport    string `json:"sport"`
	Venue    string `json:"venue"`
	Teams    string `json:"teams,omitempty"`
	Status   string `json:"status,omitempty"`
	Athletes string `json:"athletes,omitempty"`
}

// Key identifies an event within its day.
func (e ScheduleEvent) Key() string {
	return e.Time + "|" + e.Event + "|" + e.Sport + "|" + e.Venue
}

// DaySchedule holds the events of one calendar day, ordered by time.
type DaySchedule struct {
	Date   string          `json:"date"`
	Events []ScheduleEvent `json:"events"`
}

// Add inserts ev after every event with an earlier or equal time. It returns false and
// leaves the day untouched when an event with the same key is already present.
func (d *DaySchedule) Add(ev ScheduleEvent) bool {
	key := ev.Key()
	for _, existing := range d.Events {
		if existing.Key() == key {
			return false
		}
	}

	i := sort.Search(len(d.Events), func(i int) bool {
		return d.Events[i].Time > ev.Time
	})
	d.Events = append(d.Events, ScheduleEvent{})
	copy(d.Events[i+1:], d.Events[i:])
	d.Events[i] = ev
	return true
}

// FindDay returns the day with the given display date, or nil.
func FindDay(days []DaySchedule, date string) *DaySchedule {
	for i := range days {
		if days[i].Date == date {
			return &days[i]
		}
	}
	return nil
}

// CountEvents returns the number of events across all days.
func CountEvents(days []DaySchedule) int {
	n := 0
	for _, d := range days {
		n += len(d.Events)
	}
	return n
}

// MentionsTeam reports whether any event lists one of the given team names or codes.
func MentionsTeam(days []DaySchedule, tokens ...string) bool {
	for _, d := range days {
		for _, ev := range d.Events {
			teams := strings.ToLower(ev.Teams)
			for _, tok := range tokens {
				if tok != "" && strings.Contains(teams, strings.ToLower(tok)) {
					return true
				}
			}
		}
	}
	return false
}
