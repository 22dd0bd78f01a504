// Package filter narrows a normalized schedule for display and calendar export.
//
// Criteria combine with AND; values within one criterion combine with OR:
//   - Date range (from/to, inclusive)
//   - Sports (case-insensitive substring of the sport)
//   - Venues (case-insensitive substring of the venue)
//   - Teams (case-insensitive substring of the teams or athletes line)
//   - Statuses (exact, case-insensitive)
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Sports = []string{"Curling"}
//	f.Teams = []string{"Finland"}
//	days = f.Apply(days)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// Filter represents schedule filtering criteria
type Filter struct {
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	Sports   []string `json:"sports,omitempty"`
	Venues   []string `json:"venues,omitempty"`
	Teams    []string `json:"teams,omitempty"`
	Statuses []string `json:"statuses,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Sports) == 0 &&
		len(f.Venues) == 0 &&
		len(f.Teams) == 0 &&
		len(f.Statuses) == 0
}

// MatchesDay reports whether a display date falls inside the date range. Dates that
// cannot be parsed always match.
func (f *Filter) MatchesDay(date string) bool {
	d := schedule.ParseDisplayDate(date)
	if d.IsZero() {
		return true
	}
	if f.DateFrom != nil && d.Before(truncateDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && d.After(*f.DateTo) {
		return false
	}
	return true
}

// Matches checks if an event matches the non-date criteria.
func (f *Filter) Matches(ev schedule.ScheduleEvent) bool {
	if !containsAny(ev.Sport, f.Sports) {
		return false
	}
	if !containsAny(ev.Venue, f.Venues) {
		return false
	}
	if len(f.Teams) > 0 && !containsAny(ev.Teams, f.Teams) && !containsAny(ev.Athletes, f.Teams) {
		return false
	}
	if len(f.Statuses) > 0 {
		matched := false
		for _, s := range f.Statuses {
			if strings.EqualFold(ev.Status, s) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Apply returns the days and events that match. Days left without events are dropped.
// An empty filter returns days unchanged.
func (f *Filter) Apply(days []schedule.DaySchedule) []schedule.DaySchedule {
	if f == nil || f.IsEmpty() {
		return days
	}

	filtered := make([]schedule.DaySchedule, 0, len(days))
	for _, day := range days {
		if !f.MatchesDay(day.Date) {
			continue
		}
		var events []schedule.ScheduleEvent
		for _, ev := range day.Events {
			if f.Matches(ev) {
				events = append(events, ev)
			}
		}
		if len(events) > 0 {
			filtered = append(filtered, schedule.DaySchedule{Date: day.Date, Events: events})
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Feb 10, 2026 | To: Feb 15, 2026 | Sports: Curling"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Sports) > 0 {
		parts = append(parts, fmt.Sprintf("Sports: %s", strings.Join(f.Sports, ", ")))
	}
	if len(f.Venues) > 0 {
		parts = append(parts, fmt.Sprintf("Venues: %s", strings.Join(f.Venues, ", ")))
	}
	if len(f.Teams) > 0 {
		parts = append(parts, fmt.Sprintf("Teams: %s", strings.Join(f.Teams, ", ")))
	}
	if len(f.Statuses) > 0 {
		parts = append(parts, fmt.Sprintf("Statuses: %s", strings.Join(f.Statuses, ", ")))
	}
	return strings.Join(parts, " | ")
}

// containsAny is true when needles is empty or s contains one of them.
func containsAny(s string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(s)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
