package schedule

// DatedEvent is an event together with the day it belongs to.
type DatedEvent struct {
	Date  string        `json:"date"`
	Event ScheduleEvent `json:"event"`
}

// StatusChange records an event whose status moved between two runs.
type StatusChange struct {
	Date  string        `json:"date"`
	Event ScheduleEvent `json:"event"`
	From  string        `json:"from"`
}

// DiffResult contains the results of comparing two schedules
type DiffResult struct {
	NewEvents     []DatedEvent   `json:"new_events"`
	StatusChanges []StatusChange `json:"status_changes"`
}

// Empty reports whether nothing changed.
func (r *DiffResult) Empty() bool {
	return len(r.NewEvents) == 0 && len(r.StatusChanges) == 0
}

// Diff compares the current schedule against a previous one. Events are matched by day
// and key; a nil previous schedule makes every event new.
func Diff(previous, current []DaySchedule) *DiffResult {
	result := &DiffResult{
		NewEvents:     make([]DatedEvent, 0),
		StatusChanges: make([]StatusChange, 0),
	}

	seen := make(map[string]string)
	for _, day := range previous {
		for _, ev := range day.Events {
			seen[day.Date+"|"+ev.Key()] = ev.Status
		}
	}

	for _, day := range current {
		for _, ev := range day.Events {
			status, exists := seen[day.Date+"|"+ev.Key()]
			if !exists {
				result.NewEvents = append(result.NewEvents, DatedEvent{Date: day.Date, Event: ev})
				continue
			}
			if status != ev.Status {
				result.StatusChanges = append(result.StatusChanges, StatusChange{
					Date:  day.Date,
					Event: ev,
					From:  status,
				})
			}
		}
	}

	return result
}
