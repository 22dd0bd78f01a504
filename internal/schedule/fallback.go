package schedule

// Fallback returns the fixed minimal schedule used when extraction yields nothing.
// Each call returns a fresh copy.
func Fallback() []DaySchedule {
	return []DaySchedule{
		{
			Date: "February 4, 2026",
			Events: []ScheduleEvent{
				{Time: "10:30", Event: "Men's Downhill 1st Official Training", Sport: "Alpine Skiing", Venue: "Cortina"},
				{Time: "18:05", Event: "Mixed Doubles Round Robin Session 1", Sport: "Curling", Venue: "Milano"},
			},
		},
		{
			Date: "February 6, 2026",
			Events: []ScheduleEvent{
				{Time: "13:00", Event: "Opening Ceremony", Sport: "Opening Ceremony", Venue: "Milano"},
			},
		},
		{
			Date: "February 22, 2026",
			Events: []ScheduleEvent{
				{Time: "13:00", Event: "Closing Ceremony", Sport: "Closing Ceremony", Venue: "Milano"},
			},
		},
	}
}
