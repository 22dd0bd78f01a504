// Package calendar exports a normalized schedule as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// DefaultDuration is used for DTEND since the schedule carries start times only.
const DefaultDuration = 2 * time.Hour

const prodID = "-//OWG Schedule//owg-schedule//EN"

// uidNamespace scopes the name-based UIDs so re-exports keep the same UID per event.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.olympics.com/en/milano-cortina-2026/schedule"))

// GenerateICS renders every event of days as a VEVENT. Clock times are read in loc.
// Events whose date or time cannot be parsed are skipped. Returns "" when nothing
// can be exported.
func GenerateICS(days []schedule.DaySchedule, name string, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	var events strings.Builder
	count := 0
	for _, day := range days {
		date := schedule.ParseDisplayDate(day.Date)
		if date.IsZero() {
			continue
		}
		for _, ev := range day.Events {
			start, ok := startTime(date, ev.Time, loc)
			if !ok {
				continue
			}
			writeEvent(&events, day.Date, ev, start, now)
			count++
		}
	}
	if count == 0 {
		return ""
	}

	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if name != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(name))
	}
	writeLine(&ics, "X-WR-TIMEZONE:"+loc.String())
	ics.WriteString(events.String())
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

// UID returns the stable identifier of an event on a given day.
func UID(date string, ev schedule.ScheduleEvent) string {
	return uuid.NewSHA1(uidNamespace, []byte(date+"|"+ev.Key())).String() + "@owg-schedule"
}

func startTime(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

func writeEvent(b *strings.Builder, date string, ev schedule.ScheduleEvent, start, now time.Time) {
	b.WriteString("BEGIN:VEVENT\r\n")
	writeLine(b, "UID:"+UID(date, ev))
	writeLine(b, "DTSTAMP:"+formatICSTime(now))
	writeLine(b, "DTSTART:"+formatICSTime(start))
	writeLine(b, "DTEND:"+formatICSTime(start.Add(DefaultDuration)))
	writeLine(b, "SUMMARY:"+escapeICS(fmt.Sprintf("%s - %s", ev.Sport, ev.Event)))

	var desc []string
	if ev.Teams != "" {
		desc = append(desc, ev.Teams)
	}
	if ev.Athletes != "" {
		desc = append(desc, "Athletes: "+ev.Athletes)
	}
	if ev.Status != "" {
		desc = append(desc, "Status: "+ev.Status)
	}
	if len(desc) > 0 {
		writeLine(b, "DESCRIPTION:"+escapeICS(strings.Join(desc, "\n")))
	}
	if ev.Venue != "" {
		writeLine(b, "LOCATION:"+escapeICS(ev.Venue))
	}
	writeLine(b, "CATEGORIES:"+escapeICS(ev.Sport))
	b.WriteString("STATUS:CONFIRMED\r\n")
	b.WriteString("TRANSP:OPAQUE\r\n")
	b.WriteString("END:VEVENT\r\n")
}

// writeLine folds content lines longer than 75 octets as RFC 5545 requires.
func writeLine(b *strings.Builder, line string) {
	const limit = 75
	for len(line) > limit {
		cut := limit
		// Never split a UTF-8 sequence
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
