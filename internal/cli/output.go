package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/owg-schedule/internal/capture"
	"github.com/pfrederiksen/owg-schedule/internal/filter"
	"github.com/pfrederiksen/owg-schedule/internal/pipeline"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	RunID          string                   `json:"run_id,omitempty"`
	GeneratedAt    time.Time                `json:"generated_at"`
	UpdatedAt      string                   `json:"updated_at,omitempty"`
	Cached         bool                     `json:"cached"`
	Fallback       bool                     `json:"fallback"`
	FallbackReason string                   `json:"fallback_reason,omitempty"`
	RawRecords     int                      `json:"raw_records"`
	EventCount     int                      `json:"event_count"`
	Days           []schedule.DaySchedule   `json:"days"`
	Athletes       []capture.AthleteDay     `json:"athletes,omitempty"`
	Degraded       []capture.AthleteSummary `json:"degraded_athletes,omitempty"`
	Sightings      map[capture.Source]int   `json:"sightings,omitempty"`
	Changes        *schedule.DiffResult     `json:"changes,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty"`
	Filter         string                   `json:"filter,omitempty"`
}

// applyFilter narrows the displayed days and recounts events.
func (r *OutputResult) applyFilter(f *filter.Filter) {
	if f == nil || f.IsEmpty() {
		return
	}
	r.Days = f.Apply(r.Days)
	r.EventCount = schedule.CountEvents(r.Days)
	r.Filter = f.String()
}

func newOutputResult(out *pipeline.Outcome) *OutputResult {
	res := out.Result
	return &OutputResult{
		RunID:          out.RunID,
		GeneratedAt:    time.Now().UTC(),
		UpdatedAt:      out.UpdatedAt.ISO,
		Cached:         out.Cached,
		Fallback:       res.Fallback,
		FallbackReason: res.FallbackReason,
		RawRecords:     res.RawRecords,
		EventCount:     schedule.CountEvents(res.Days),
		Days:           res.Days,
		Athletes:       res.Athletes,
		Degraded:       res.Degraded,
		Sightings:      res.Sightings,
		Changes:        out.Changes,
		Warnings:       res.Warnings,
	}
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	switch {
	case result.Cached:
		fmt.Fprintln(w, "Using cached schedule.")
	case result.Fallback:
		fmt.Fprintf(w, "Using fallback schedule (%s).\n", result.FallbackReason)
	}

	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}

	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	fmt.Fprintf(w, "%d events over %d days\n", result.EventCount, len(result.Days))
	for _, day := range result.Days {
		fmt.Fprintf(w, "\n%s\n", day.Date)
		for _, ev := range day.Events {
			writeEvent(w, ev, verbose)
		}
	}

	writeChanges(w, result.Changes)
	writeAthletes(w, result, verbose)

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "\nWarning: %s\n", warning)
	}
	return nil
}

func writeEvent(w io.Writer, ev schedule.ScheduleEvent, verbose bool) {
	line := fmt.Sprintf("  %s  %s - %s", ev.Time, ev.Sport, ev.Event)
	if ev.Venue != "" {
		line += " @ " + ev.Venue
	}
	if ev.Status != "" && ev.Status != schedule.StatusScheduled {
		line += " [" + ev.Status + "]"
	}
	fmt.Fprintln(w, line)

	if ev.Teams != "" {
		fmt.Fprintf(w, "         %s\n", ev.Teams)
	}
	if verbose && ev.Athletes != "" {
		fmt.Fprintf(w, "         %s\n", ev.Athletes)
	}
}

func writeChanges(w io.Writer, changes *schedule.DiffResult) {
	if changes == nil || changes.Empty() {
		return
	}
	fmt.Fprintf(w, "\nChanges: %d new, %d status\n", len(changes.NewEvents), len(changes.StatusChanges))
	for _, ne := range changes.NewEvents {
		fmt.Fprintf(w, "  NEW     %s %s  %s - %s\n", ne.Date, ne.Event.Time, ne.Event.Sport, ne.Event.Event)
	}
	for _, sc := range changes.StatusChanges {
		fmt.Fprintf(w, "  STATUS  %s %s  %s - %s: %s -> %s\n",
			sc.Date, sc.Event.Time, sc.Event.Sport, sc.Event.Event, sc.From, sc.Event.Status)
	}
}

func writeAthletes(w io.Writer, result *OutputResult, verbose bool) {
	for _, day := range result.Athletes {
		fmt.Fprintf(w, "\nAthletes on %s\n", day.Date)
		for _, a := range day.Athletes {
			fmt.Fprintf(w, "  %s  %s  %s - %s\n", a.Time, a.Athlete, a.Sport, a.Event)
		}
	}

	if len(result.Degraded) > 0 {
		names := make([]string, 0, len(result.Degraded))
		for _, a := range result.Degraded {
			names = append(names, a.Athlete)
		}
		fmt.Fprintf(w, "\nAthletes (unmatched): %s\n", strings.Join(names, ", "))
	}

	if verbose && len(result.Sightings) > 0 {
		sources := make([]string, 0, len(result.Sightings))
		for src := range result.Sightings {
			sources = append(sources, string(src))
		}
		sort.Strings(sources)
		parts := make([]string, 0, len(sources))
		for _, src := range sources {
			parts = append(parts, fmt.Sprintf("%s=%d", src, result.Sightings[capture.Source(src)]))
		}
		fmt.Fprintf(w, "\nSightings: %s\n", strings.Join(parts, " "))
	}
}
