// Package schedule provides the event schedule domain model for the Milano Cortina 2026
// schedule page.
//
// Raw records recovered from page markup are turned into per-day schedules by the
// Normalizer: times and display dates are parsed from the embedded timestamps, venue and
// country codes are resolved to display names, statuses are derived from the start/end
// window, and events are deduplicated and ordered by time. The package also carries the
// fixed fallback schedule and snapshot diffing between two runs.
package schedule
