package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GamesYear is the year assumed for ranges written without one.
const GamesYear = 2026

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|september|oct|october|nov|november|dec|december)`

var (
	sameMonthRange  = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	singleDay       = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonth      = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
)

// ParseDateRange parses a date range string into start and end times in year.
//
// Supported formats:
//   - "Feb 10-15" or "February 10-15" - Same month, different days
//   - "Feb 20 - Mar 1" - Different months
//   - "Feb 14" - A single day
//   - "February" - Entire month
//
// Times are in UTC. Start time is at 00:00:00, end time is at 23:59:59.
func ParseDateRange(input string, year int) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[3])
		if err != nil {
			return nil, nil, err
		}
		return span(time.Date(year, month, day1, 0, 0, 0, 0, time.UTC), time.Date(year, month, day2, 23, 59, 59, 0, time.UTC))
	}

	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		month1, month2 := parseMonth(m[1]), parseMonth(m[3])
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[4])
		if err != nil {
			return nil, nil, err
		}
		return span(time.Date(year, month1, day1, 0, 0, 0, 0, time.UTC), time.Date(year, month2, day2, 23, 59, 59, 0, time.UTC))
	}

	if m := singleDay.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		day, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		return span(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), time.Date(year, month, day, 23, 59, 59, 0, time.UTC))
	}

	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// Last day of month
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, time.UTC)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format. Use 'Feb 10-15', 'Feb 20 - Mar 1', 'Feb 14', or 'February'")
}

func span(from, to time.Time) (*time.Time, *time.Time, error) {
	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return &from, &to, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}

// parseMonth converts a month name to time.Month
func parseMonth(name string) time.Month {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), name[:3]) {
			return m
		}
	}
	return 0
}
