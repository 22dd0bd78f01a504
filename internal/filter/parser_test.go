package filter

import (
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		input    string
		wantFrom string
		wantTo   string
		wantErr  bool
	}{
		{"Feb 10-15", "2026-02-10", "2026-02-15", false},
		{"february 6 - 22", "2026-02-06", "2026-02-22", false},
		{"Feb 20 - Mar 1", "2026-02-20", "2026-03-01", false},
		{"Feb 14", "2026-02-14", "2026-02-14", false},
		{"February", "2026-02-01", "2026-02-28", false},
		{"Feb 15-10", "", "", true},
		{"Feb 32", "", "", true},
		{"Mar 1 - Feb 20", "", "", true},
		{"next week", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseDateRange(tt.input, GamesYear)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v - %v", from, to)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := from.Format("2006-01-02"); got != tt.wantFrom {
				t.Errorf("from = %s, want %s", got, tt.wantFrom)
			}
			if got := to.Format("2006-01-02"); got != tt.wantTo {
				t.Errorf("to = %s, want %s", got, tt.wantTo)
			}
			if to.Hour() != 23 || from.Hour() != 0 {
				t.Errorf("range should cover whole days: %v - %v", from, to)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
	}{
		{"feb", time.February},
		{"FEBRUARY", time.February},
		{"sep", time.September},
		{"xx", 0},
		{"foo", 0},
	}
	for _, tt := range tests {
		if got := parseMonth(tt.in); got != tt.want {
			t.Errorf("parseMonth(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
