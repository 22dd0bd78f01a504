package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		log     func()
		want    bool // should log
		level   string
		message string
	}{
		{
			name:    "info message",
			log:     func() { logger.Info("test message", Fields{"key": "value"}) },
			want:    true,
			level:   "info",
			message: "test message",
		},
		{
			name: "debug below threshold",
			log:  func() { logger.Debug("debug message", nil) },
			want: false,
		},
		{
			name:    "error with err",
			log:     func() { logger.Error("error occurred", nil, errors.New("test error")) },
			want:    true,
			level:   "error",
			message: "error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Fatalf("logged = %v, want %v", logged, tt.want)
			}
			if !logged {
				return
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
			if entry["message"] != tt.message {
				t.Errorf("message = %v, want %v", entry["message"], tt.message)
			}
			if _, ok := entry["time"]; !ok {
				t.Error("expected timestamp field")
			}
		})
	}
}

func TestLogger_FieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	New(LevelDebug, &buf).Error("save failed", Fields{"artifact": "schedule.json", "attempt": 2}, errors.New("disk full"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["artifact"] != "schedule.json" {
		t.Errorf("artifact = %v", entry["artifact"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt = %v", entry["attempt"])
	}
	if entry["error"] != "disk full" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	child := New(LevelInfo, &buf).With(Fields{"run_id": "abc"})
	child.Info("started", nil)

	if !strings.Contains(buf.String(), `"run_id":"abc"`) {
		t.Errorf("child logger lost fields: %s", buf.String())
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		minLevel Level
		logLevel string
		want     bool
	}{
		{LevelDebug, "debug", true},
		{LevelInfo, "debug", false},
		{LevelInfo, "warn", true},
		{LevelWarn, "info", false},
		{LevelError, "warn", false},
		{LevelError, "error", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.minLevel)+"_"+tt.logLevel, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.minLevel, &buf)
			switch tt.logLevel {
			case "debug":
				l.Debug("m", nil)
			case "info":
				l.Info("m", nil)
			case "warn":
				l.Warn("m", nil)
			case "error":
				l.Error("m", nil, nil)
			}
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(prev)

	Debug("debug", nil)
	Info("info", Fields{"k": 1})
	Warn("warn", nil)
	Error("error", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 entries, got %d: %s", len(lines), buf.String())
	}
}
