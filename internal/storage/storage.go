package storage

import (
	"context"
	"errors"
	"time"
)

// Artifact names.
const (
	ScheduleArtifact    = "schedule.json"
	AthletesArtifact    = "athletes.json"
	LastUpdatedArtifact = "last-updated.json"
)

// ErrNotFound is returned when an artifact has never been written.
var ErrNotFound = errors.New("artifact not found")

// Store persists JSON artifacts by name.
type Store interface {
	Save(ctx context.Context, name string, v any) error
	Load(ctx context.Context, name string, v any) error
	ModTime(ctx context.Context, name string) (time.Time, error)
}

// LastUpdated is the marker written after every successful run.
type LastUpdated struct {
	ISO string `json:"iso"`
}

// NewLastUpdated formats t in loc with its numeric offset.
func NewLastUpdated(t time.Time, loc *time.Location) LastUpdated {
	if loc != nil {
		t = t.In(loc)
	}
	return LastUpdated{ISO: t.Format("2006-01-02T15:04:05-07:00")}
}
