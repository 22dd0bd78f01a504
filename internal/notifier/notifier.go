package notifier

import (
	"context"

	"github.com/pfrederiksen/owg-schedule/internal/capture"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// Summary describes the outcome of one scrape run.
type Summary struct {
	RunID       string               `json:"runId"`
	GeneratedAt string               `json:"generatedAt"`
	Fallback    bool                 `json:"fallback"`
	Days        int                  `json:"days"`
	Events      int                  `json:"events"`
	Nationality string               `json:"nationality,omitempty"`
	Changes     *schedule.DiffResult `json:"changes"`
	Athletes    []capture.AthleteDay `json:"athletes,omitempty"`
}

// HasChanges reports whether the run changed the published schedule.
func (s *Summary) HasChanges() bool {
	return s.Changes != nil && !s.Changes.Empty()
}

// Notifier defines the interface for publishing run summaries
type Notifier interface {
	// Notify publishes the summary of a run
	Notify(ctx context.Context, summary *Summary) error
}

// Nop discards every summary.
type Nop struct{}

func (Nop) Notify(context.Context, *Summary) error { return nil }
