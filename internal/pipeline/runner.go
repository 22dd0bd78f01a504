package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/owg-schedule/internal/cache"
	"github.com/pfrederiksen/owg-schedule/internal/capture"
	"github.com/pfrederiksen/owg-schedule/internal/logger"
	"github.com/pfrederiksen/owg-schedule/internal/metrics"
	"github.com/pfrederiksen/owg-schedule/internal/notifier"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
	"github.com/pfrederiksen/owg-schedule/internal/storage"
)

// Opener starts a Renderer and returns a func that releases it.
type Opener func(ctx context.Context) (Renderer, func() error, error)

// Runner performs one complete scheduled run.
type Runner struct {
	Store    storage.Store
	Gate     *cache.Gate
	Notifier notifier.Notifier
	Metrics  *metrics.Recorder
	Options  Options
	Open     Opener

	// DryRun skips persistence.
	DryRun bool
	// PushURL is the Pushgateway to send metrics to after the run, if any.
	PushURL string
	Job     string
	Log     *logger.Logger
}

// Outcome is what a run produced.
type Outcome struct {
	RunID     string
	Cached    bool
	Result    *Result
	Changes   *schedule.DiffResult
	UpdatedAt storage.LastUpdated
}

// Run checks the cache, scrapes when stale, persists the artifacts and notifies.
// The only error returned is a failure to write to the primary store.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	runID := uuid.NewString()
	log := r.Log
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Fields{"run_id": runID})
	if r.Metrics == nil {
		r.Metrics = metrics.New()
	}
	defer r.push(ctx, log)

	if out, ok := r.cached(ctx, runID, log); ok {
		return out, nil
	}

	var previous []schedule.DaySchedule
	if err := r.Store.Load(ctx, storage.ScheduleArtifact, &previous); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("Previous schedule unreadable", logger.Fields{"error": err.Error()})
		}
		previous = nil
	}

	res := r.scrape(ctx, log)
	r.Metrics.RecordEvents(schedule.CountEvents(res.Days))

	changes := &schedule.DiffResult{
		NewEvents:     make([]schedule.DatedEvent, 0),
		StatusChanges: make([]schedule.StatusChange, 0),
	}
	if !res.Fallback {
		changes = schedule.Diff(previous, res.Days)
	}

	now := r.Options.Now
	if now == nil {
		now = time.Now
	}
	out := &Outcome{
		RunID:     runID,
		Result:    res,
		Changes:   changes,
		UpdatedAt: storage.NewLastUpdated(now(), r.Options.Location),
	}

	if r.DryRun {
		log.Info("Dry run, not persisting artifacts", nil)
	} else if err := r.persist(ctx, out); err != nil {
		log.Error("Failed to persist artifacts", nil, err)
		return out, err
	}

	log.Info("Run complete", logger.Fields{
		"days":           len(res.Days),
		"events":         schedule.CountEvents(res.Days),
		"fallback":       res.Fallback,
		"new_events":     len(changes.NewEvents),
		"status_changes": len(changes.StatusChanges),
	})

	if r.Notifier != nil {
		if err := r.Notifier.Notify(ctx, r.summary(out)); err != nil {
			log.Error("Notification failed", nil, err)
		}
	}
	return out, nil
}

func (r *Runner) cached(ctx context.Context, runID string, log *logger.Logger) (*Outcome, bool) {
	if r.Gate == nil {
		return nil, false
	}
	freshness := r.Gate.CheckStore(ctx, r.Store, storage.ScheduleArtifact)
	r.Metrics.RecordCacheCheck(freshness.String())
	if freshness != cache.Fresh {
		return nil, false
	}

	var days []schedule.DaySchedule
	if err := r.Store.Load(ctx, storage.ScheduleArtifact, &days); err != nil || len(days) == 0 {
		log.Warn("Cached schedule unusable, scraping", logger.Fields{"error": fmt.Sprint(err)})
		return nil, false
	}

	res := &Result{Days: days}
	if r.Options.Nationality.Enabled() {
		var raw json.RawMessage
		if err := r.Store.Load(ctx, storage.AthletesArtifact, &raw); err == nil {
			athletes, degraded, err := capture.DecodeAthletes(raw)
			if err != nil {
				log.Warn("Cached athletes unreadable", logger.Fields{"error": err.Error()})
			}
			res.Athletes, res.Degraded = athletes, degraded
		}
	}

	log.Info("Cached schedule is fresh, skipping scrape", logger.Fields{"ttl": r.Gate.TTL.String()})
	return &Outcome{
		RunID:   runID,
		Cached:  true,
		Result:  res,
		Changes: &schedule.DiffResult{},
	}, true
}

// scrape never fails; every problem ends in the fallback schedule.
func (r *Runner) scrape(ctx context.Context, log *logger.Logger) (res *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Scrape panicked, using fallback schedule", nil, fmt.Errorf("%v", rec))
			r.Metrics.RecordFallback(ReasonRender)
			res = FallbackResult(ReasonRender)
		}
	}()

	renderer, release, err := r.Open(ctx)
	if err != nil {
		log.Error("Failed to start browser, using fallback schedule", nil, err)
		r.Metrics.RecordFallback(ReasonLaunch)
		return FallbackResult(ReasonLaunch)
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("Failed to close browser", logger.Fields{"error": err.Error()})
		}
	}()

	return New(renderer, r.Options, r.Metrics, log).Run(ctx)
}

func (r *Runner) persist(ctx context.Context, out *Outcome) error {
	res := out.Result
	if err := r.Store.Save(ctx, storage.ScheduleArtifact, res.Days); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}

	if r.Options.Nationality.Enabled() {
		var athletes any = res.Athletes
		switch {
		case res.Degraded != nil:
			athletes = res.Degraded
		case res.Athletes == nil:
			athletes = []capture.AthleteDay{}
		}
		if err := r.Store.Save(ctx, storage.AthletesArtifact, athletes); err != nil {
			return fmt.Errorf("saving athletes: %w", err)
		}
	}

	if err := r.Store.Save(ctx, storage.LastUpdatedArtifact, out.UpdatedAt); err != nil {
		return fmt.Errorf("saving last-updated marker: %w", err)
	}
	return nil
}

func (r *Runner) summary(out *Outcome) *notifier.Summary {
	return &notifier.Summary{
		RunID:       out.RunID,
		GeneratedAt: out.UpdatedAt.ISO,
		Fallback:    out.Result.Fallback,
		Days:        len(out.Result.Days),
		Events:      schedule.CountEvents(out.Result.Days),
		Nationality: r.Options.Nationality.Code,
		Changes:     out.Changes,
		Athletes:    out.Result.Athletes,
	}
}

func (r *Runner) push(ctx context.Context, log *logger.Logger) {
	if r.PushURL == "" {
		return
	}
	job := r.Job
	if job == "" {
		job = "owg-schedule"
	}
	if err := r.Metrics.Push(ctx, r.PushURL, job); err != nil {
		log.Warn("Metrics push failed", logger.Fields{"error": err.Error()})
	}
}
