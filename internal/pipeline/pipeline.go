// Package pipeline drives a Renderer through one scrape: optional nation filter, markup
// extraction, normalization, athlete capture and aggregation. The Runner wraps it with the
// cache gate, persistence, diffing and notification.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/owg-schedule/internal/capture"
	"github.com/pfrederiksen/owg-schedule/internal/logger"
	"github.com/pfrederiksen/owg-schedule/internal/metrics"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
	"github.com/pfrederiksen/owg-schedule/internal/scraper"
)

// Fallback reasons.
const (
	ReasonEmpty  = "empty"
	ReasonRender = "render"
	ReasonLaunch = "launch"
)

const (
	filterOpenWait  = 700 * time.Millisecond
	filterApplyWait = 900 * time.Millisecond
	dismissWait     = 150 * time.Millisecond
	maxOpeners      = 20
	candidateTags   = "a, button, div, span"
	filterOptions   = "button, li, div, span, label, a"
	dialogSelector  = `[role="dialog"]`
	genericOpener   = ".css-c9900d"
)

// filterOpeners are tried in order to open the nation filter.
var filterOpeners = []string{
	`button[aria-label*="NOC" i]`,
	`button[aria-label*="All NOCs" i]`,
	`button[aria-label*="All Nations" i]`,
	`div.css-1b0c4u2 button.css-c9900d`,
}

// dayFetchScript fetches the day API from the page so its cookies are sent.
const dayFetchScript = `async (url) => {
  try {
    const resp = await fetch(url, { credentials: 'same-origin', method: 'GET' });
    if (!resp.ok) return { __fetch_error: resp.status };
    try { return await resp.json(); } catch (e) { return { __fetch_error: String(e) }; }
  } catch (e) {
    return { __fetch_error: String(e) };
  }
}`

// Options configures a Pipeline.
type Options struct {
	URL               string
	DayAPI            string
	NavigationTimeout time.Duration
	Location          *time.Location

	Nationality capture.Nationality
	Watch       []string
	MaxClicks   int
	MaxHandles  int
	ClickWait   time.Duration
	SettleWait  time.Duration

	Extract scraper.Config
	Codes   schedule.Codes
	Now     func() time.Time
	// Aggregation is appended to the aggregator's options.
	Aggregation []capture.Option

	// Budget bounds the whole run. Zero derives it from the timeouts and waits above.
	Budget time.Duration
}

// budget is the navigation timeout plus every wait the run can take.
func (o Options) budget() time.Duration {
	if o.Budget > 0 {
		return o.Budget
	}
	clicks := o.MaxClicks
	if clicks <= 0 {
		clicks = 100
	}
	b := o.NavigationTimeout + 3*o.SettleWait
	b += time.Duration(len(filterOpeners)+maxOpeners) * (filterOpenWait + filterApplyWait + dismissWait)
	b += time.Duration(clicks) * (o.ClickWait + dismissWait + time.Second)
	return b
}

// Result is the outcome of a single pipeline run.
type Result struct {
	Days           []schedule.DaySchedule
	RawRecords     int
	Fallback       bool
	FallbackReason string

	Athletes  []capture.AthleteDay
	Degraded  []capture.AthleteSummary
	Sightings map[capture.Source]int
	Warnings  []string
}

// FallbackResult wraps the fallback schedule.
func FallbackResult(reason string) *Result {
	return &Result{
		Days:           schedule.Fallback(),
		Fallback:       true,
		FallbackReason: reason,
	}
}

// Pipeline runs one scrape against a Renderer.
type Pipeline struct {
	renderer   Renderer
	opts       Options
	extractor  *scraper.Scraper
	normalizer *schedule.Normalizer
	aggregator *capture.Aggregator
	metrics    *metrics.Recorder
	log        *logger.Logger
}

// New creates a Pipeline. rec may be nil.
func New(r Renderer, opts Options, rec *metrics.Recorder, log *logger.Logger) *Pipeline {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Codes.Venues == nil && opts.Codes.Countries == nil {
		opts.Codes = schedule.DefaultCodes()
	}
	if log == nil {
		log = logger.Default()
	}

	return &Pipeline{
		renderer:  r,
		opts:      opts,
		extractor: scraper.New(opts.Extract),
		normalizer: schedule.NewNormalizer(opts.Codes,
			schedule.WithClock(opts.Now),
			schedule.WithLocation(opts.Location)),
		aggregator: capture.NewAggregator(opts.Nationality, append([]capture.Option{
			capture.WithClock(opts.Now),
			capture.WithLocation(opts.Location),
		}, opts.Aggregation...)...),
		metrics: rec,
		log:     log,
	}
}

// Run never fails: rendering problems degrade to partial data or the fallback schedule.
func (p *Pipeline) Run(ctx context.Context) *Result {
	nat := p.opts.Nationality
	ctx, cancel := context.WithTimeout(ctx, p.opts.budget())
	defer cancel()

	done := p.time("navigate")
	err := p.renderer.Navigate(ctx, p.opts.URL, p.opts.NavigationTimeout)
	done()
	if err != nil {
		p.log.Error("Navigation failed, using fallback schedule", logger.Fields{"url": p.opts.URL}, err)
		return p.fallback(ReasonRender)
	}

	if nat.Enabled() {
		if !p.applyNationFilter(ctx) {
			p.log.Warn("Nation filter not applied", logger.Fields{"nationality": nat.Word})
		}
	}
	_ = p.renderer.Settle(ctx, p.opts.SettleWait)

	markup, err := p.renderer.Markup(ctx)
	if err != nil {
		p.log.Error("Reading markup failed, using fallback schedule", nil, err)
		return p.fallback(ReasonRender)
	}

	done = p.time("extract")
	records, err := p.extractor.ExtractHTML(strings.NewReader(markup))
	done()
	if err != nil {
		p.log.Error("Parsing markup failed, using fallback schedule", nil, err)
		return p.fallback(ReasonRender)
	}
	if p.metrics != nil {
		p.metrics.RecordRawRecords(len(records))
	}

	days := p.normalizer.Normalize(records)
	if len(days) == 0 {
		p.log.Warn("No events extracted, using fallback schedule", logger.Fields{"raw_records": len(records)})
		res := p.fallback(ReasonEmpty)
		res.RawRecords = len(records)
		return res
	}

	res := &Result{Days: days, RawRecords: len(records)}
	p.log.Info("Schedule extracted", logger.Fields{
		"raw_records": len(records),
		"days":        len(days),
		"events":      schedule.CountEvents(days),
	})

	if nat.Enabled() {
		if !schedule.MentionsTeam(days, nat.Word, nat.Code) {
			msg := fmt.Sprintf("no event lists %s; the nation filter may not have applied", nat.Word)
			res.Warnings = append(res.Warnings, msg)
			p.log.Warn("Nationality missing from schedule", logger.Fields{"nationality": nat.Word})
		}
		p.captureAthletes(ctx, res)
	}

	return res
}

func (p *Pipeline) fallback(reason string) *Result {
	if p.metrics != nil {
		p.metrics.RecordFallback(reason)
	}
	return FallbackResult(reason)
}

func (p *Pipeline) time(stage string) func() {
	if p.metrics == nil {
		return func() {}
	}
	return p.metrics.Time(stage)
}

// applyNationFilter opens the nation filter and picks the nationality word from it.
func (p *Pipeline) applyNationFilter(ctx context.Context) bool {
	try := func(opener Target) (found, opened bool) {
		opened, err := p.renderer.Interact(ctx, opener)
		if err != nil {
			p.log.Debug("Filter opener click failed", logger.Fields{"selector": opener.Selector, "error": err.Error()})
		}
		if !opened {
			return false, false
		}
		_ = p.renderer.Settle(ctx, filterOpenWait)

		found, err = p.renderer.Interact(ctx, Target{
			Selector: filterOptions,
			Text:     p.opts.Nationality.Word,
			Scope:    dialogSelector,
		})
		if err != nil {
			p.log.Debug("Filter option click failed", logger.Fields{"error": err.Error()})
		}
		if found {
			_ = p.renderer.Settle(ctx, filterApplyWait)
			return true, true
		}
		_ = p.renderer.Dismiss(ctx)
		_ = p.renderer.Settle(ctx, dismissWait)
		return false, true
	}

	for _, sel := range filterOpeners {
		if ctx.Err() != nil {
			return false
		}
		if found, _ := try(Target{Selector: sel}); found {
			p.log.Info("Nation filter applied", logger.Fields{"selector": sel})
			return true
		}
	}

	for i := 0; i < maxOpeners; i++ {
		if ctx.Err() != nil {
			return false
		}
		found, opened := try(Target{Selector: genericOpener, Nth: i})
		if found {
			p.log.Info("Nation filter applied", logger.Fields{"selector": genericOpener, "index": i})
			return true
		}
		if !opened {
			break
		}
	}
	return false
}

// captureAthletes gathers sightings for today's events and aggregates them into res.
// Nothing is captured when today has no events.
func (p *Pipeline) captureAthletes(ctx context.Context, res *Result) {
	today := p.aggregator.Today()
	day := schedule.FindDay(res.Days, today.Format(schedule.DisplayLayout))
	if day == nil || len(day.Events) == 0 {
		p.log.Info("No events today, skipping athlete capture", logger.Fields{"date": today.Format(schedule.ISOLayout)})
		return
	}

	done := p.time("capture")
	sightings := p.collect(ctx, today, *day)
	done()

	res.Sightings = capture.CountBySource(sightings)
	if p.metrics != nil {
		for src, n := range res.Sightings {
			p.metrics.RecordSightings(string(src), n)
		}
	}

	athletes, err := p.aggregator.Aggregate(sightings, res.Days)
	if err != nil {
		p.log.Error("Aggregation failed, using degraded athlete list", nil, err)
		res.Degraded = p.aggregator.Degraded(sightings)
		if p.metrics != nil {
			p.metrics.RecordAppearances(len(res.Degraded))
		}
		return
	}
	res.Athletes = athletes

	if p.metrics != nil {
		n := 0
		for _, d := range athletes {
			n += len(d.Athletes)
		}
		p.metrics.RecordAppearances(n)
	}
}

func (p *Pipeline) collect(ctx context.Context, today time.Time, day schedule.DaySchedule) []capture.Sighting {
	var collector capture.Collector

	if p.opts.DayAPI != "" {
		url := fmt.Sprintf(p.opts.DayAPI, today.Format(schedule.ISOLayout))
		v, err := p.renderer.Evaluate(ctx, dayFetchScript, url)
		switch {
		case err != nil:
			p.log.Warn("Day API fetch failed", logger.Fields{"url": url, "error": err.Error()})
		case fetchError(v) != "":
			p.log.Warn("Day API fetch failed", logger.Fields{"url": url, "error": fetchError(v)})
		default:
			collector.Add(capture.FromDayPayload(v, url, p.aggregator.Accepts)...)
		}
	}

	remove := p.renderer.OnResponse(func(resp Response) {
		if !strings.Contains(resp.ContentType, "json") {
			return
		}
		v, err := capture.DecodeJSON(resp.Body)
		if err != nil {
			return
		}
		collector.Add(capture.FromJSON(v, resp.URL, capture.SourceNetwork)...)
	})
	defer remove()

	limit := len(day.Events)
	if p.opts.MaxClicks > 0 && p.opts.MaxClicks < limit {
		limit = p.opts.MaxClicks
	}
	for _, ev := range day.Events[:limit] {
		if ctx.Err() != nil {
			break
		}
		search := strings.TrimSpace(strings.ReplaceAll(ev.Event, `"`, ""))
		if search == "" {
			continue
		}

		clicked, err := p.renderer.Interact(ctx, Target{
			Selector: candidateTags,
			Text:     search,
			Limit:    p.opts.MaxHandles,
		})
		if err != nil {
			p.log.Debug("Event click failed", logger.Fields{"event": search, "error": err.Error()})
		}
		if !clicked {
			continue
		}
		_ = p.renderer.Settle(ctx, p.opts.ClickWait)

		collector.Add(p.fromDialog(ctx, ev)...)

		_ = p.renderer.Dismiss(ctx)
		_ = p.renderer.Settle(ctx, dismissWait)
	}

	_ = p.renderer.Settle(ctx, p.opts.SettleWait)
	return collector.Sightings()
}

// fromDialog reads names from the open dialog. They inherit the clicked event's context.
func (p *Pipeline) fromDialog(ctx context.Context, ev schedule.ScheduleEvent) []capture.Sighting {
	markup, err := p.renderer.Markup(ctx)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	sightings := capture.FromDOM(doc, p.renderer.URL(), p.opts.Nationality, p.opts.Watch)
	for i := range sightings {
		if sightings[i].Sport == "" {
			sightings[i].Sport = ev.Sport
		}
		if sightings[i].Event == "" {
			sightings[i].Event = ev.Event
		}
		if sightings[i].Time == "" {
			sightings[i].Time = ev.Time
		}
	}
	return sightings
}

func fetchError(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	e, ok := m["__fetch_error"]
	if !ok {
		return ""
	}
	return fmt.Sprint(e)
}
