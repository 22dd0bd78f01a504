package scraper

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

// Field names understood by the extractor.
const (
	FieldEvent    = "event"
	FieldVenue    = "venue"
	FieldStart    = "start"
	FieldEnd      = "end"
	FieldLocation = "location"
	FieldStatus   = "status"
)

const (
	DefaultWindowSize = 1500
	DefaultMaxTeams   = 8
)

// Rule recovers one field from a window. Patterns are tried in order and the first
// submatch wins.
type Rule struct {
	Field    string
	Patterns []*regexp.Regexp
	Required bool
}

func (r Rule) find(window string) (string, bool) {
	for _, p := range r.Patterns {
		if m := p.FindStringSubmatch(window); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Config drives record recovery.
type Config struct {
	// WindowSize is the number of bytes scanned after each anchor match.
	WindowSize int
	// Anchor marks the start of a record; its first submatch is the discipline name.
	Anchor *regexp.Regexp
	Rules  []Rule

	// TeamSports are matched exactly against the discipline name.
	TeamSports []string
	// RelaySports are matched as substrings of the discipline name.
	RelaySports []string
	// RelayMarker classifies an event name as a relay or final.
	RelayMarker *regexp.Regexp
	// MaxTeams is the largest participant list still treated as a head-to-head.
	MaxTeams int

	CodePattern  *regexp.Regexp
	NamePatterns []*regexp.Regexp
}

// JSONField returns a pattern capturing the non-empty string value of a JSON key.
func JSONField(key string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `":"([^"]+)"`)
}

// DefaultConfig returns the rule set for the Milano Cortina schedule page.
func DefaultConfig() Config {
	return Config{
		WindowSize: DefaultWindowSize,
		Anchor:     JSONField("disciplineName"),
		Rules: []Rule{
			{Field: FieldEvent, Patterns: []*regexp.Regexp{JSONField("eventUnitName")}, Required: true},
			{Field: FieldVenue, Patterns: []*regexp.Regexp{JSONField("venue")}, Required: true},
			{Field: FieldStart, Patterns: []*regexp.Regexp{JSONField("startDate")}, Required: true},
			{Field: FieldEnd, Patterns: []*regexp.Regexp{JSONField("endDate")}},
			{Field: FieldLocation, Patterns: []*regexp.Regexp{regexp.MustCompile(`"locationDescription":"([^"]*)"`)}},
			{Field: FieldStatus, Patterns: []*regexp.Regexp{
				JSONField("eventStatus"),
				JSONField("status"),
				JSONField("eventUnitStatus"),
				JSONField("scheduleStatus"),
				JSONField("eventUnitScheduleStatus"),
				JSONField("competitionStatus"),
			}},
		},
		TeamSports:  []string{"Curling", "Ice Hockey"},
		RelaySports: []string{"Short Track", "Speed Skating", "Biathlon", "Cross-Country", "Ski Jumping", "Nordic Combined"},
		RelayMarker: regexp.MustCompile(`Relay|relay|Final|final`),
		MaxTeams:    DefaultMaxTeams,
		CodePattern: JSONField("noc"),
		NamePatterns: []*regexp.Regexp{
			JSONField("athleteName"),
			JSONField("athlete"),
			JSONField("competitorName"),
			JSONField("name"),
			JSONField("printName"),
		},
	}
}

// Scraper extracts raw schedule records from markup
type Scraper struct {
	cfg Config
}

// New creates a Scraper. Zero-valued settings fall back to the defaults; set a
// slice to an empty non-nil value to disable it.
func New(cfg Config) *Scraper {
	def := DefaultConfig()
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = def.WindowSize
	}
	if cfg.Anchor == nil {
		cfg.Anchor = def.Anchor
	}
	if cfg.Rules == nil {
		cfg.Rules = def.Rules
	}
	if cfg.TeamSports == nil {
		cfg.TeamSports = def.TeamSports
	}
	if cfg.RelaySports == nil {
		cfg.RelaySports = def.RelaySports
	}
	if cfg.RelayMarker == nil {
		cfg.RelayMarker = def.RelayMarker
	}
	if cfg.MaxTeams <= 0 {
		cfg.MaxTeams = def.MaxTeams
	}
	if cfg.CodePattern == nil {
		cfg.CodePattern = def.CodePattern
	}
	if cfg.NamePatterns == nil {
		cfg.NamePatterns = def.NamePatterns
	}
	return &Scraper{cfg: cfg}
}

// ExtractHTML parses a full document and extracts records from its body.
func (s *Scraper) ExtractHTML(r io.Reader) ([]schedule.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("rendering body: %w", err)
	}

	// Text nodes come back entity-escaped; embedded JSON needs literal quotes.
	return s.Extract(html.UnescapeString(body)), nil
}

// Extract scans markup and returns one record per anchor occurrence that carries every
// required field, in scan order. Overlapping windows may yield the same record twice.
func (s *Scraper) Extract(markup string) []schedule.RawRecord {
	records := make([]schedule.RawRecord, 0)

	for _, loc := range s.cfg.Anchor.FindAllStringSubmatchIndex(markup, -1) {
		start := loc[0]
		end := start + s.cfg.WindowSize
		if end > len(markup) {
			end = len(markup)
		}
		discipline := markup[loc[2]:loc[3]]

		if rec, ok := s.record(discipline, markup[start:end]); ok {
			records = append(records, rec)
		}
	}

	return records
}

func (s *Scraper) record(discipline, window string) (schedule.RawRecord, bool) {
	fields := make(map[string]string, len(s.cfg.Rules))
	for _, rule := range s.cfg.Rules {
		value, ok := rule.find(window)
		if !ok {
			if rule.Required {
				return schedule.RawRecord{}, false
			}
			continue
		}
		fields[rule.Field] = value
	}

	status := fields[FieldStatus]
	if status == "" {
		status = schedule.StatusScheduled
	}

	rec := schedule.RawRecord{
		Discipline:   discipline,
		EventUnit:    fields[FieldEvent],
		VenueCode:    fields[FieldVenue],
		Start:        fields[FieldStart],
		End:          fields[FieldEnd],
		Location:     fields[FieldLocation],
		Status:       status,
		AthleteNames: s.names(window),
	}

	if s.isTeamOrRelay(discipline, rec.EventUnit) {
		codes := s.codes(window)
		if len(codes) > 0 && len(codes) <= s.cfg.MaxTeams {
			rec.ParticipantCodes = codes
		}
	}

	return rec, true
}

func (s *Scraper) isTeamOrRelay(discipline, eventName string) bool {
	for _, sport := range s.cfg.TeamSports {
		if discipline == sport {
			return true
		}
	}
	for _, sport := range s.cfg.RelaySports {
		if strings.Contains(discipline, sport) {
			return true
		}
	}
	return s.cfg.RelayMarker.MatchString(eventName)
}

// codes returns the distinct participant codes in the window, in order of appearance.
func (s *Scraper) codes(window string) []string {
	return unique(s.cfg.CodePattern.FindAllStringSubmatch(window, -1))
}

func (s *Scraper) names(window string) []string {
	var matches [][]string
	for _, p := range s.cfg.NamePatterns {
		matches = append(matches, p.FindAllStringSubmatch(window, -1)...)
	}
	return unique(matches)
}

func unique(matches [][]string) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}
