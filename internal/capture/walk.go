package capture

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var (
	nameKeys  = []string{"athleteName", "name", "competitorName", "displayName"}
	codeKeys  = []string{"noc", "countryCode"}
	eventKeys = []string{"eventUnitName", "disciplineName", "startDate", "eventName"}
)

// DecodeJSON decodes a response body into a generic value for walking.
func DecodeJSON(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	return v, nil
}

// FromJSON returns a sighting for every named participant found in any participant-like
// array of v.
func FromJSON(v any, url string, src Source) []Sighting {
	out := make([]Sighting, 0)
	for _, arr := range findArrays(v) {
		out = append(out, participants(arr, func(p Sighting) bool { return true }, url, src)...)
	}
	return out
}

// FromDayPayload extracts sightings from a day schedule payload. Participants are read
// from arrays beneath each event object and inherit the event's sport, name and start.
// When no event-scoped participant is accepted, every participant array in the payload is
// scanned instead, without event context.
func FromDayPayload(v any, url string, accept func(Sighting) bool) []Sighting {
	if accept == nil {
		accept = func(Sighting) bool { return true }
	}

	out := make([]Sighting, 0)
	for _, ev := range findEventObjects(v) {
		sport := str(ev, "disciplineName", "discipline", "sport")
		event := str(ev, "eventUnitName", "eventName", "competitionName", "name")
		start := str(ev, "startDate", "date")

		for _, arr := range findArrays(ev) {
			for _, s := range participants(arr, accept, url, SourceDayAPI) {
				s.Sport, s.Event, s.Time = sport, event, start
				out = append(out, s)
			}
		}
	}

	if len(out) == 0 {
		for _, arr := range findArrays(v) {
			out = append(out, participants(arr, accept, url, SourceDayAPI)...)
		}
	}
	return out
}

func participants(arr []any, accept func(Sighting) bool, url string, src Source) []Sighting {
	if !participantList(arr) {
		return nil
	}

	out := make([]Sighting, 0, len(arr))
	for _, item := range arr {
		p, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := str(p, nameKeys...)
		if name == "" {
			continue
		}
		s := Sighting{
			Name:            name,
			NationalityCode: code(p),
			Source:          src,
			URL:             url,
		}
		if accept(s) {
			out = append(out, s)
		}
	}
	return out
}

// participantList reports whether any element of arr carries a name.
func participantList(arr []any) bool {
	for _, item := range arr {
		if p, ok := item.(map[string]any); ok && str(p, nameKeys...) != "" {
			return true
		}
	}
	return false
}

func code(p map[string]any) string {
	if c := str(p, codeKeys...); c != "" {
		return c
	}
	if nation, ok := p["nation"].(map[string]any); ok {
		return str(nation, "code")
	}
	return ""
}

// str returns the first non-empty string value among keys.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findArrays returns every array in v, outermost first. Object keys are visited in
// sorted order.
func findArrays(v any) [][]any {
	var found [][]any
	switch t := v.(type) {
	case []any:
		found = append(found, t)
		for _, item := range t {
			found = append(found, findArrays(item)...)
		}
	case map[string]any:
		for _, k := range sortedKeys(t) {
			found = append(found, findArrays(t[k])...)
		}
	}
	return found
}

// findEventObjects returns every object in v that carries an event-identifying key.
func findEventObjects(v any) []map[string]any {
	var found []map[string]any
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			found = append(found, findEventObjects(item)...)
		}
	case map[string]any:
		for _, k := range eventKeys {
			if _, ok := t[k]; ok {
				found = append(found, t)
				break
			}
		}
		for _, k := range sortedKeys(t) {
			found = append(found, findEventObjects(t[k])...)
		}
	}
	return found
}
