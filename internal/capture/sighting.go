package capture

import "sync"

// Source identifies the producer of a sighting.
type Source string

const (
	SourceDayAPI  Source = "day-api"
	SourceNetwork Source = "network"
	SourceDOM     Source = "dom"
)

// Sighting is an unverified candidate athlete appearance.
type Sighting struct {
	Name            string `json:"name"`
	NationalityCode string `json:"noc,omitempty"`
	Sport           string `json:"sport,omitempty"`
	Event           string `json:"event,omitempty"`
	// Time is either a full timestamp or a bare HH:MM clock.
	Time   string `json:"time,omitempty"`
	Source Source `json:"source"`
	URL    string `json:"url,omitempty"`
}

// Collector accumulates sightings from concurrent producers.
type Collector struct {
	mu        sync.Mutex
	sightings []Sighting
}

// Add appends sightings.
func (c *Collector) Add(s ...Sighting) {
	if len(s) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sightings = append(c.sightings, s...)
}

// Sightings returns a copy of everything collected so far.
func (c *Collector) Sightings() []Sighting {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sighting, len(c.sightings))
	copy(out, c.sightings)
	return out
}

// Len returns the number of collected sightings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sightings)
}

// CountBySource tallies sightings per producer.
func CountBySource(sightings []Sighting) map[Source]int {
	counts := make(map[Source]int)
	for _, s := range sightings {
		counts[s.Source]++
	}
	return counts
}
