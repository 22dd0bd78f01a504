// Package cache decides whether a previously persisted schedule is fresh enough to reuse.
package cache

import (
	"context"
	"time"
)

// Freshness is the outcome of a cache check.
type Freshness int

const (
	Stale Freshness = iota
	Fresh
)

func (f Freshness) String() string {
	if f == Fresh {
		return "fresh"
	}
	return "stale"
}

// ModTimer reports when a named artifact was last written.
type ModTimer interface {
	ModTime(ctx context.Context, name string) (time.Time, error)
}

// Gate compares artifact age against a TTL. A zero TTL disables caching.
type Gate struct {
	TTL time.Duration
	Now func() time.Time
}

// NewGate creates a Gate using the wall clock.
func NewGate(ttl time.Duration) *Gate {
	return &Gate{TTL: ttl, Now: time.Now}
}

// Check returns Fresh when the artifact is younger than the TTL. Any error reading its
// metadata counts as Stale.
func (g *Gate) Check(mtime time.Time, err error) Freshness {
	if g.TTL <= 0 || err != nil || mtime.IsZero() {
		return Stale
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	if now().Sub(mtime) < g.TTL {
		return Fresh
	}
	return Stale
}

// CheckStore looks up the artifact's modification time and checks it.
func (g *Gate) CheckStore(ctx context.Context, store ModTimer, name string) Freshness {
	if g.TTL <= 0 {
		return Stale
	}
	mtime, err := store.ModTime(ctx, name)
	return g.Check(mtime, err)
}
