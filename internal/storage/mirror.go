package storage

import (
	"context"
	"time"

	"github.com/pfrederiksen/owg-schedule/internal/logger"
)

// Mirrored writes to a primary store and copies every save to best-effort mirrors.
// Reads always go to the primary.
type Mirrored struct {
	Primary Store
	Mirrors []Store
}

// Save writes to the primary, then to each mirror. Mirror failures are logged.
func (m *Mirrored) Save(ctx context.Context, name string, v any) error {
	if err := m.Primary.Save(ctx, name, v); err != nil {
		return err
	}
	for i, mirror := range m.Mirrors {
		if err := mirror.Save(ctx, name, v); err != nil {
			logger.Warn("Mirror write failed", logger.Fields{
				"artifact": name,
				"mirror":   i,
				"error":    err.Error(),
			})
		}
	}
	return nil
}

// Load reads from the primary store.
func (m *Mirrored) Load(ctx context.Context, name string, v any) error {
	return m.Primary.Load(ctx, name, v)
}

// ModTime reads from the primary store.
func (m *Mirrored) ModTime(ctx context.Context, name string) (time.Time, error) {
	return m.Primary.ModTime(ctx, name)
}
