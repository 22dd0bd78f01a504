package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pfrederiksen/owg-schedule/internal/schedule"
)

func TestFileStore(t *testing.T) {
	// Create a temporary directory for test artifacts
	tmpDir, err := os.MkdirTemp("", "storage-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	store, err := New(filepath.Join(tmpDir, "nested", "data"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	days := schedule.Fallback()

	if err := store.Save(ctx, ScheduleArtifact, days); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var loaded []schedule.DaySchedule
	if err := store.Load(ctx, ScheduleArtifact, &loaded); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, days) {
		t.Errorf("loaded = %+v, want %+v", loaded, days)
	}

	mtime, err := store.ModTime(ctx, ScheduleArtifact)
	if err != nil {
		t.Fatalf("ModTime failed: %v", err)
	}
	if time.Since(mtime) > time.Minute {
		t.Errorf("unexpected mtime %v", mtime)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	var v any
	if err := store.Load(context.Background(), "missing.json", &v); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load error = %v, want ErrNotFound", err)
	}
	if _, err := store.ModTime(context.Background(), "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ModTime error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ScheduleArtifact), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	var v []schedule.DaySchedule
	err = store.Load(context.Background(), ScheduleArtifact, &v)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestFileStoreHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := New("~/owg-data")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if store.Dir() != filepath.Join(home, "owg-data") {
		t.Errorf("Dir() = %q", store.Dir())
	}
}

func TestNewLastUpdated(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	got := NewLastUpdated(time.Date(2026, 2, 10, 11, 30, 0, 0, time.UTC), rome)
	if got.ISO != "2026-02-10T12:30:00+01:00" {
		t.Errorf("ISO = %q", got.ISO)
	}
}

type memStore struct {
	data  map[string]any
	err   error
	saves int
}

func (m *memStore) Save(ctx context.Context, name string, v any) error {
	m.saves++
	if m.err != nil {
		return m.err
	}
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[name] = v
	return nil
}

func (m *memStore) Load(ctx context.Context, name string, v any) error {
	if _, ok := m.data[name]; !ok {
		return ErrNotFound
	}
	return nil
}

func (m *memStore) ModTime(ctx context.Context, name string) (time.Time, error) {
	if _, ok := m.data[name]; !ok {
		return time.Time{}, ErrNotFound
	}
	return time.Unix(1, 0), nil
}

func TestMirrored(t *testing.T) {
	primary := &memStore{}
	broken := &memStore{err: errors.New("mirror down")}
	healthy := &memStore{}

	m := &Mirrored{Primary: primary, Mirrors: []Store{broken, healthy}}
	if err := m.Save(context.Background(), ScheduleArtifact, "payload"); err != nil {
		t.Fatalf("mirror failure should not fail Save: %v", err)
	}
	if healthy.data[ScheduleArtifact] != "payload" {
		t.Error("healthy mirror did not receive the artifact")
	}
	if _, err := m.ModTime(context.Background(), ScheduleArtifact); err != nil {
		t.Errorf("ModTime failed: %v", err)
	}

	failing := &Mirrored{Primary: &memStore{err: errors.New("disk full")}, Mirrors: []Store{healthy}}
	healthy.saves = 0
	if err := failing.Save(context.Background(), AthletesArtifact, "x"); err == nil {
		t.Error("primary failure should be returned")
	}
	if healthy.saves != 0 {
		t.Error("mirrors should not be written when the primary fails")
	}
}
