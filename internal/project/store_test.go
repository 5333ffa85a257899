package project

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)}
}

func openTestStore(t *testing.T, opts ...Option) (*Store, string, *fakeClock) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	clock := newClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path, clock
}

func reload(t *testing.T, path string) []Project {
	t.Helper()
	projects, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return projects
}

func TestStore_OpenMissingFileIsEmpty(t *testing.T) {
	s, path, _ := openTestStore(t)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("opening must not create the backing file, stat err=%v", err)
	}
}

func TestStore_AddThenLoad(t *testing.T) {
	s, path, _ := openTestStore(t)

	p, err := s.Add("Portrait")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.TimeSpent != 0 || p.LastTracked != NeverTracked {
		t.Fatalf("unexpected new project: %+v", p)
	}
	if p.CreatedAt != "2024-03-01 09:00:00" {
		t.Fatalf("created_at = %q", p.CreatedAt)
	}

	got := reload(t, path)
	if len(got) != 1 || got[0] != p {
		t.Fatalf("reloaded %v, want [%v]", got, p)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(loaded, got) {
		t.Fatalf("Load = %v, want %v", loaded, got)
	}
}

func TestStore_AddRejectsBadNames(t *testing.T) {
	s, path, _ := openTestStore(t)
	if _, err := s.Add("Landscape"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	for _, name := range []string{"", "   ", "\t\n", "Landscape", "  Landscape "} {
		if _, err := s.Add(name); !errors.Is(err, ErrValidation) {
			t.Fatalf("Add(%q): expected ErrValidation, got %v", name, err)
		}
	}
	if got := reload(t, path); len(got) != 1 {
		t.Fatalf("rejected adds must not be written, got %v", got)
	}
}

func TestStore_TrackingAccumulatesWholeSeconds(t *testing.T) {
	s, path, clock := openTestStore(t)
	created, _ := s.Add("Inking")

	clock.Advance(time.Minute)
	if err := s.StartTracking("Inking"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	if s.State("Inking") != Tracking {
		t.Fatalf("expected tracking state")
	}

	clock.Advance(90*time.Second + 900*time.Millisecond)
	elapsed, err := s.PauseTracking("Inking")
	if err != nil {
		t.Fatalf("PauseTracking: %v", err)
	}
	if elapsed != 90 {
		t.Fatalf("elapsed = %d, want 90", elapsed)
	}
	if s.State("Inking") != Idle {
		t.Fatalf("expected idle state after pause")
	}

	got := reload(t, path)[0]
	if got.TimeSpent != 90 {
		t.Fatalf("time_spent = %d, want 90", got.TimeSpent)
	}
	if got.LastTracked != "2024-03-01 09:02:30" {
		t.Fatalf("last_tracked = %q", got.LastTracked)
	}
	if got.LastTracked <= created.CreatedAt {
		t.Fatalf("last_tracked %q should sort after created_at %q", got.LastTracked, created.CreatedAt)
	}

	// A second session adds to the first.
	_ = s.StartTracking("Inking")
	clock.Advance(10 * time.Second)
	if _, err := s.PauseTracking("Inking"); err != nil {
		t.Fatalf("PauseTracking: %v", err)
	}
	if p, _ := s.Get("Inking"); p.TimeSpent != 100 {
		t.Fatalf("time_spent = %d, want 100", p.TimeSpent)
	}
}

func TestStore_TrackingWithRealClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Add("Sketch"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.StartTracking("Sketch"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	elapsed, err := s.PauseTracking("Sketch")
	if err != nil {
		t.Fatalf("PauseTracking: %v", err)
	}
	if elapsed < 1 || elapsed > 2 {
		t.Fatalf("elapsed = %d, want about 1", elapsed)
	}
}

func TestStore_StartTwiceFails(t *testing.T) {
	s, _, _ := openTestStore(t)
	_, _ = s.Add("Study")
	if err := s.StartTracking("Study"); err != nil {
		t.Fatalf("StartTracking: %v", err)
	}
	if err := s.StartTracking("Study"); !errors.Is(err, ErrAlreadyTracking) {
		t.Fatalf("expected ErrAlreadyTracking, got %v", err)
	}
}

func TestStore_StartUnknownProjectFails(t *testing.T) {
	s, _, _ := openTestStore(t)
	if err := s.StartTracking("nope"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestStore_PauseWithoutSessionFails(t *testing.T) {
	s, path, _ := openTestStore(t)
	_, _ = s.Add("Study")
	if err := s.EditTime("Study", 42); err != nil {
		t.Fatalf("EditTime: %v", err)
	}

	for _, name := range []string{"Study", "missing"} {
		if _, err := s.PauseTracking(name); !errors.Is(err, ErrNotTracking) {
			t.Fatalf("PauseTracking(%q): expected ErrNotTracking, got %v", name, err)
		}
	}
	if got := reload(t, path)[0].TimeSpent; got != 42 {
		t.Fatalf("time_spent changed to %d", got)
	}
}

func TestStore_DeleteWhileTrackingDiscardsTime(t *testing.T) {
	s, path, clock := openTestStore(t)
	_, _ = s.Add("Mural")
	_, _ = s.Add("Comic")
	_ = s.StartTracking("Mural")
	clock.Advance(time.Hour)

	if err := s.Delete("Mural"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got := reload(t, path)
	if len(got) != 1 || got[0].Name != "Comic" {
		t.Fatalf("after delete: %v", got)
	}
	if len(s.Sessions()) != 0 {
		t.Fatalf("session should be discarded, got %v", s.Sessions())
	}

	// Re-adding the name starts from scratch.
	_, _ = s.Add("Mural")
	if s.IsTracking("Mural") {
		t.Fatalf("re-added project must be idle")
	}
	if p, _ := s.Get("Mural"); p.TimeSpent != 0 {
		t.Fatalf("re-added project has time %d", p.TimeSpent)
	}
}

func TestStore_DeleteUnknownIsNoop(t *testing.T) {
	s, path, _ := openTestStore(t)
	if err := s.Delete("ghost"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no-op delete must not write, stat err=%v", err)
	}
}

func TestStore_Rename(t *testing.T) {
	s, path, clock := openTestStore(t)
	_, _ = s.Add("Draft")
	_, _ = s.Add("Final")

	if err := s.Rename("missing", "Whatever"); err != nil {
		t.Fatalf("rename of missing project: %v", err)
	}
	if err := s.Rename("missing", "  "); err != nil {
		t.Fatalf("rename of missing project to an empty name: %v", err)
	}
	if err := s.Rename("Draft", "Final"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation on collision, got %v", err)
	}
	if err := s.Rename("Draft", "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation on empty name, got %v", err)
	}
	if err := s.Rename("Draft", "Draft"); err != nil {
		t.Fatalf("rename to same name: %v", err)
	}

	_ = s.StartTracking("Draft")
	clock.Advance(5 * time.Second)
	if err := s.Rename("Draft", "Cover"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !s.IsTracking("Cover") {
		t.Fatalf("session should follow the rename")
	}
	if n, err := s.PauseTracking("Cover"); err != nil || n != 5 {
		t.Fatalf("PauseTracking = %d, %v", n, err)
	}

	got := reload(t, path)
	if got[0].Name != "Cover" || got[1].Name != "Final" {
		t.Fatalf("after rename: %v", got)
	}
}

func TestStore_EditTime(t *testing.T) {
	s, path, _ := openTestStore(t)
	_, _ = s.Add("Figure")

	if err := s.EditTime("Figure", -1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := s.EditTime("Figure", 3725); err != nil {
		t.Fatalf("EditTime: %v", err)
	}
	if err := s.EditTime("nobody", 10); err != nil {
		t.Fatalf("EditTime on unknown project: %v", err)
	}
	if got := reload(t, path)[0].TimeSpent; got != 3725 {
		t.Fatalf("time_spent = %d", got)
	}
}

func TestStore_ToggleMirrorsPlayPause(t *testing.T) {
	s, _, clock := openTestStore(t)
	_, _ = s.Add("Color")

	started, _, err := s.Toggle("Color")
	if err != nil || !started {
		t.Fatalf("first toggle: started=%v err=%v", started, err)
	}
	clock.Advance(3 * time.Second)
	started, elapsed, err := s.Toggle("Color")
	if err != nil || started || elapsed != 3 {
		t.Fatalf("second toggle: started=%v elapsed=%d err=%v", started, elapsed, err)
	}
}

func TestStore_FailedWriteLeavesStateUntouched(t *testing.T) {
	s, path, _ := openTestStore(t)
	if _, err := s.Add("Kept"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Replace the backing file with a directory so the final rename fails.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(path, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if _, err := s.Add("Doomed"); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if err := s.EditTime("Kept", 99); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if err := s.Save(nil); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO from Save, got %v", err)
	}
	got := s.List()
	if len(got) != 1 || got[0].Name != "Kept" || got[0].TimeSpent != 0 {
		t.Fatalf("failed writes must not change memory: %v", got)
	}

	if _, err := s.Load(); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO from Load, got %v", err)
	}
	if len(s.List()) != 1 {
		t.Fatalf("failed load must not change memory: %v", s.List())
	}
}

func TestStore_LoadKeepsSessionsByName(t *testing.T) {
	s, path, clock := openTestStore(t)
	_, _ = s.Add("A")
	_, _ = s.Add("B")
	_ = s.StartTracking("A")
	_ = s.StartTracking("B")

	// Someone edits the file by hand and removes B.
	if err := WriteFile(path, []Project{{Name: "A", TimeSpent: 7, CreatedAt: UnknownCreated, LastTracked: NeverTracked}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.IsTracking("A") || len(s.Sessions()) != 1 {
		t.Fatalf("sessions after reload: %v", s.Sessions())
	}
	clock.Advance(2 * time.Second)
	if n, _ := s.PauseTracking("A"); n != 2 {
		t.Fatalf("elapsed = %d", n)
	}
	if p, _ := s.Get("A"); p.TimeSpent != 9 {
		t.Fatalf("time_spent = %d, want 9", p.TimeSpent)
	}
}

func TestStore_LoadMalformedYieldsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(path)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if s == nil || len(s.List()) != 0 {
		t.Fatalf("expected usable empty store")
	}

	projects, err := s.Load()
	if !errors.Is(err, ErrParse) || len(projects) != 0 {
		t.Fatalf("Load = %v, %v", projects, err)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	legacy := `[{"name": "Old", "time_spent": 120}, {"name": "New", "time_spent": 5, "created_at": "2023-01-01 10:00:00", "last_tracked": "2023-01-02 11:00:00"}]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	first, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("round trip changed data:\n%v\n%v", first, second)
	}

	data1, _ := os.ReadFile(path)
	if err := s.Save(second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data2, _ := os.ReadFile(path)
	if string(data1) != string(data2) {
		t.Fatalf("saving twice produced different bytes")
	}
}

func TestStore_DuplicateNamesInLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(path, []byte(`[{"name":"Twin","time_spent":1},{"name":"Twin","time_spent":2}]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s.List()) != 2 {
		t.Fatalf("both records must be kept")
	}
	if err := s.EditTime("Twin", 10); err != nil {
		t.Fatalf("EditTime: %v", err)
	}
	got := s.List()
	if got[0].TimeSpent != 10 || got[1].TimeSpent != 2 {
		t.Fatalf("edit should hit the first match only: %v", got)
	}
}

func TestStore_PauseRefusesToOverflow(t *testing.T) {
	s, path, clock := openTestStore(t)
	_, _ = s.Add("Ceiling")
	if err := s.EditTime("Ceiling", math.MaxInt64-10); err != nil {
		t.Fatalf("EditTime: %v", err)
	}
	_ = s.StartTracking("Ceiling")
	clock.Advance(11 * time.Second)

	if _, err := s.PauseTracking("Ceiling"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !s.IsTracking("Ceiling") {
		t.Fatalf("refused pause must keep the session")
	}
	if got := reload(t, path)[0].TimeSpent; got != math.MaxInt64-10 {
		t.Fatalf("time_spent changed to %d", got)
	}

	// Up to the limit itself is still fine.
	if err := s.EditTime("Ceiling", math.MaxInt64-11); err != nil {
		t.Fatalf("EditTime: %v", err)
	}
	if n, err := s.PauseTracking("Ceiling"); err != nil || n != 11 {
		t.Fatalf("PauseTracking = %d, %v", n, err)
	}
	if got := reload(t, path)[0].TimeSpent; got != math.MaxInt64 {
		t.Fatalf("time_spent = %d", got)
	}
}
