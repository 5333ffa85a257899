package project

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"
)

// SessionJournal mirrors open tracking sessions outside the process so a
// session started by one invocation can be paused by the next. Sessions are
// keyed by backing file and project name. Rename applies to open and
// finished sessions alike. Discard drops only the open session, Forget drops
// every session of the name so a later project reusing it starts with no
// history.
type SessionJournal interface {
	Active(file string) (map[string]time.Time, error)
	Begin(file, name string, start time.Time) error
	Finish(file, name string, start, end time.Time, elapsed int64) error
	Discard(file, name string) error
	Forget(file, name string) error
	Rename(file, oldName, newName string) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithJournal mirrors tracking sessions to j.
func WithJournal(j SessionJournal) Option {
	return func(s *Store) { s.journal = j }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store owns the project list, the open tracking sessions, and the backing
// file. Every mutation is written through to the file before it returns; a
// mutation that fails leaves both memory and file as they were.
//
// A Store is not safe for concurrent use. It is driven from a single
// goroutine, one user command at a time.
type Store struct {
	path     string
	records  []record
	sessions sessions
	journal  SessionJournal
	now      func() time.Time
	logger   *slog.Logger
}

// Open creates a store backed by path and loads it. When the file is
// malformed Open still returns a usable, empty store together with an error
// matching ErrParse.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		sessions: sessions{},
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	_, err := s.Switch(path)
	if err != nil && !errors.Is(err, ErrParse) {
		return nil, err
	}
	return s, err
}

// Path returns the backing file in use.
func (s *Store) Path() string {
	return s.path
}

// Load re-reads the backing file. Open sessions stay attached to projects
// that still carry the same name. See ReadFile for the error contract; on
// ErrIO the store is left untouched.
func (s *Store) Load() ([]Project, error) {
	projects, err := ReadFile(s.path)
	if err != nil && !errors.Is(err, ErrParse) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("backing file is malformed, starting with an empty list", "path", s.path, "err", err)
	}

	starts := s.sessionStarts()
	s.replace(projects)
	s.attach(starts, err == nil)
	return s.List(), err
}

// Switch points the store at another backing file and loads it. In-memory
// sessions of the previous file are dropped; sessions journaled for the new
// file are picked up.
func (s *Store) Switch(path string) ([]Project, error) {
	projects, err := ReadFile(path)
	if err != nil && !errors.Is(err, ErrParse) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("backing file is malformed, starting with an empty list", "path", path, "err", err)
	}

	var starts map[string]time.Time
	if s.journal != nil {
		active, jerr := s.journal.Active(path)
		if jerr != nil {
			return nil, ioError("switch", "", jerr)
		}
		starts = active
	}

	s.path = path
	s.replace(projects)
	s.attach(starts, err == nil)
	s.logger.Debug("loaded backing file", "path", path, "projects", len(s.records), "tracking", len(s.sessions))
	return s.List(), err
}

// Save replaces the whole list and writes it out.
func (s *Store) Save(projects []Project) error {
	if err := WriteFile(s.path, projects); err != nil {
		return err
	}
	starts := s.sessionStarts()
	s.replace(projects)
	s.attach(starts, true)
	return nil
}

// List returns a copy of the projects in file order.
func (s *Store) List() []Project {
	out := make([]Project, len(s.records))
	for i, r := range s.records {
		out[i] = r.Project
	}
	return out
}

// Get returns the project called name.
func (s *Store) Get(name string) (Project, bool) {
	i := s.index(name)
	if i < 0 {
		return Project{}, false
	}
	return s.records[i].Project, true
}

// Add creates a project with no time on it.
func (s *Store) Add(name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, invalidf("add", "", "project name is empty")
	}
	if s.index(name) >= 0 {
		return Project{}, invalidf("add", name, "a project with this name already exists")
	}

	r := newRecord(Project{
		Name:        name,
		CreatedAt:   stamp(s.now()),
		LastTracked: NeverTracked,
	})
	next := append(s.clone(), r)
	if err := s.commit("add", name, next, nil); err != nil {
		return Project{}, err
	}
	s.logger.Info("project added", "name", name)
	return r.Project, nil
}

// Rename changes a project's name. Renaming an unknown project does nothing.
// An open session follows the project to its new name, and so does its
// journaled history.
func (s *Store) Rename(oldName, newName string) error {
	i := s.index(oldName)
	if i < 0 {
		return nil
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return invalidf("rename", oldName, "new name is empty")
	}
	if s.records[i].Name == newName {
		return nil
	}
	if s.index(newName) >= 0 {
		return invalidf("rename", oldName, "a project named %q already exists", newName)
	}

	next := s.clone()
	next[i].Name = newName

	var journal func() error
	if s.journal != nil {
		path := s.path
		journal = func() error { return s.journal.Rename(path, oldName, newName) }
	}
	if err := s.commit("rename", oldName, next, journal); err != nil {
		return err
	}
	s.logger.Info("project renamed", "from", oldName, "to", newName)
	return nil
}

// Delete removes a project. An open session is dropped without adding its
// time, and the project's journaled history goes with it. Deleting an unknown
// project does nothing.
func (s *Store) Delete(name string) error {
	i := s.index(name)
	if i < 0 {
		return nil
	}
	id := s.records[i].id
	tracking := s.sessions.state(id) == Tracking

	next := make([]record, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)

	var journal func() error
	if s.journal != nil {
		path := s.path
		journal = func() error { return s.journal.Forget(path, name) }
	}
	if err := s.commit("delete", name, next, journal); err != nil {
		return err
	}
	delete(s.sessions, id)
	s.logger.Info("project deleted", "name", name, "was_tracking", tracking)
	return nil
}

// EditTime overwrites the accumulated time. Editing an unknown project does
// nothing.
func (s *Store) EditTime(name string, seconds int64) error {
	if seconds < 0 {
		return invalidf("edit time", name, "time must not be negative")
	}
	i := s.index(name)
	if i < 0 {
		return nil
	}

	next := s.clone()
	next[i].TimeSpent = seconds
	if err := s.commit("edit time", name, next, nil); err != nil {
		return err
	}
	s.logger.Info("project time edited", "name", name, "seconds", seconds)
	return nil
}

// StartTracking opens a session for name.
func (s *Store) StartTracking(name string) error {
	i := s.index(name)
	if i < 0 {
		return invalidf("start", name, "no such project")
	}
	id := s.records[i].id
	if s.sessions.state(id) == Tracking {
		return &Error{Op: "start", Name: name, Kind: ErrAlreadyTracking}
	}

	now := s.now()
	if s.journal != nil {
		if err := s.journal.Begin(s.path, name, now); err != nil {
			return ioError("start", name, err)
		}
	}
	s.sessions[id] = now
	s.logger.Debug("tracking started", "name", name)
	return nil
}

// PauseTracking closes the session for name, adds the elapsed whole seconds
// to the project and stamps last_tracked. It returns the seconds added.
func (s *Store) PauseTracking(name string) (int64, error) {
	i := s.index(name)
	if i < 0 {
		return 0, &Error{Op: "pause", Name: name, Kind: ErrNotTracking}
	}
	id := s.records[i].id
	start, ok := s.sessions[id]
	if !ok {
		return 0, &Error{Op: "pause", Name: name, Kind: ErrNotTracking}
	}

	now := s.now()
	elapsed := elapsedSeconds(start, now)
	if s.records[i].TimeSpent > math.MaxInt64-elapsed {
		return 0, invalidf("pause", name, "accumulated time would overflow")
	}
	next := s.clone()
	next[i].TimeSpent += elapsed
	next[i].LastTracked = stamp(now)

	var journal func() error
	if s.journal != nil {
		path := s.path
		journal = func() error { return s.journal.Finish(path, name, start, now, elapsed) }
	}
	if err := s.commit("pause", name, next, journal); err != nil {
		return 0, err
	}
	delete(s.sessions, id)
	s.logger.Debug("tracking paused", "name", name, "elapsed", elapsed)
	return elapsed, nil
}

// Toggle starts tracking an idle project and pauses a tracked one. started
// reports which happened; elapsed is only set on pause.
func (s *Store) Toggle(name string) (started bool, elapsed int64, err error) {
	if s.IsTracking(name) {
		elapsed, err = s.PauseTracking(name)
		return false, elapsed, err
	}
	return true, 0, s.StartTracking(name)
}

// State reports whether name is being tracked.
func (s *Store) State(name string) State {
	i := s.index(name)
	if i < 0 {
		return Idle
	}
	return s.sessions.state(s.records[i].id)
}

func (s *Store) IsTracking(name string) bool {
	return s.State(name) == Tracking
}

// TrackedFor returns how long the open session for name has been running.
func (s *Store) TrackedFor(name string) (time.Duration, bool) {
	i := s.index(name)
	if i < 0 {
		return 0, false
	}
	start, ok := s.sessions[s.records[i].id]
	if !ok {
		return 0, false
	}
	return s.now().Sub(start), true
}

// Sessions lists open sessions in project order.
func (s *Store) Sessions() []Session {
	var out []Session
	for _, r := range s.records {
		if start, ok := s.sessions[r.id]; ok {
			out = append(out, Session{Name: r.Name, StartedAt: start})
		}
	}
	return out
}

// commit writes next to the backing file, then runs the journal step. If the
// journal step fails the previous list is written back. Memory is only
// updated once both succeed.
func (s *Store) commit(op, name string, next []record, journal func() error) error {
	if err := writeProjects(s.path, projectsOf(next)); err != nil {
		return ioError(op, name, err)
	}
	if journal != nil {
		if err := journal(); err != nil {
			if rbErr := writeProjects(s.path, projectsOf(s.records)); rbErr != nil {
				s.logger.Error("could not restore backing file", "path", s.path, "err", rbErr)
			}
			return ioError(op, name, err)
		}
	}
	s.records = next
	return nil
}

// index returns the first record named name, or -1.
func (s *Store) index(name string) int {
	for i, r := range s.records {
		if r.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) clone() []record {
	out := make([]record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) replace(projects []Project) {
	s.records = make([]record, 0, len(projects))
	seen := make(map[string]bool, len(projects))
	for _, p := range projects {
		if seen[p.Name] {
			s.logger.Warn("duplicate project name in backing file; only the first is addressable by name", "name", p.Name)
		}
		seen[p.Name] = true
		s.records = append(s.records, newRecord(p))
	}
}

func (s *Store) sessionStarts() map[string]time.Time {
	starts := make(map[string]time.Time, len(s.sessions))
	for _, r := range s.records {
		if start, ok := s.sessions[r.id]; ok {
			starts[r.Name] = start
		}
	}
	return starts
}

// attach binds sessions to the current records by name. Sessions whose
// project is gone are dropped; with prune set they are also removed from the
// journal.
func (s *Store) attach(starts map[string]time.Time, prune bool) {
	s.sessions = sessions{}
	for name, start := range starts {
		i := s.index(name)
		if i >= 0 {
			s.sessions[s.records[i].id] = start
			continue
		}
		s.logger.Warn("dropping session for missing project", "name", name)
		if prune && s.journal != nil {
			if err := s.journal.Discard(s.path, name); err != nil {
				s.logger.Error("could not discard journaled session", "name", name, "err", err)
			}
		}
	}
}

func projectsOf(records []record) []Project {
	out := make([]Project, len(records))
	for i, r := range records {
		out[i] = r.Project
	}
	return out
}
