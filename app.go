package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"drawtrack/internal/project"
)

// App is the command surface shared by the CLI and the interactive shell.
// Every command maps onto one store operation and reports to out.
type App struct {
	store    *project.Store
	repo     *Repo
	settings *Settings
	logger   *slog.Logger
	out      io.Writer
	errOut   io.Writer
	in       *bufio.Reader
	now      func() time.Time
}

func NewApp(out, errOut io.Writer, in io.Reader) *App {
	return &App{
		logger: slog.New(slog.DiscardHandler),
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(in),
		now:    time.Now,
	}
}

// Open wires the settings, journal and store. Calling it again is a no-op.
func (a *App) Open(opts Options) error {
	if a.store != nil {
		return nil
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	a.logger = NewLogger(a.errOut, level)

	paths, err := DefaultPaths()
	if err != nil {
		return err
	}
	if opts.Config == "" {
		opts.Config = paths.Config
	}
	if opts.Journal == "" {
		opts.Journal = paths.Journal
	}

	a.settings = LoadSettings(opts.Config, a.logger)

	dataFile, err := ResolveDataFile(opts.File, a.settings, paths.Data)
	if err != nil {
		return fmt.Errorf("error resolving data file: %w", err)
	}

	repo, err := NewRepo(opts.Journal, a.logger)
	if err != nil {
		return err
	}

	st, err := project.Open(dataFile,
		project.WithJournal(repo),
		project.WithLogger(a.logger),
		project.WithClock(a.now),
	)
	if err != nil && !errors.Is(err, project.ErrParse) {
		repo.Close()
		return err
	}
	a.repo = repo
	a.store = st
	if err != nil {
		a.notice(err)
	}

	a.logger.Debug("app ready", "data_file", dataFile, "journal", opts.Journal, "config", opts.Config)
	return nil
}

func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	a.store = nil
	return err
}

func (a *App) AddProject(name string) error {
	p, err := a.store.Add(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added project: %s\n", p.Name)
	return nil
}

func (a *App) RenameProject(oldName, newName string) error {
	if _, ok := a.store.Get(oldName); !ok {
		fmt.Fprintf(a.out, "No project named %q, nothing renamed.\n", oldName)
		return nil
	}
	if err := a.store.Rename(oldName, newName); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Renamed %s to %s\n", oldName, strings.TrimSpace(newName))
	return nil
}

// DeleteProject removes a project. Unless confirmed, the user has to type the
// project name back.
func (a *App) DeleteProject(name string, confirmed bool) error {
	if _, ok := a.store.Get(name); !ok {
		fmt.Fprintf(a.out, "No project named %q, nothing deleted.\n", name)
		return nil
	}

	if !confirmed {
		answer := a.prompt(fmt.Sprintf("Type the project name '%s' to confirm deletion: ", name))
		if answer != name {
			fmt.Fprintln(a.out, "Project name does not match. Deletion canceled.")
			return nil
		}
	}

	wasTracking := a.store.IsTracking(name)
	if err := a.store.Delete(name); err != nil {
		return err
	}

	if wasTracking {
		fmt.Fprintf(a.out, "Deleted project: %s (running session discarded)\n", name)
	} else {
		fmt.Fprintf(a.out, "Deleted project: %s\n", name)
	}
	return nil
}

func (a *App) EditTime(name, input string) error {
	seconds, err := project.ParseSeconds(input)
	if err != nil {
		return err
	}
	if _, ok := a.store.Get(name); !ok {
		fmt.Fprintf(a.out, "No project named %q, nothing changed.\n", name)
		return nil
	}
	if err := a.store.EditTime(name, seconds); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Set %s to %s\n", name, project.FormatDuration(seconds))
	return nil
}

func (a *App) StartTracking(name string) error {
	if err := a.store.StartTracking(name); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Started tracking %s...\n", name)
	return nil
}

func (a *App) PauseTracking(name string) error {
	elapsed, err := a.store.PauseTracking(name)
	if err != nil {
		return err
	}

	a.reportPause(name, elapsed)
	return nil
}

func (a *App) Toggle(name string) error {
	started, elapsed, err := a.store.Toggle(name)
	if err != nil {
		return err
	}

	if started {
		fmt.Fprintf(a.out, "Started tracking %s...\n", name)
	} else {
		a.reportPause(name, elapsed)
	}
	return nil
}

func (a *App) reportPause(name string, elapsed int64) {
	p, _ := a.store.Get(name)
	fmt.Fprintf(a.out, "Paused %s: +%s (total %s)\n",
		name, project.FormatDuration(elapsed), project.FormatDuration(p.TimeSpent))
}

// List prints every project. Tracked projects are highlighted and show the
// running session.
func (a *App) List() error {
	projects := a.store.List()
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects yet. Add one with 'drawtrack add <name>'.")
		return nil
	}

	headers := []string{"Project", "Time", "Running", "Created", "Last tracked"}

	var rows [][]string
	var highlight []bool
	var total int64
	for _, p := range projects {
		running := ""
		d, tracking := a.store.TrackedFor(p.Name)
		if tracking {
			running = project.FormatDuration(int64(d / time.Second))
		}
		total += p.TimeSpent

		rows = append(rows, []string{
			p.Name,
			project.FormatDuration(p.TimeSpent),
			running,
			p.CreatedAt,
			p.LastTracked,
		})
		highlight = append(highlight, tracking)
	}

	footers := []string{"Total:", project.FormatDuration(total), "", "", ""}
	PrintTable(a.out, headers, rows, footers, highlight)
	return nil
}

// Status prints the open sessions.
func (a *App) Status() error {
	sessions := a.store.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(a.out, "Nothing is being tracked.")
		return nil
	}

	headers := []string{"Project", "Since", "Running"}

	var rows [][]string
	for _, s := range sessions {
		d, _ := a.store.TrackedFor(s.Name)
		rows = append(rows, []string{
			s.Name,
			s.StartedAt.Format(project.TimestampLayout),
			project.FormatDuration(int64(d / time.Second)),
		})
	}

	PrintTable(a.out, headers, rows, nil, nil)
	return nil
}

func (a *App) CurrentFile() error {
	fmt.Fprintln(a.out, a.store.Path())
	return nil
}

// ChangeFile switches to another backing file and remembers the choice.
func (a *App) ChangeFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	projects, err := a.store.Switch(abs)
	if err != nil && !errors.Is(err, project.ErrParse) {
		return err
	}
	if err != nil {
		a.notice(err)
	}

	if err := a.settings.SetLastLoadedFile(abs); err != nil {
		a.logger.Warn("could not remember data file", "path", abs, "err", err)
	}

	fmt.Fprintf(a.out, "Changed data file to: %s (%d projects)\n", abs, len(projects))
	return nil
}

// Display prints finished sessions of the period, one table per project.
func (a *App) Display(period string) error {
	startTime, endTime, err := PeriodRange(period, a.now())
	if err != nil {
		return err
	}

	history, err := a.repo.History(a.store.Path(), startTime, endTime)
	if err != nil {
		return fmt.Errorf("error fetching history: %w", err)
	}
	if len(history) == 0 {
		fmt.Fprintf(a.out, "No finished sessions this %s.\n", period)
		return nil
	}

	for _, ph := range history {
		fmt.Fprintf(a.out, "Project - %s\n", ph.Name)

		headers := []string{"Day", "Start", "End", "Duration"}

		var rows [][]string
		var total int64

		var lastDay string
		for _, entry := range ph.Entries {
			day := entry.StartTime.Format("Jan 02, 2006")
			total += entry.Elapsed

			shownDay := day
			if day == lastDay {
				shownDay = ""
			}
			lastDay = day

			rows = append(rows, []string{
				shownDay,
				entry.StartTime.Format("15:04:05"),
				entry.EndTime.Format("15:04:05"),
				project.FormatDuration(entry.Elapsed),
			})
		}

		footers := []string{"", "", "Total:", project.FormatDuration(total)}
		PrintTable(a.out, headers, rows, footers, nil)
		fmt.Fprintln(a.out)
	}

	return nil
}

// ProjectNames is used for shell completion.
func (a *App) ProjectNames() []string {
	var names []string
	for _, p := range a.store.List() {
		names = append(names, p.Name)
	}
	return names
}

func (a *App) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// notice reports a recoverable problem without failing the command.
func (a *App) notice(err error) {
	switch {
	case errors.Is(err, project.ErrParse):
		fmt.Fprintf(a.errOut, "Notice: %s is not a valid project list; starting with no projects.\n", a.store.Path())
		a.logger.Debug("parse failure", "err", err)
	default:
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
	}
}
