package project

import "time"

// State is the tracking status of a single project.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Session is an open tracking session. Sessions live in memory only; a
// SessionJournal may mirror them so they outlive the process.
type Session struct {
	Name      string
	StartedAt time.Time
}

// sessions maps a record id to the instant tracking started.
type sessions map[string]time.Time

func (ss sessions) state(id string) State {
	if _, ok := ss[id]; ok {
		return Tracking
	}
	return Idle
}

// elapsedSeconds truncates toward zero. A start in the future (clock moved
// backwards) counts as no time at all.
func elapsedSeconds(start, now time.Time) int64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
