// Package project holds the project record, the store that owns the list of
// records and their tracking sessions, and the backing-file format.
package project

import (
	"time"

	"github.com/google/uuid"
)

const (
	// UnknownCreated is written for records that predate the created_at field.
	UnknownCreated = "unknown"
	// NeverTracked marks a project that has never finished a session.
	NeverTracked = "never"

	// TimestampLayout is the layout used for created_at and last_tracked.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Project is one tracked drawing project.
type Project struct {
	Name        string `json:"name"`
	TimeSpent   int64  `json:"time_spent"`
	CreatedAt   string `json:"created_at"`
	LastTracked string `json:"last_tracked"`
}

// Duration returns the accumulated time as a time.Duration.
func (p Project) Duration() time.Duration {
	return time.Duration(p.TimeSpent) * time.Second
}

// record is a project plus the surrogate id used inside the store.
// The id never reaches the backing file.
type record struct {
	id string
	Project
}

func newRecord(p Project) record {
	return record{id: uuid.NewString(), Project: p}
}

func stamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
