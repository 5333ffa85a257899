package main

import "time"

// ProjectHistory is the finished sessions of one project.
type ProjectHistory struct {
	Name    string
	Entries []Entry
}

type Entry struct {
	StartTime time.Time
	EndTime   time.Time
	Elapsed   int64
}

// Options are the global flags.
type Options struct {
	File    string
	Journal string
	Config  string
	Verbose bool
}
