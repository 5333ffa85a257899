package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestShellActions_PromptDriven(t *testing.T) {
	legacy := filepath.Join(t.TempDir(), "legacy.json")
	if err := os.WriteFile(legacy, []byte(`[{"name": "Old canvas", "time_spent": 90}]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// one line per prompt: add, add (blank), file
	env := newTestEnv(t, "Mural\n\n"+legacy+"\n")
	a := env.app

	if err := a.runShellAction("add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, ok := a.store.Get("Mural"); !ok {
		t.Fatalf("add should create the typed project: %v", a.store.List())
	}

	if err := a.runShellAction("add"); err != nil {
		t.Fatalf("add with blank name: %v", err)
	}
	if n := len(a.store.List()); n != 1 {
		t.Fatalf("blank name must add nothing, have %d projects", n)
	}

	_ = a.StartTracking("Mural")
	env.now = env.now.Add(2 * time.Minute)
	env.out.Reset()
	if err := a.runShellAction("status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(env.out.String(), "Mural") || !strings.Contains(env.out.String(), "00:02:00") {
		t.Fatalf("status output:\n%s", env.out.String())
	}
	_ = a.PauseTracking("Mural")

	env.out.Reset()
	if err := a.runShellAction("history"); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(env.out.String(), "Project - Mural") {
		t.Fatalf("history output:\n%s", env.out.String())
	}

	env.out.Reset()
	if err := a.runShellAction("file"); err != nil {
		t.Fatalf("file: %v", err)
	}
	if a.store.Path() != legacy {
		t.Fatalf("path = %q, want %q", a.store.Path(), legacy)
	}
	if p, ok := a.store.Get("Old canvas"); !ok || p.TimeSpent != 90 || p.LastTracked != "never" {
		t.Fatalf("legacy project = %+v, %v", p, ok)
	}
}

func TestShellActions_NoProjectsToPick(t *testing.T) {
	env := newTestEnv(t, "")
	a := env.app

	for _, action := range []string{"toggle", "rename", "edit-time", "delete"} {
		env.out.Reset()
		if err := a.runShellAction(action); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
		if !strings.Contains(env.out.String(), "No projects yet.") {
			t.Fatalf("%s output:\n%s", action, env.out.String())
		}
	}

	// input runs out, so the prompt comes back blank and nothing changes
	path := a.store.Path()
	if err := a.runShellAction("file"); err != nil {
		t.Fatalf("file: %v", err)
	}
	if a.store.Path() != path {
		t.Fatalf("blank answer must keep the data file")
	}
}

func TestShellActions_UnknownAction(t *testing.T) {
	env := newTestEnv(t, "")
	if err := env.app.runShellAction("dance"); err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("expected unknown action error, got %v", err)
	}
}
