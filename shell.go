package main

import (
	"fmt"

	"github.com/nexidian/gocliselect"

	"drawtrack/internal/project"
)

// Shell runs the interactive menu until the user quits. Sessions started
// here are held by this process; they are still journaled, so a session left
// running on quit can be paused later from the command line.
func (a *App) Shell() error {
	for {
		fmt.Fprintln(a.out)
		if err := a.List(); err != nil {
			return err
		}

		menu := gocliselect.NewMenu(fmt.Sprintf("drawtrack: %s", a.store.Path()))
		menu.AddItem("Start / pause", "toggle")
		menu.AddItem("Add project", "add")
		menu.AddItem("Rename project", "rename")
		menu.AddItem("Edit time", "edit-time")
		menu.AddItem("Delete project", "delete")
		menu.AddItem("Running sessions", "status")
		menu.AddItem("History (this week)", "history")
		menu.AddItem("Change data file", "file")
		menu.AddItem("Quit", "quit")

		raw, err := menu.Display()
		if err != nil {
			return fmt.Errorf("menu: %w", err)
		}
		choice, _ := raw.(string)
		if choice == "" || choice == "quit" {
			return nil
		}

		if err := a.runShellAction(choice); err != nil {
			// nothing in the shell is fatal; show it and carry on
			fmt.Fprintf(a.errOut, "Error: %v\n", err)
		}
	}
}

func (a *App) runShellAction(action string) error {
	switch action {
	case "add":
		name := a.prompt("Enter new project name: ")
		if name == "" {
			return nil
		}
		return a.AddProject(name)

	case "rename":
		name, ok := a.pickProject("Rename which project?")
		if !ok {
			return nil
		}
		newName := a.prompt(fmt.Sprintf("Edit project name [%s]: ", name))
		if newName == "" {
			return nil
		}
		return a.RenameProject(name, newName)

	case "edit-time":
		name, ok := a.pickProject("Edit time of which project?")
		if !ok {
			return nil
		}
		p, _ := a.store.Get(name)
		input := a.prompt(fmt.Sprintf("Time spent, seconds or H:MM:SS [%s]: ", project.FormatDuration(p.TimeSpent)))
		if input == "" {
			return nil
		}
		return a.EditTime(name, input)

	case "delete":
		name, ok := a.pickProject("Delete which project?")
		if !ok {
			return nil
		}
		return a.DeleteProject(name, false)

	case "toggle":
		name, ok := a.pickProject("Start or pause which project?")
		if !ok {
			return nil
		}
		return a.Toggle(name)

	case "status":
		return a.Status()

	case "history":
		return a.Display("week")

	case "file":
		path := a.prompt(fmt.Sprintf("Data file [%s]: ", a.store.Path()))
		if path == "" {
			return nil
		}
		return a.ChangeFile(path)
	}

	return fmt.Errorf("unknown action: %s", action)
}

// pickProject shows a menu of projects. ok is false when there are none or
// the user backs out.
func (a *App) pickProject(title string) (string, bool) {
	projects := a.store.List()
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects yet.")
		return "", false
	}

	menu := gocliselect.NewMenu(title)
	for _, p := range projects {
		label := fmt.Sprintf("%s (%s)", p.Name, project.FormatDuration(p.TimeSpent))
		if a.store.IsTracking(p.Name) {
			label += " [tracking]"
		}
		menu.AddItem(label, p.Name)
	}
	menu.EnableSkip("Back")

	raw, err := menu.Display()
	if err != nil {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
		return "", false
	}
	name, _ := raw.(string)
	return name, name != ""
}
