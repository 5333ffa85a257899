package main

import (
	"github.com/spf13/cobra"
)

func SetupCommands(a *App) *cobra.Command {
	var opts Options

	// root command
	rootCmd := &cobra.Command{
		Use:           "drawtrack",
		Short:         "Track time spent on drawing projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.Open(opts)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.File, "file", "", "project data file to use for this run")
	rootCmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "session journal database")
	rootCmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	// completes the first argument with project names
	completeProject := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if err := a.Open(opts); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return a.ProjectNames(), cobra.ShellCompDirectiveNoFileComp
	}

	addCmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.AddProject(args[0])
		},
	}

	renameCmd := &cobra.Command{
		Use:               "rename [name] [new name]",
		Short:             "Rename a project",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.RenameProject(args[0], args[1])
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:               "delete [name]",
		Short:             "Delete a project, discarding any running session",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DeleteProject(args[0], yes)
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	editTimeCmd := &cobra.Command{
		Use:               "edit-time [name] [seconds|H:MM:SS]",
		Short:             "Overwrite the time spent on a project",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.EditTime(args[0], args[1])
		},
	}

	// commands for time tracking
	startCmd := &cobra.Command{
		Use:               "start [name]",
		Short:             "Start tracking time on a project",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.StartTracking(args[0])
		},
	}

	pauseCmd := &cobra.Command{
		Use:               "pause [name]",
		Short:             "Pause tracking and add the elapsed time",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.PauseTracking(args[0])
		},
	}

	toggleCmd := &cobra.Command{
		Use:               "toggle [name]",
		Short:             "Start or pause tracking",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Toggle(args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects and their time",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.List()
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show running sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Status()
		},
	}

	fileCmd := &cobra.Command{
		Use:   "file [path]",
		Short: "Show or change the project data file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.CurrentFile()
			}
			return a.ChangeFile(args[0])
		},
	}

	historyCmd := &cobra.Command{
		Use:       "history [day|week|month|year]",
		Short:     "Show finished sessions",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "week", "month", "year"},
		RunE: func(cmd *cobra.Command, args []string) error {
			period := "day"
			if len(args) > 0 {
				period = args[0]
			}
			return a.Display(period)
		},
	}

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Shell()
		},
	}

	// add commands
	rootCmd.AddCommand(addCmd, renameCmd, deleteCmd, editTimeCmd)
	rootCmd.AddCommand(startCmd, pauseCmd, toggleCmd)
	rootCmd.AddCommand(listCmd, statusCmd, fileCmd, historyCmd, shellCmd)

	return rootCmd
}
