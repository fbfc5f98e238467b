package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"live-dashboard/prefs"
	"live-dashboard/tasks"
)

var (
	taskPriority string
	taskDue      string
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task", "t"},
	Short:   "Manage the task list",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			all := tasks.NewList(store).All()
			rows := make([][]string, 0, len(all))
			for _, t := range all {
				done := " "
				if t.Completed {
					done = "x"
				}
				rows = append(rows, []string{t.ID, done, string(t.Priority), t.DueDate, t.Title})
			}
			return printOutput(cmd.OutOrStdout(), all, []string{"ID", "Done", "Priority", "Due", "Title"}, rows)
		})
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			t, added, err := tasks.NewList(store).Add(args[0], tasks.Priority(taskPriority), taskDue)
			if err != nil {
				return err
			}
			if !added {
				return fmt.Errorf("task title is blank")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added task %s\n", t.ID)
			return nil
		})
	},
}

var tasksToggleCmd = &cobra.Command{
	Use:   "toggle ID",
	Short: "Flip the completed flag of task ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			_, err := tasks.NewList(store).Toggle(args[0])
			return err
		})
	},
}

var tasksClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every completed task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			n, err := tasks.NewList(store).ClearCompleted()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d completed task(s)\n", n)
			return nil
		})
	},
}

func init() {
	tasksAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", string(tasks.PriorityMedium), "low, medium or high")
	tasksAddCmd.Flags().StringVar(&taskDue, "due", "", "due date, YYYY-MM-DD")
	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksToggleCmd, tasksClearCmd)
}
