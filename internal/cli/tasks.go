package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskmanager/internal/controller"
	"taskmanager/internal/models"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			printTasks(a.out, a.ctrl.Snapshot())
			return nil
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	var form controller.Form

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Example: `  taskmanager add --title "Buy milk" --due 2024-06-01
  taskmanager add -t "Call mom" -d "about the weekend" --due 2024-06-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			a.ctrl.SetForm(form)
			if err := a.ctrl.Submit(cmd.Context()); err != nil {
				return err
			}
			printTasks(a.out, a.ctrl.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Title, "title", "t", "", "Task title (required)")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&form.DueDate, "due", "", "Due date as YYYY-MM-DD (required)")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var form controller.Form

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, description or due date of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := findTask(cmd, a, args[0])
			if err != nil {
				return err
			}

			a.ctrl.BeginEdit(task)
			edited := a.ctrl.Form()
			if cmd.Flags().Changed("title") {
				edited.Title = form.Title
			}
			if cmd.Flags().Changed("description") {
				edited.Description = form.Description
			}
			if cmd.Flags().Changed("due") {
				edited.DueDate = form.DueDate
			}
			a.ctrl.SetForm(edited)

			if err := a.ctrl.Submit(cmd.Context()); err != nil {
				return err
			}
			printTasks(a.out, a.ctrl.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&form.DueDate, "due", "", "New due date as YYYY-MM-DD")
	return cmd
}

func newToggleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a task between Pending and Completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := findTask(cmd, a, args[0])
			if err != nil {
				return err
			}
			if err := a.ctrl.ToggleStatus(cmd.Context(), task.ID, task.Status); err != nil {
				return err
			}
			printTasks(a.out, a.ctrl.Snapshot())
			return nil
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <id>",
		Short: "Flag or unflag a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := findTask(cmd, a, args[0])
			if err != nil {
				return err
			}
			if err := a.ctrl.ToggleChecked(cmd.Context(), task.ID, task.IsChecked); err != nil {
				return err
			}
			printTasks(a.out, a.ctrl.Snapshot())
			return nil
		},
	}
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			printTasks(a.out, a.ctrl.Snapshot())
			return nil
		},
	}
}

func newClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			report, err := a.ctrl.RemoveAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "Deleted %d of %d tasks\n", len(report.Deleted()), len(report.Results))
			failed := report.Failed()
			for _, f := range failed {
				fmt.Fprintf(a.out, "  failed %s: %v\n", f.ID, f.Err)
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d tasks could not be deleted", len(failed))
			}
			return nil
		},
	}
}

// findTask refreshes the list and resolves id against it.
func findTask(cmd *cobra.Command, a *app, id string) (models.Task, error) {
	if err := a.ctrl.Refresh(cmd.Context()); err != nil {
		return models.Task{}, err
	}
	task, ok := a.ctrl.Task(id)
	if !ok {
		return models.Task{}, fmt.Errorf("task %s not found", id)
	}
	return task, nil
}

// printTasks renders the list the way the task screen shows it.
func printTasks(w io.Writer, state controller.State) {
	fmt.Fprintf(w, "%d tasks\n", state.Count)
	if state.Count == 0 {
		fmt.Fprintln(w, "No tasks available")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDUE\tCREATED\tSTATUS\tACTION\tFLAG")
	for _, t := range state.Tasks {
		flag := ""
		if t.IsChecked {
			flag = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.DueLabel(), t.CreatedAt.Local().Format("Jan 2, 2006"), t.Status, t.ActionLabel(), flag)
		if t.Description != "" {
			fmt.Fprintf(tw, "\t  %s\t\t\t\t\t\n", t.Description)
		}
	}
	_ = tw.Flush()
}
