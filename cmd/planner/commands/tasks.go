package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var in tasks.CreateTaskInput
	var priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long:  "Add a task. --time accepts \"2:30 PM\" or \"14:30\".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			in.Priority = models.Priority(priority)
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				task, err := s.Tasks.Create(ctx, s.owner, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", formatTask(task))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Time, "time", "", "Time of day (required)")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active tasks in time order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				list, err := s.Tasks.List(ctx, s.owner)
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), list, "No active tasks")
				return nil
			})
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List completed tasks, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				list, err := s.Tasks.History(ctx, s.owner)
				if err != nil {
					return err
				}
				printTasks(cmd.OutOrStdout(), list, "No completed tasks")
				return nil
			})
		},
	}
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				task, err := s.Tasks.Complete(ctx, s.owner, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed %s\n", formatTask(task))
				return nil
			})
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.Tasks.Delete(ctx, s.owner, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var title, description, at, priority, category string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an active task",
		Long:  "Edit an active task. Only the flags given are changed; a new time reschedules the reminder.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in tasks.UpdateTaskInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = &title
			}
			if flags.Changed("description") {
				in.Description = &description
			}
			if flags.Changed("time") {
				in.Time = &at
			}
			if flags.Changed("priority") {
				p := models.Priority(priority)
				in.Priority = &p
			}
			if flags.Changed("category") {
				in.Category = &category
			}
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				task, err := s.Tasks.Update(ctx, s.owner, args[0], in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", formatTask(task))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&at, "time", "", "New time of day")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	return cmd
}

func formatTask(t models.Task) string {
	line := fmt.Sprintf("%s  %8s  %-6s  %s", t.ID, t.Time, t.Priority, t.Title)
	if t.Category != "" {
		line += " [" + t.Category + "]"
	}
	return line
}

func printTasks(w io.Writer, list []models.Task, empty string) {
	if len(list) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, t := range list {
		fmt.Fprintln(w, formatTask(t))
	}
}
