package commands

import (
	"context"
	"fmt"

	"github.com/benvon/smart-planner/internal/app"
	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/spf13/cobra"
)

func newRemindersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage task reminders",
	}
	cmd.AddCommand(
		newRemindersToggleCmd(opts, "on", true),
		newRemindersToggleCmd(opts, "off", false),
		&cobra.Command{
			Use:   "status",
			Short: "Show whether reminders are enabled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, s *session) error {
					settings, err := s.Tasks.Settings(ctx, s.owner)
					if err != nil {
						return err
					}
					list, err := s.Tasks.List(ctx, s.owner)
					if err != nil {
						return err
					}
					withHandle := 0
					for _, t := range list {
						if t.NotificationID != "" {
							withHandle++
						}
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Reminders enabled: %t\nTasks with a reminder: %d of %d\n",
						settings.RemindersEnabled, withHandle, len(list))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Cancel every scheduled reminder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, s *session) error {
					if err := s.Tasks.ClearReminders(ctx, s.owner); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Reminders cleared.")
					return nil
				})
			},
		},
	)
	return cmd
}

func newRemindersToggleCmd(opts *rootOptions, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Turn reminders %s", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				settings, err := s.Tasks.SetRemindersEnabled(ctx, s.owner, enabled)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reminders enabled: %t\n", settings.RemindersEnabled)
				return nil
			})
		},
	}
}

// newWatchCmd keeps in-process timers running and prints reminders as they fire
func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print reminders as they come due",
		Long:  "Schedule a reminder for every active task and print each one when it fires. Stops on interrupt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			s, err := opts.open(ctx, app.Options{
				Deliverers: []notification.Deliverer{notification.NewWriterDeliverer(cmd.OutOrStdout())},
			}, func(cfg *config.Config) {
				cfg.NotifierBackend = notification.BackendLocal
			})
			if err != nil {
				return err
			}
			defer s.close()

			restored, err := s.Tasks.RestoreReminders(ctx, s.owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %d reminder(s). Press Ctrl+C to stop.\n", restored)
			<-ctx.Done()
			return nil
		},
	}
}
