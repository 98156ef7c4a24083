package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/spf13/cobra"
)

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var accept int
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest tasks for now",
		Long:  "Suggest up to six tasks. Uses the configured model when OPENAI_API_KEY is set, built-in suggestions otherwise.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				overview, err := s.Tasks.Overview(ctx, s.owner)
				if err != nil {
					return err
				}
				result := s.Suggestions.Suggest(ctx, ai.SuggestionContext{
					Active:         overview.Active,
					Completed:      overview.Completed,
					CompletedToday: overview.CompletedToday,
				})

				out := cmd.OutOrStdout()
				if result.Error != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Using built-in suggestions: %s\n", result.Error)
				}
				if accept > 0 {
					if accept > len(result.Suggestions) {
						return fmt.Errorf("--accept %d out of range (1-%d)", accept, len(result.Suggestions))
					}
					task, err := s.Tasks.AcceptSuggestion(ctx, s.owner, result.Suggestions[accept-1])
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Added %s\n", formatTask(task))
					return nil
				}
				printSuggestions(out, result.Suggestions)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&accept, "accept", 0, "Add suggestion N (1-based) as a task")
	return cmd
}

func printSuggestions(w io.Writer, list []models.Suggestion) {
	for i, sg := range list {
		fmt.Fprintf(w, "%d. %s at %s (%s, %s)\n", i+1, sg.Title, sg.SuggestedTime, sg.Category, sg.Priority)
		if sg.Reason != "" {
			fmt.Fprintf(w, "   %s\n", sg.Reason)
		}
	}
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant",
		Long:  "Send one message, or start an interactive conversation when no message is given (type \"exit\" to leave).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				out := cmd.OutOrStdout()
				if len(args) > 0 {
					printReply(out, s.Chat.Send(s.owner, strings.Join(args, " ")))
					return nil
				}

				scanner := bufio.NewScanner(cmd.InOrStdin())
				fmt.Fprint(out, "> ")
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					switch {
					case line == "exit" || line == "quit":
						return nil
					case line != "":
						printReply(out, s.Chat.Send(s.owner, line))
					}
					fmt.Fprint(out, "> ")
				}
				fmt.Fprintln(out)
				return scanner.Err()
			})
		},
	}
}

func printReply(w io.Writer, msg models.ChatMessage) {
	fmt.Fprintln(w, msg.Text)
	if d := msg.TaskDraft; d != nil {
		fmt.Fprintf(w, "  Draft: %s\n", formatDraft(*d))
	}
	for _, sg := range msg.Suggestions {
		fmt.Fprintf(w, "  - %s\n", sg)
	}
}

func newDraftCmd(opts *rootOptions) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "draft <text>",
		Short: "Turn free text into a task draft",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				draft := s.Chat.Draft(strings.Join(args, " "))
				out := cmd.OutOrStdout()
				if !save {
					fmt.Fprintln(out, formatDraft(draft))
					return nil
				}
				task, err := s.Tasks.AcceptDraft(ctx, s.owner, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Added %s\n", formatTask(task))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Add the draft as a task")
	return cmd
}

func formatDraft(d models.TaskDraft) string {
	return fmt.Sprintf("%s at %s (%s, %s)", d.Title, d.Time, d.Category, d.Priority)
}
