package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
)

// newRatelimitCmd manages the rate shared by every API instance reading the same store
func newRatelimitCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "Show or update the API rate limit (e.g. 5-S, 100-M). Stored alongside tasks; servers reload it every minute.",
	}
	cmd.AddCommand(newRatelimitGetCmd(opts))
	cmd.AddCommand(newRatelimitSetCmd(opts))
	return cmd
}

func newRatelimitGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "get",
		Aliases: []string{"list"},
		Short:   "Show the current rate limit configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				c, err := storage.NewRatelimitConfigRepository(s.Store).Get(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if c == nil {
					fmt.Fprintf(out, "No rate limit stored; servers use RATE_LIMIT (%s).\n", s.Config.RateLimit)
					return nil
				}
				fmt.Fprintln(out, "Rate limit configuration:")
				fmt.Fprintf(out, "  Rate: %s\n", c.Rate)
				fmt.Fprintf(out, "  Updated: %s\n", c.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
				return nil
			})
		},
	}
}

func newRatelimitSetCmd(opts *rootOptions) *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the rate limit",
		Long:  "Update the rate limit (e.g. 5-S, 100-M, 1000-H).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid rate %q: %w", rate, err)
			}
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				repo := storage.NewRatelimitConfigRepository(s.Store)
				if err := repo.Set(ctx, &models.RatelimitConfig{Rate: rate}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	return cmd
}
