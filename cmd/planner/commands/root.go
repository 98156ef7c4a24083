// Package commands implements the planner CLI
package commands

import (
	"context"
	"fmt"

	"github.com/benvon/smart-planner/internal/app"
	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	debug      bool
	owner      string
}

// NewRootCmd builds the planner command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "planner",
		Short:         "Smart planner: tasks, reminders and suggestions",
		Long:          "Manage tasks, chat with the assistant, get suggestions and watch reminders from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (defaults to $"+config.ConfigFileEnv+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.owner, "owner", models.LocalOwner, "Owner whose tasks are managed")

	root.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newHistoryCmd(opts),
		newDoneCmd(opts),
		newRemoveCmd(opts),
		newEditCmd(opts),
		newSuggestCmd(opts),
		newChatCmd(opts),
		newDraftCmd(opts),
		newRemindersCmd(opts),
		newWatchCmd(opts),
		newRatelimitCmd(opts),
	)
	return root
}

// session is an opened App bound to the selected owner
type session struct {
	*app.App
	owner string
}

// open loads configuration, lets adjust override it and wires the services
func (o *rootOptions) open(ctx context.Context, appOpts app.Options, adjust func(*config.Config)) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if adjust != nil {
		adjust(cfg)
	}
	log, err := logger.NewDevelopmentLogger(o.debug)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	appOpts.Debug = o.debug
	a, err := app.New(ctx, cfg, log, appOpts)
	if err != nil {
		return nil, err
	}
	return &session{App: a, owner: o.owner}, nil
}

func (s *session) close() {
	if err := s.Close(); err != nil {
		s.Log.Warn("failed_to_close_connections", zap.Error(err))
	}
	_ = logger.Sync(s.Log)
}

// run opens a session for the duration of fn
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := o.open(ctx, app.Options{}, nil)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}
