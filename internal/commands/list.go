package commands

import (
	"context"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/modulesync/internal/app"
	"github.com/nhle/modulesync/internal/logger"
	"github.com/nhle/modulesync/internal/modulelist"
	"github.com/nhle/modulesync/internal/theme"
)

// ListOptions are the flags of the list command.
type ListOptions struct {
	ScrollTo int64
}

func addList(topLevel *cobra.Command, ro *rootOptions) {
	co := &CourseOptions{}
	lo := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "open the interactive module list of a course",
		Example: `
modulesync list --course 42
modulesync list --course 42 --scroll-to 1337
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := co.Course()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			env, err := setup(ctx, ro, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer env.Close()

			theme.Apply(env.cfg.Display.Theme)
			return runList(ctx, env, modulelist.New(course, lo.ScrollTo))
		},
	}

	AddCourseArgs(cmd, co)
	cmd.Flags().Int64Var(&lo.ScrollTo, "scroll-to", 0,
		"Module item id to reveal once loaded.")

	topLevel.AddCommand(cmd)
}

func runList(ctx context.Context, env *environment, initial modulelist.Model) error {
	log := logger.For(env.log, logger.ComponentCommands)

	ctrl := env.controller(initial)
	ctrl.Start(ctx)
	defer ctrl.Stop()

	root := app.New(app.Options{
		Course:      initial.Course,
		Controller:  ctrl,
		Bus:         env.bus,
		Store:       env.store,
		BaseURL:     env.cfg.Canvas.BaseURL,
		IndentWidth: env.cfg.Display.IndentWidth,
		Logger:      log,
	})

	log.Infow("opening module list", "course", initial.Course.ID, "scroll_to", initial.ScrollTarget)
	_, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
