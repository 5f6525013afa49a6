package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/nhle/modulesync/internal/model"
	"github.com/nhle/modulesync/internal/modulelist"
)

// SyncOptions are the flags of the sync command.
type SyncOptions struct {
	All   bool
	Force bool
}

func addSync(topLevel *cobra.Command, ro *rootOptions) {
	co := &CourseOptions{}
	so := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "load the modules of a course and print them",
		Example: `
modulesync sync --course 42
modulesync sync --course 42 --all --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			course, err := co.Course()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			env, err := setup(ctx, ro, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer env.Close()

			initial := modulelist.New(course, 0)
			initial.ForceNetwork = so.Force

			ctrl := env.controller(initial)
			ctrl.Start(ctx)
			defer ctrl.Stop()

			state, err := waitLoaded(ctx, ctrl.States(), so.All, ctrl.Dispatch)
			if err != nil {
				return err
			}

			collapsed, err := env.store.GetCollapsedIDs(ctx, course)
			if err != nil {
				return err
			}
			printRows(color.Output, modulelist.Project(state, collapsed, env.cfg.Display.IndentWidth))
			return nil
		},
	}

	AddCourseArgs(cmd, co)
	cmd.Flags().BoolVar(&so.All, "all", false,
		"Keep loading until every page is fetched.")
	cmd.Flags().BoolVar(&so.Force, "force", false,
		"Bypass the response cache.")

	topLevel.AddCommand(cmd)
}

// waitLoaded reads snapshots until loading settles. With all set it keeps
// requesting pages until the cursor is exhausted.
func waitLoaded(
	ctx context.Context,
	states <-chan modulelist.Model,
	all bool,
	dispatch func(modulelist.Event) bool,
) (modulelist.Model, error) {
	for {
		select {
		case <-ctx.Done():
			return modulelist.Model{}, ctx.Err()
		case state, ok := <-states:
			if !ok {
				return modulelist.Model{}, errors.New("controller stopped before loading finished")
			}
			if state.IsLoading {
				continue
			}
			if state.LoadErr != nil {
				return state, fmt.Errorf("loading modules: %s (%s)", state.LoadErr.Message, state.LoadErr.Kind)
			}
			if all && state.Cursor.HasMore() {
				dispatch(modulelist.NextPageRequested{})
				continue
			}
			return state, nil
		}
	}
}

// printRows renders projected rows as a table.
func printRows(w io.Writer, rows []modulelist.Row) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint(""), bold.Sprint("Title"), bold.Sprint("Type"))

	mark := func(published bool) string {
		if published {
			return green.Sprint("●")
		}
		return dim.Sprint("○")
	}

	for _, r := range rows {
		switch r.Kind {
		case modulelist.RowModule:
			title := r.Module.Name
			if r.Collapsed {
				title += " (collapsed)"
			}
			tbl.AddRow(r.Module.ID, mark(r.Module.Published), bold.Sprint(title),
				fmt.Sprintf("%d items", r.Module.ItemCount))
		case modulelist.RowItem:
			tbl.AddRow(r.Item.ID, mark(r.Item.Published), strings.Repeat(" ", r.Indent+2)+r.Item.Title, string(r.Item.Type))
		case modulelist.RowSubHeader:
			tbl.AddRow(r.Item.ID, "", strings.Repeat(" ", r.Indent+2)+dim.Sprint(r.Item.Title), string(model.ItemTypeSubHeader))
		case modulelist.RowEmptyModule:
			tbl.AddRow("", "", dim.Sprint("  no items"), "")
		case modulelist.RowEmpty:
			tbl.AddRow("", "", dim.Sprint("this course has no modules"), "")
		case modulelist.RowLoading:
			tbl.AddRow("", "", dim.Sprint("more pages available, use --all"), "")
		case modulelist.RowFullError, modulelist.RowInlineError:
			tbl.AddRow("", "", red.Sprint(r.Err.Message), "")
		}
	}

	_, _ = fmt.Fprintln(w, tbl)
}
