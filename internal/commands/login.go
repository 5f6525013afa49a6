package commands

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nhle/modulesync/internal/credential"
	"github.com/nhle/modulesync/internal/model"
	configview "github.com/nhle/modulesync/internal/ui/config"
)

func addLogin(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "store the Canvas URL and access token",
		Example: `
modulesync login
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.loadConfig()
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(configview.New(*cfg)).Run()
			if err != nil {
				return fmt.Errorf("running login form: %w", err)
			}

			form, ok := final.(configview.Model)
			if !ok {
				return errors.New("unexpected login form state")
			}
			res, ok := form.Result()
			if !ok {
				return errors.New("login aborted")
			}

			if err := credential.Set(credential.CanvasTokenKey, res.Token); err != nil {
				return err
			}
			if err := model.SaveConfig(ro.ConfigPath, &res.Config); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(color.Output, "%s saved %s\n", color.GreenString("✓"), ro.ConfigPath)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "remove the stored Canvas access token",
		Example: `
modulesync logout
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := credential.Delete(credential.CanvasTokenKey)
			if errors.Is(err, credential.ErrNotFound) {
				_, _ = fmt.Fprintln(color.Output, color.YellowString("no token stored"))
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(color.Output, "%s removed the access token\n", color.GreenString("✓"))
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
