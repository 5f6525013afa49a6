package commands

import (
	"github.com/spf13/cobra"

	"github.com/nhle/modulesync/internal/model"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	ConfigPath  string
	MetricsAddr string
	LogLevel    string
}

// New returns the modulesync command tree.
func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "modulesync",
		Short: "Browse and publish the modules of a Canvas course.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", model.DefaultConfigPath(),
		"Path to the configuration file.")
	cmd.PersistentFlags().StringVar(&ro.MetricsAddr, "metrics-addr", "",
		"Serve prometheus metrics on this address (overrides metrics.addr).")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "",
		"Log level (overrides log.level).")

	AddCommands(cmd, ro)
	return cmd
}

// AddCommands registers the subcommands on topLevel.
func AddCommands(topLevel *cobra.Command, ro *rootOptions) {
	addList(topLevel, ro)
	addSync(topLevel, ro)
	addLogin(topLevel, ro)
	addLogout(topLevel)
}

// loadConfig reads the config file and applies flag overrides.
func (ro *rootOptions) loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(ro.ConfigPath)
	if err != nil {
		return nil, err
	}
	if ro.MetricsAddr != "" {
		cfg.Metrics.Addr = ro.MetricsAddr
	}
	if ro.LogLevel != "" {
		cfg.Log.Level = ro.LogLevel
	}
	return cfg, nil
}
