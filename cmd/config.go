package cmd

import (
	"fmt"

	configrepo "github.com/bnema/family-draft-cli/internal/adapters/config/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change fdraft settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigSetCmd(app),
		newConfigPathCmd(app),
	)

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.config.Settings()
			if err != nil {
				return err
			}

			values := map[string]string{
				configrepo.KeyEndpoint:       settings.Endpoint,
				configrepo.KeyPollInterval:   settings.PollInterval.String(),
				configrepo.KeyRequestTimeout: settings.RequestTimeout.String(),
				configrepo.KeyPlayerID:       settings.PlayerID,
				configrepo.KeyDiscardStale:   fmt.Sprint(settings.DiscardStale),
				configrepo.KeyLogLevel:       settings.LogLevel,
				configrepo.KeyLogFile:        settings.LogFile,
				configrepo.KeyMetricsAddr:    settings.MetricsAddr,
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", app.config.Path())
			for _, key := range configrepo.Keys() {
				fmt.Fprintf(out, "%s = %s\n", key, values[key])
			}
			return nil
		},
	}
}

func newConfigSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.config.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), app.config.Path())
			return nil
		},
	}
}
