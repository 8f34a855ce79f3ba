package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fdraft",
		Short:         "Family draft board in the terminal",
		Long:          "fdraft shows the family draft board (status, leaderboard, available items and team rosters) from the draft web app, and submits picks and admin actions to it.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newBoardCmd(app),
		newWatchCmd(app),
		newPickCmd(app),
		newUndoCmd(app),
		newResetCmd(app),
		newSetStatusCmd(app, domain.DraftStatusOpen),
		newSetStatusCmd(app, domain.DraftStatusClosed),
		newConfigCmd(app),
	)

	return rootCmd
}
