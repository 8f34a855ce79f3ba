package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	configrepo "github.com/bnema/family-draft-cli/internal/adapters/config/toml"
	"github.com/bnema/family-draft-cli/internal/adapters/metrics"
	"github.com/bnema/family-draft-cli/internal/adapters/tui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 5 * time.Second

func newWatchCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open the live draft board",
		Long:  "watch polls the draft web app and keeps the board on screen, with keys to sort, filter, pick and run admin actions. Logs go to log.file so they do not tear the screen.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(app, cmd, map[string]string{
				configrepo.KeyPlayerID:    "player",
				configrepo.KeyMetricsAddr: "metrics-addr",
			}); err != nil {
				return err
			}

			settings, err := app.config.Settings()
			if err != nil {
				return err
			}

			svc, err := app.wireServices(cmd.ErrOrStderr(), settings.LogFile)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			metricsAddr := svc.settings.MetricsAddr

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			group, gctx := errgroup.WithContext(ctx)

			if metricsAddr != "" {
				server := metrics.NewServer(metricsAddr, app.metrics)
				group.Go(func() error {
					svc.logger.Info().Str("addr", metricsAddr).Msg("serving metrics")
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				group.Go(func() error {
					<-gctx.Done()
					shutdownCtx, stop := context.WithTimeout(context.Background(), metricsShutdownTimeout)
					defer stop()
					return server.Shutdown(shutdownCtx)
				})
			}

			group.Go(func() error {
				defer cancel()
				return tui.Run(gctx, tui.Options{
					Synchronizer: svc.synchronizer,
					Dispatcher:   svc.dispatcher,
					PlayerID:     svc.settings.PlayerID,
					Logger:       svc.logger,
				}, cmd.InOrStdin(), cmd.OutOrStdout())
			})

			if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("player", "", "Player ID preselected for picks (defaults to player_id)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (defaults to metrics.addr)")

	return cmd
}
