package cmd

import (
	"context"
	"fmt"
	"strings"

	configrepo "github.com/bnema/family-draft-cli/internal/adapters/config/toml"
	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newPickCmd(app *app) *cobra.Command {
	var (
		sport   string
		country string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a sport and country for a player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(app, cmd, map[string]string{
				configrepo.KeyPlayerID: "player",
				configrepo.KeyPIN:      "pin",
			}); err != nil {
				return err
			}

			svc, err := app.wireServices(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			action := domain.PickAction(
				svc.settings.PlayerID,
				app.config.PIN(),
				strings.TrimSpace(sport),
				strings.TrimSpace(country),
			)
			return submitAction(cmd, app, svc, action, asJSON)
		},
	}

	cmd.Flags().String("player", "", "Player ID to pick for (defaults to player_id)")
	cmd.Flags().String("pin", "", "Player PIN (defaults to FDRAFT_PIN)")
	cmd.Flags().StringVar(&sport, "sport", "", "Sport of the item to pick")
	cmd.Flags().StringVar(&country, "country", "", "Country of the item to pick")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("sport")
	_ = cmd.MarkFlagRequired("country")

	return cmd
}

func newUndoCmd(app *app) *cobra.Command {
	return newAdminCmd(app, "undo", "Undo the last pick", func(pin string) application.Intent {
		return application.Undo{PIN: pin}
	})
}

func newResetCmd(app *app) *cobra.Command {
	return newAdminCmd(app, "reset", "Clear every pick and restart the draft", func(pin string) application.Intent {
		return application.Reset{PIN: pin}
	})
}

func newSetStatusCmd(app *app, status domain.DraftStatus) *cobra.Command {
	use, short := "open", "Open the draft"
	if status == domain.DraftStatusClosed {
		use, short = "close", "Close the draft"
	}

	return newAdminCmd(app, use, short, func(pin string) application.Intent {
		return application.SetStatus{PIN: pin, Status: status}
	})
}

// newAdminCmd builds a command submitting the action the session derives
// from intent.
func newAdminCmd(app *app, use, short string, intent func(pin string) application.Intent) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(app, cmd, map[string]string{configrepo.KeyPIN: "pin"}); err != nil {
				return err
			}

			svc, err := app.wireServices(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			effect := application.NewSession(svc.synchronizer.Cell()).Handle(intent(app.config.PIN()))
			if effect.Action == nil {
				return fmt.Errorf("%w: %s", domain.ErrUnsupportedAction, use)
			}
			return submitAction(cmd, app, svc, *effect.Action, asJSON)
		},
	}

	cmd.Flags().String("pin", "", "Admin PIN (defaults to FDRAFT_PIN)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// submitAction sends action and prints the board from the state the service
// answered with. Missing fields are sent as they are; the service decides
// whether the action is acceptable.
func submitAction(cmd *cobra.Command, app *app, svc *services, action domain.Action, asJSON bool) error {
	var snapshot *domain.Snapshot
	submit := func(ctx context.Context) error {
		var err error
		snapshot, err = svc.dispatcher.Submit(ctx, action)
		return err
	}

	var err error
	if asJSON {
		err = submit(cmd.Context())
	} else {
		err = runWithProgress(cmd.Context(), cmd.ErrOrStderr(), actionProgress(action.Kind), submit)
	}
	if err != nil {
		return explain(err)
	}

	session := application.NewSession(svc.synchronizer.Cell())
	session.Complete(action, nil)

	return writeBoardOutput(cmd, app, snapshot, session.View(), session.Notice(), asJSON)
}

// bindFlags lets the named flags of cmd override their config keys for this
// run.
func bindFlags(app *app, cmd *cobra.Command, flags map[string]string) error {
	for key, name := range flags {
		if err := app.config.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
