package cmd

import (
	"context"
	"errors"

	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/spf13/cobra"
)

type boardFlags struct {
	sport     string
	search    string
	showTaken bool
	sortKey   string
	asc       bool
	desc      bool
	asJSON    bool
	follow    bool
}

func newBoardCmd(app *app) *cobra.Command {
	var flags boardFlags

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Fetch the draft state and print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := flags.viewParams()
			if err != nil {
				return err
			}
			if flags.follow {
				return followBoard(cmd, app, view, flags.asJSON)
			}
			return runBoard(cmd, app, view, flags.asJSON)
		},
	}

	cmd.Flags().StringVar(&flags.sport, "sport", "", "Only show this sport (exact match)")
	cmd.Flags().StringVar(&flags.search, "search", "", "Case-insensitive search over sport and country")
	cmd.Flags().BoolVar(&flags.showTaken, "show-taken", false, "Include items already picked")
	cmd.Flags().StringVar(&flags.sortKey, "sort", string(domain.SortByProjectedPoints), "Sort key: sport, country, power_rank, projected_points, num_medals, last_year_score")
	cmd.Flags().BoolVar(&flags.asc, "asc", false, "Sort ascending")
	cmd.Flags().BoolVar(&flags.desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&flags.follow, "follow", false, "Keep polling and print the board after every successful fetch")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")

	return cmd
}

func (f boardFlags) viewParams() (domain.ViewParams, error) {
	key, err := domain.ParseSortKey(f.sortKey)
	if err != nil {
		return domain.ViewParams{}, err
	}

	sort := domain.Sort{Key: key, Direction: key.DefaultDirection()}
	switch {
	case f.asc:
		sort.Direction = domain.SortAscending
	case f.desc:
		sort.Direction = domain.SortDescending
	}

	return domain.ViewParams{
		Sort:    sort,
		Filters: domain.Filters{Sport: f.sport, Search: f.search, ShowTaken: f.showTaken},
	}, nil
}

func runBoard(cmd *cobra.Command, app *app, view domain.ViewParams, asJSON bool) error {
	svc, err := app.wireServices(cmd.ErrOrStderr(), "")
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	var snapshot *domain.Snapshot
	fetch := func(ctx context.Context) error {
		var err error
		snapshot, err = svc.synchronizer.Fetch(ctx)
		return err
	}

	if asJSON {
		err = fetch(cmd.Context())
	} else {
		err = runWithProgress(cmd.Context(), cmd.ErrOrStderr(), fetchProgress, fetch)
	}
	if err != nil {
		return explain(err)
	}

	return writeBoardOutput(cmd, app, snapshot, view, application.Notice{}, asJSON)
}

// followBoard prints the board on every poll until interrupted. Failed polls
// go to the log and the loop carries on.
func followBoard(cmd *cobra.Command, app *app, view domain.ViewParams, asJSON bool) error {
	svc, err := app.wireServices(cmd.ErrOrStderr(), "")
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	var writeErr error
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	err = svc.synchronizer.Run(ctx, func(snapshot *domain.Snapshot, err error) {
		switch {
		case errors.Is(err, domain.ErrEndpointNotConfigured):
			writeErr = explain(err)
			cancel()
		case err != nil:
		default:
			if writeErr = writeBoardOutput(cmd, app, snapshot, view, application.Notice{}, asJSON); writeErr != nil {
				cancel()
			}
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// explain adds the fix to configuration errors.
func explain(err error) error {
	if errors.Is(err, domain.ErrEndpointNotConfigured) {
		return errors.Join(err, errors.New("set it with: fdraft config set endpoint <web app url>"))
	}
	return err
}
