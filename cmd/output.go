package cmd

import (
	"encoding/json"
	"fmt"

	boardadapter "github.com/bnema/family-draft-cli/internal/adapters/render/board"
	"github.com/bnema/family-draft-cli/internal/application"
	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/spf13/cobra"
)

type boardOutput struct {
	Snapshot *domain.Snapshot
	View     domain.ViewParams
	Rows     []application.Row
}

func writeBoardOutput(cmd *cobra.Command, app *app, snapshot *domain.Snapshot, view domain.ViewParams, notice application.Notice, asJSON bool) error {
	rows := application.DeriveRows(snapshot, view)

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(boardOutput{Snapshot: snapshot, View: view, Rows: rows})
	}

	rendered, err := app.boardRenderer(snapshot, rows, boardadapter.RenderOptions{
		Sort:    view.Sort,
		Filters: view.Filters,
		Notice:  notice,
	})
	if err != nil {
		return fmt.Errorf("render board: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
