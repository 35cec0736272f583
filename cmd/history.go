package cmd

import (
	"encoding/json"
	"fmt"

	historyrender "github.com/bnema/stride/internal/adapters/render/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the last 7 days of steps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := app.history.Load(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(log.MostRecentFirst())
			}

			rendered, err := historyrender.Render(log, app.renderOptions())
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print history as JSON, most recent first")

	return cmd
}
