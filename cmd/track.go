package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/stride/internal/adapters/sensor/gate"
	"github.com/bnema/stride/internal/adapters/sensor/stream"
	"github.com/bnema/stride/internal/adapters/tui"
	"github.com/bnema/stride/internal/application"
	"github.com/spf13/cobra"
)

func newTrackCmd(app *app) *cobra.Command {
	var (
		source   string
		realtime bool
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Open the live step counter dashboard",
		Long:  "Open the live dashboard. Press s to start or stop tracking, r to reset and q to quit. Samples come from --source or sensor.source.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if source == "" {
				source = app.cfg.Sensor.Source
			}

			answers := make(chan bool, 1)
			sensor, raw, err := app.openSensor(source, realtime && source != stream.StdinSource, gate.Answers(answers))
			if err != nil {
				return fmt.Errorf("open motion sensor: %w", err)
			}
			defer raw.Close()

			bridge := &tui.Bridge{}
			controller := application.NewSessionController(sensor, app.history,
				application.WithPresenter(bridge),
				application.WithSessionLogger(app.logger.With("session")),
			)
			app.history.SetRenderer(bridge)

			model := tui.New(ctx, controller, tui.Options{
				History: app.history.Load(ctx),
				Render:  app.renderOptions(),
				Answers: answers,
			})

			runErr := tui.Run(ctx, model, bridge, tui.RunOptions{
				Output:    cmd.OutOrStdout(),
				AltScreen: true,
				InputTTY:  source == stream.StdinSource,
			})

			// Quitting pauses the session so the day's count is kept.
			stopErr := controller.Stop(ctx)

			return errors.Join(runErr, stopErr)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "motion sample file, or - for stdin (default: sensor.source)")
	cmd.Flags().BoolVar(&realtime, "realtime", true, "replay recorded files at their original speed")

	return cmd
}
