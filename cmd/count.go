package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	historyrender "github.com/bnema/stride/internal/adapters/render/history"
	"github.com/bnema/stride/internal/adapters/sensor/gate"
	"github.com/bnema/stride/internal/application"
	"github.com/bnema/stride/internal/domain"
	"github.com/spf13/cobra"
)

func newCountCmd(app *app) *cobra.Command {
	var (
		input       string
		allowMotion bool
		realtime    bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count steps in a recorded motion stream",
		Long:  "Run one tracking session over a recorded sample stream (JSON lines {\"t\":ms,\"z\":accel} or CSV t,z), save it to today's history and print the totals.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if input == "" {
				input = app.cfg.Sensor.Source
			}

			prompt := denyMotion
			if allowMotion {
				prompt = gate.Allow
			}

			sensor, raw, err := app.openSensor(input, realtime, prompt)
			if err != nil {
				return fmt.Errorf("open motion sensor: %w", err)
			}
			defer raw.Close()

			if !asJSON {
				app.history.SetRenderer(historyrender.NewWriter(cmd.OutOrStdout(), app.renderOptions, app.logger.With("render")))
			}

			controller := application.NewSessionController(sensor, app.history,
				application.WithSessionLogger(app.logger.With("session")),
			)

			if err := controller.Start(ctx); err != nil {
				return countStartError(err)
			}

			select {
			case <-raw.Done():
			case <-ctx.Done():
			}

			stopErr := controller.Stop(context.WithoutCancel(ctx))
			view := controller.Snapshot()

			if err := writeCountOutput(cmd, view, asJSON); err != nil {
				return err
			}

			return errors.Join(raw.Err(), stopErr)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "motion sample file, or - for stdin (default: sensor.source)")
	cmd.Flags().BoolVar(&allowMotion, "allow-motion", false, "grant motion access when sensor.require_permission is set")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "replay samples at their recorded speed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the final session as JSON")

	return cmd
}

func denyMotion(context.Context) (bool, error) {
	return false, nil
}

func countStartError(err error) error {
	switch {
	case errors.Is(err, domain.ErrCapabilityMissing):
		return fmt.Errorf("motion sensor not supported: set --input or sensor.source: %w", err)
	case errors.Is(err, domain.ErrPermissionDenied):
		return fmt.Errorf("motion permission denied: pass --allow-motion: %w", err)
	default:
		return fmt.Errorf("start tracking: %w", err)
	}
}

func writeCountOutput(cmd *cobra.Command, view application.SessionView, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\nsteps: %d\ndistance: %s km\nduration: %s\n",
		view.Status, view.Steps, view.Distance, view.Duration)
	return err
}
