package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stride",
		Short:         "stride: a terminal pedometer with a 7-day step history",
		Long:          "stride counts steps from a stream of device-motion samples, tracks distance and session duration, keeps a rolling 7-day history and serves the web app shell with an offline cache.",
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

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newTrackCmd(app),
		newCountCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
