package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the assistant backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("backend at %s is unhealthy: %w", app.Client.BaseURL(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "backend at %s is healthy\n", app.Client.BaseURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
