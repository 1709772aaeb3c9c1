package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect saved transcripts",
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved transcript IDs, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		store, err := app.OpenArchive()
		if err != nil {
			return err
		}
		ids, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := viewWriter(cmd)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		store, err := app.OpenArchive()
		if err != nil {
			return err
		}
		t, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writer.Write(cmd.OutOrStdout(), t.View)
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd)
	archiveShowCmd.Flags().StringP("output", "o", "plain", "Output format: plain, pretty or json")
}
