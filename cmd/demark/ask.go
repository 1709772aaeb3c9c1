package main

import (
	"strings"
	"time"

	"github.com/aretw0/demark/internal/cli"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <query...>",
	Short: "Ask the assistant backend and print its reply as plain text",
	Long: `Sends the query to the assistant backend and renders the response envelope.
When the backend is unreachable an error view is printed instead of failing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := viewWriter(cmd)
		if err != nil {
			return err
		}
		archive, _ := cmd.Flags().GetBool("archive")

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		query := strings.Join(args, " ")
		resp := app.Client.Ask(cmd.Context(), query, nil)
		view := app.Normalizer.Render(cmd.Context(), resp)

		if archive {
			if err := saveTranscript(cmd, app, view); err != nil {
				return err
			}
		}
		return writer.Write(cmd.OutOrStdout(), view)
	},
}

func saveTranscript(cmd *cobra.Command, app *cli.App, view domain.View) error {
	store, err := app.OpenArchive()
	if err != nil {
		return err
	}
	t := domain.NewTranscript(view, time.Now())
	if err := store.Save(cmd.Context(), t); err != nil {
		return err
	}
	cli.PrintSystemMessage(cmd.ErrOrStderr(), "Transcript saved as '%s'.", t.ID)
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("output", "o", "plain", "Output format: plain, pretty or json")
	askCmd.Flags().Bool("archive", false, "Save the rendered reply to the transcript archive")
}
