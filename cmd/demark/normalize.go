package main

import (
	"fmt"

	"github.com/aretw0/demark/internal/cli"
	"github.com/aretw0/demark/pkg/sanitize"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Strip Markdown markup from text",
	Long: `Prints the plain-text form of the given Markdown. The text comes from the
arguments, from --file ("-" for stdin), or from stdin when it is piped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		text, err := cli.ReadText(args, file, cmd.InOrStdin(), stdinIsTerminal(cmd))
		if err != nil {
			return err
		}
		text, err = sanitize.InputWithLimit(text, cfg.Input.MaxSize)
		if err != nil {
			return fmt.Errorf("input rejected: %w", err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Fprintln(cmd.OutOrStdout(), app.Normalizer.Normalize(cmd.Context(), text))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringP("file", "f", "", "Read the text from a file (\"-\" for stdin)")
}
