package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/demark/internal/cli"
	"github.com/aretw0/demark/pkg/domain"
	"github.com/aretw0/demark/pkg/sanitize"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an assistant response envelope",
	Long:  `Reads a JSON response envelope from --file or stdin and prints its display view.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writer, err := viewWriter(cmd)
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")

		raw, err := cli.ReadText(nil, file, cmd.InOrStdin(), stdinIsTerminal(cmd))
		if err != nil {
			return err
		}
		raw, err = sanitize.InputWithLimit(raw, cfg.Input.MaxSize)
		if err != nil {
			return fmt.Errorf("input rejected: %w", err)
		}

		var resp domain.Response
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return fmt.Errorf("invalid response envelope: %w", err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return writer.Write(cmd.OutOrStdout(), app.Normalizer.Render(cmd.Context(), &resp))
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("file", "f", "", "Read the envelope from a file (\"-\" for stdin)")
	renderCmd.Flags().StringP("output", "o", "plain", "Output format: plain, pretty or json")
}
