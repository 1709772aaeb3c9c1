package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/demark/internal/cli"
	"github.com/aretw0/demark/internal/config"
	"github.com/aretw0/demark/internal/logging"
	"github.com/aretw0/demark/internal/presentation/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "demark",
	Short: "Demark strips Markdown markup from assistant replies",
	Long: `Demark turns Markdown-formatted assistant replies into plain text.
It normalizes text from arguments, files or pipes, queries the assistant
backend and renders its response envelopes, and serves the same
operations over HTTP and the Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		if file, _ := cmd.Flags().GetString("config"); file != "" {
			v.SetConfigFile(file)
		}
		if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
			v.Set("log.level", f.Value.String())
		}

		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger = logging.NewWithFormat(cmd.ErrOrStderr(), level, cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./demark.yaml when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// newApp wires the services for the running command.
func newApp() (*cli.App, error) {
	return cli.BuildApp(cfg, logger)
}

// stdinIsTerminal reports whether the command reads from an interactive terminal.
func stdinIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && tui.IsTerminal(f)
}

// stdoutIsTerminal reports whether the command writes to an interactive terminal.
func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && tui.IsTerminal(f)
}

// viewWriter resolves the --output flag of cmd.
func viewWriter(cmd *cobra.Command) (tui.ViewWriter, error) {
	name, _ := cmd.Flags().GetString("output")
	format, err := tui.ParseFormat(name)
	if err != nil {
		return tui.ViewWriter{}, err
	}
	return tui.ViewWriter{Format: format, TTY: stdoutIsTerminal(cmd)}, nil
}
