// chess-trainer serves the chess training API and renders boards and coach
// replies in the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/config"
	"github.com/lgbarn/chess-trainer-go/internal/logging"
)

const programVersion = "0.1.0"

const defaultConfigPath = "chess-trainer.yaml"

// app holds the state shared by every command once the root pre-run hook
// has loaded configuration.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "chess-trainer",
		Short: "AI-coached chess trainer",
		Long: `chess-trainer is a chess training service with four panels: free
play analysis, an opening trainer, tactics puzzles and game review. Analysis
comes from an external agent service; the trainer renders boards from FEN and
coach replies from a small markdown subset.

Run "chess-trainer serve" to start the HTTP and websocket API, or use the
board, render and ask commands from a terminal.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "config file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.serveCmd(),
		a.boardCmd(),
		a.renderCmd(),
		a.askCmd(),
		versionCmd(),
	)
	return root
}

// setup loads and validates configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "chess-trainer version %s\n", programVersion)
			return err
		},
	}
}
