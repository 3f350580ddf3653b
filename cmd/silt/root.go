package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/silt"
	"github.com/aretw0/silt/internal/platform"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "silt",
	Short: "An offline-first store for notes, tasks and boards",
	Long: `Silt keeps notes, tasks and task boards in a local workspace and
synchronizes them with a shared remote directory whenever it is reachable.
All commands work offline; pending changes flow out on the next sync.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openWorkspace locates the workspace root from the working directory and
// assembles a filesystem-backed workspace over it.
func openWorkspace() (*silt.Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := platform.FindRoot(cwd)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'silt init' first)", err)
	}
	if platform.IsDevRun() {
		slog.Default().Debug("dev run detected, using workspace at", "root", root)
	}
	return silt.Open(root, silt.WithLogger(slog.Default()))
}

// syncAndReport runs a manual sync pass, keeping going past per-store errors.
func syncAndReport(ws *silt.Workspace) {
	if err := ws.SyncAll(context.Background()); err != nil {
		slog.Default().Debug("sync skipped or failed", "error", err)
	}
}
