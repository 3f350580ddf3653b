package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchCmd keeps the workspace syncing until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously synchronize until interrupted",
	Long: `Start the sync orchestrator and keep it running. Remote changes,
connectivity transitions and sign-in events each trigger a sync pass.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := ws.Start(ctx); err != nil {
			fatal("Failed to start workspace", err)
		}
		fmt.Println("Watching for changes. Press Ctrl+C to stop.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		fmt.Println("Stopping...")
		if err := ws.Stop(context.Background()); err != nil {
			fatal("Failed to stop cleanly", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
