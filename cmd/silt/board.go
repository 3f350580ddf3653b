package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/silt/pkg/boards"
)

var (
	boardID       string
	boardName     string
	boardStatuses string
	boardJSON     bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Manage task boards",
}

var boardWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Create or update a board",
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}

		id := boardID
		if id == "" {
			id = uuid.NewString()
		}
		patch := boards.Patch{ID: id}
		if cmd.Flags().Changed("name") {
			patch.Name = &boardName
		}
		if cmd.Flags().Changed("statuses") {
			statuses := splitTags(boardStatuses)
			patch.StatusTypes = &statuses
		}

		if _, err := ws.Boards.Save(context.Background(), patch); err != nil {
			fatal("Failed to save board", err)
		}
		syncAndReport(ws)
		fmt.Printf("Board '%s' saved.\n", id)
	},
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active boards",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		syncAndReport(ws)

		all := ws.Boards.Active()
		if boardJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(all); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}
		for _, b := range all {
			fmt.Printf("%s  %s [%s]\n", b.ID, b.Name, strings.Join(b.StatusTypes, ", "))
		}
	},
}

var boardDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a board and all of its tasks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		if err := ws.DeleteBoard(context.Background(), args[0]); err != nil {
			fatal("Failed to delete board", err)
		}
		syncAndReport(ws)
		fmt.Printf("Board '%s' deleted.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.AddCommand(boardWriteCmd, boardListCmd, boardDeleteCmd)

	boardWriteCmd.Flags().StringVar(&boardID, "id", "", "Board ID (generated when omitted)")
	boardWriteCmd.Flags().StringVar(&boardName, "name", "", "Board name")
	boardWriteCmd.Flags().StringVar(&boardStatuses, "statuses", "", "Comma-separated status list")
	boardListCmd.Flags().BoolVar(&boardJSON, "json", false, "Output in JSON format")
}
