package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/silt/pkg/tasks"
)

var (
	taskID      string
	taskName    string
	taskDesc    string
	taskBoard   string
	taskStatus  string
	taskDue     int64
	taskJSON    bool
	listBoardID string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Create or update a task",
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		syncAndReport(ws) // pick up boards created elsewhere before validating

		id := taskID
		if id == "" {
			id = uuid.NewString()
		}
		patch := tasks.Patch{ID: id}
		if cmd.Flags().Changed("name") {
			patch.Name = &taskName
		}
		if cmd.Flags().Changed("description") {
			patch.Description = &taskDesc
		}
		if cmd.Flags().Changed("board") {
			patch.BoardID = &taskBoard
		}
		if cmd.Flags().Changed("status") {
			patch.Status = &taskStatus
		}
		if cmd.Flags().Changed("due") {
			patch.DueDate = &taskDue
		}

		if _, err := ws.Tasks.Save(context.Background(), patch); err != nil {
			fatal("Failed to save task", err)
		}
		syncAndReport(ws)
		fmt.Printf("Task '%s' saved.\n", id)
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		syncAndReport(ws)

		var all []tasks.Task
		if listBoardID != "" {
			all = tasks.ByBoard(ws.Tasks, listBoardID)
		} else {
			all = ws.Tasks.Active()
		}

		if taskJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(all); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}
		for _, t := range all {
			fmt.Printf("%s  [%s] %s (board %s)\n", t.ID, t.Status, t.Name, t.BoardID)
		}
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		if err := ws.Tasks.Delete(context.Background(), args[0]); err != nil {
			fatal("Failed to delete task", err)
		}
		syncAndReport(ws)
		fmt.Printf("Task '%s' deleted.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskWriteCmd, taskListCmd, taskDeleteCmd)

	taskWriteCmd.Flags().StringVar(&taskID, "id", "", "Task ID (generated when omitted)")
	taskWriteCmd.Flags().StringVar(&taskName, "name", "", "Task name")
	taskWriteCmd.Flags().StringVar(&taskDesc, "description", "", "Task description")
	taskWriteCmd.Flags().StringVar(&taskBoard, "board", "", "Parent board ID")
	taskWriteCmd.Flags().StringVar(&taskStatus, "status", "", "Task status (must be declared by the board)")
	taskWriteCmd.Flags().Int64Var(&taskDue, "due", 0, "Due date as Unix milliseconds (0 = unset)")
	taskListCmd.Flags().StringVar(&listBoardID, "board", "", "Only tasks on this board")
	taskListCmd.Flags().BoolVar(&taskJSON, "json", false, "Output in JSON format")
}
