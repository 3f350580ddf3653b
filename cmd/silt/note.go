package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/silt/pkg/notes"
)

var (
	noteID      string
	noteTitle   string
	noteContent string
	noteTags    string
	noteJSON    bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Create or update a note",
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}

		id := noteID
		if id == "" {
			id = uuid.NewString()
		}
		patch := notes.Patch{ID: id}
		if cmd.Flags().Changed("title") {
			patch.Title = &noteTitle
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &noteContent
		}
		if cmd.Flags().Changed("tags") {
			tags := splitTags(noteTags)
			patch.Tags = &tags
		}

		if _, err := ws.Notes.Save(context.Background(), patch); err != nil {
			fatal("Failed to save note", err)
		}
		syncAndReport(ws)
		fmt.Printf("Note '%s' saved.\n", id)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		syncAndReport(ws)

		all := ws.Notes.Active()
		if noteJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(all); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}
		for _, n := range all {
			fmt.Printf("%s  %s\n", n.ID, n.Title)
		}
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace()
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		if err := ws.Notes.Delete(context.Background(), args[0]); err != nil {
			fatal("Failed to delete note", err)
		}
		syncAndReport(ws)
		fmt.Printf("Note '%s' deleted.\n", args[0])
	},
}

func splitTags(s string) []string {
	var out []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteWriteCmd, noteListCmd, noteDeleteCmd)

	noteWriteCmd.Flags().StringVar(&noteID, "id", "", "Note ID (generated when omitted)")
	noteWriteCmd.Flags().StringVar(&noteTitle, "title", "", "Note title")
	noteWriteCmd.Flags().StringVar(&noteContent, "content", "", "Note content")
	noteWriteCmd.Flags().StringVar(&noteTags, "tags", "", "Comma-separated tags")
	noteListCmd.Flags().BoolVar(&noteJSON, "json", false, "Output in JSON format")
}
