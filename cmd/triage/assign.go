package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/types"
)

var assignCmd = &cobra.Command{
	Use:   "assign <task-id> <folder-id>",
	Short: "Route a task to a tracker folder",
	Long: `Assigns a destination folder to a task, picking the folder's default
list. When the task carries a resolved client domain that is not yet in
the client directory, the mapping is saved so future refreshes resolve
that client automatically.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, folderID := args[0], args[1]
		files := newFiles()

		options, err := files.FolderOptions()
		if err != nil {
			FatalError("loading folder options: %v", err)
		}
		var chosen *types.FolderOption
		for i := range options {
			if options[i].FolderID == folderID {
				chosen = &options[i]
				break
			}
		}
		if chosen == nil {
			FatalError("no folder with id %s; run 'triage folders' to see choices", folderID)
		}

		task, err := files.AssignFolder(taskID, chosen.ListID, chosen.FolderID, chosen.FolderName, chosen.SpaceName)
		if err != nil {
			FatalError("assigning folder: %v", err)
		}

		if jsonOutput {
			printJSON(task)
			return
		}
		fmt.Printf("Assigned %s to %s\n", task.ID, chosen.DisplayLabel)
	},
}

func init() {
	rootCmd.AddCommand(assignCmd)
}
