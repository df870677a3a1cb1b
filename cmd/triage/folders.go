package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/ui"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List available tracker folders",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		options, err := newFiles().FolderOptions()
		if err != nil {
			FatalError("loading folder options: %v", err)
		}

		if jsonOutput {
			printJSON(options)
			return
		}

		if len(options) == 0 {
			fmt.Println("No folders configured. Populate the client map's spaces first.")
			return
		}
		for _, opt := range options {
			list := opt.ListID
			if list == "" {
				list = ui.MutedStyle.Render("no list")
			}
			fmt.Printf("%-14s %-40s %s\n", opt.FolderID, opt.DisplayLabel, list)
		}
	},
}

func init() {
	rootCmd.AddCommand(foldersCmd)
}
