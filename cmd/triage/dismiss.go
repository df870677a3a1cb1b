package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id...>",
	Short: "Dismiss action items without pushing them",
	Long: `Marks tasks as dismissed. Dismissed tasks stay in the store until
the retention window expires, then are pruned on the next refresh.
Dismissing an already-pushed task has no visible effect: pushed status
always wins.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files := newFiles()
		s := files.ReadStore()

		for _, id := range args {
			if s.FindTask(id) == nil {
				FatalError("no task with id %s", id)
			}
		}
		if err := files.AddDismissed(args); err != nil {
			FatalError("recording dismissal: %v", err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{"dismissed": args})
			return
		}
		for _, id := range args {
			fmt.Printf("Dismissed %s\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(dismissCmd)
}
