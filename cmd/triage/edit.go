package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/store"
	"github.com/rgrier/triage/internal/timeparsing"
	"github.com/rgrier/triage/internal/types"
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's title, priority, or due date",
	Long: `Edits local task fields before pushing. Due dates accept compact
durations (2d, 1w), natural language ("tomorrow", "next friday"),
YYYY-MM-DD, or RFC3339. Pass --clear-due to remove the due date.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		priority, _ := cmd.Flags().GetString("priority")
		due, _ := cmd.Flags().GetString("due")
		clearDue, _ := cmd.Flags().GetBool("clear-due")

		var edits store.TaskEdits
		if cmd.Flags().Changed("title") {
			edits.Title = &title
		}
		if cmd.Flags().Changed("priority") {
			p, err := parsePriorityFlag(priority)
			if err != nil {
				FatalError("%v", err)
			}
			edits.Priority = &p
		}
		if clearDue {
			edits.ClearDueDate = true
		} else if due != "" {
			when, err := timeparsing.ParseDueDate(due, time.Now())
			if err != nil {
				FatalError("parsing due date %q: %v", due, err)
			}
			edits.DueDate = &when
		}
		if edits.Title == nil && edits.Priority == nil && edits.DueDate == nil && !edits.ClearDueDate {
			FatalError("nothing to edit; pass --title, --priority, --due, or --clear-due")
		}

		task, err := newFiles().EditTask(args[0], edits)
		if err != nil {
			FatalError("editing task: %v", err)
		}

		if jsonOutput {
			printJSON(task)
			return
		}
		fmt.Printf("Updated %s\n", task.ID)
	},
}

// parsePriorityFlag validates an explicit priority edit. Unlike
// ingestion, where unknown input defaults to MEDIUM, a user-supplied
// value must name one of the four levels.
func parsePriorityFlag(s string) (types.Priority, error) {
	p := types.Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (want URGENT, HIGH, MEDIUM, or LOW)", s)
	}
	return p, nil
}

func init() {
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().String("priority", "", "New priority (URGENT, HIGH, MEDIUM, LOW)")
	editCmd.Flags().String("due", "", "New due date")
	editCmd.Flags().Bool("clear-due", false, "Remove the due date")
	rootCmd.AddCommand(editCmd)
}
