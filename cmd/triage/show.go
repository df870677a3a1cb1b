package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/types"
	"github.com/rgrier/triage/internal/ui"
	"github.com/rgrier/triage/internal/view"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one task in detail",
	Long: `Shows a single task with its computed status and ledger fields.
With --context, fetches the linked meeting's summary from upstream.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withContext, _ := cmd.Flags().GetBool("context")

		files := newFiles()
		now := time.Now()
		tasks, _ := view.Build(files.ReadStore(), files.ReadLedger(), now)

		var found *types.EnrichedTask
		for i := range tasks {
			if tasks[i].ID == args[0] {
				found = &tasks[i]
				break
			}
		}
		if found == nil {
			FatalError("no task with id %s", args[0])
		}

		if jsonOutput && !withContext {
			printJSON(found)
			return
		}

		printTaskDetail(found, now)

		if withContext && found.MeetingID != "" {
			mc, err := newSource().FetchMeetingContext(context.Background(), found.MeetingID)
			if err != nil {
				FatalError("fetching meeting context: %v", err)
			}
			if jsonOutput {
				printJSON(map[string]interface{}{"task": found, "meeting_context": mc})
				return
			}
			fmt.Println()
			fmt.Println(ui.HeaderStyle.Render("Meeting context"))
			if mc.Summary != "" {
				fmt.Println(mc.Summary)
			} else {
				fmt.Println(ui.MutedStyle.Render("(no summary available)"))
			}
		}
	},
}

func printTaskDetail(et *types.EnrichedTask, now time.Time) {
	fmt.Printf("%s  %s\n", ui.HeaderStyle.Render(et.ID), et.Title)
	fmt.Printf("  Status:   %s\n", ui.StatusStyle(et.SyncStatus).Render(string(et.SyncStatus)))
	fmt.Printf("  Priority: %s\n", ui.PriorityStyle(et.Priority).Render(string(et.Priority)))
	fmt.Printf("  Age:      %s\n", ui.AgeStyle(et.AgeDays(now)).Render(fmt.Sprintf("%d days", et.AgeDays(now))))
	if et.DueDate != nil {
		fmt.Printf("  Due:      %s\n", et.DueDate.Local().Format("2006-01-02"))
	}
	if et.ClientDomain != "" {
		fmt.Printf("  Client:   %s (%s)\n", et.ClientName, et.ClientDomain)
	}
	if et.FolderName != "" {
		fmt.Printf("  Folder:   %s > %s\n", et.SpaceName, et.FolderName)
	}
	if len(et.People) > 0 {
		fmt.Printf("  People:   %s\n", strings.Join(et.People, ", "))
	}
	if et.MeetingTitle != "" {
		fmt.Printf("  Meeting:  %s", et.MeetingTitle)
		if et.MeetingDate != nil {
			fmt.Printf(" (%s)", et.MeetingDate.Local().Format("2006-01-02"))
		}
		fmt.Println()
	}
	if et.SyncStatus == types.StatusPushed {
		fmt.Printf("  Remote:   %s\n", et.RemoteURL)
	}
	if len(et.DescriptionPoints) > 0 {
		fmt.Println()
		for _, point := range et.DescriptionPoints {
			fmt.Printf("  - %s\n", point)
		}
	} else if et.Description != "" {
		fmt.Printf("\n  %s\n", et.Description)
	}
	if et.IsFiltered {
		fmt.Printf("\n  %s\n", ui.MutedStyle.Render("flagged as noise"))
	}
}

func init() {
	showCmd.Flags().Bool("context", false, "Fetch the linked meeting's summary")
	rootCmd.AddCommand(showCmd)
}
