package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/types"
	"github.com/rgrier/triage/internal/ui"
	"github.com/rgrier/triage/internal/view"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List triaged action items",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		statusFilter, _ := cmd.Flags().GetString("status")
		clientFilter, _ := cmd.Flags().GetString("client")
		showAll, _ := cmd.Flags().GetBool("all")
		showFiltered, _ := cmd.Flags().GetBool("filtered")

		files := newFiles()
		now := time.Now()
		tasks, _ := view.Build(files.ReadStore(), files.ReadLedger(), now)

		var out []types.EnrichedTask
		for _, et := range tasks {
			if et.IsFiltered && !showFiltered {
				continue
			}
			if !showAll && statusFilter == "" && et.SyncStatus != types.StatusPending {
				continue
			}
			if statusFilter != "" && string(et.SyncStatus) != statusFilter {
				continue
			}
			if clientFilter != "" && et.ClientDomain != clientFilter {
				continue
			}
			out = append(out, et)
		}

		if jsonOutput {
			if out == nil {
				out = []types.EnrichedTask{}
			}
			printJSON(out)
			return
		}

		if len(out) == 0 {
			fmt.Println("No matching tasks.")
			return
		}
		for _, et := range out {
			printTaskLine(&et, now)
		}
	},
}

func printTaskLine(et *types.EnrichedTask, now time.Time) {
	status := ui.StatusStyle(et.SyncStatus).Render(string(et.SyncStatus))
	prio := ui.PriorityStyle(et.Priority).Render(string(et.Priority))
	age := ui.AgeStyle(et.AgeDays(now)).Render(fmt.Sprintf("%dd", et.AgeDays(now)))

	client := et.ClientName
	if client == "" && et.ClientDomain != "" {
		client = et.ClientDomain
	}
	if client == "" {
		client = ui.MutedStyle.Render("unresolved")
	}

	fmt.Printf("%-24s %-9s %-8s %4s  %-20s %s\n",
		et.ID, status, prio, age, client, et.Title)
	if et.MeetingTitle != "" {
		fmt.Printf("  %s\n", ui.MutedStyle.Render("from: "+et.MeetingTitle))
	}
}

func init() {
	listCmd.Flags().String("status", "", "Filter by status (pending, pushed, dismissed)")
	listCmd.Flags().String("client", "", "Filter by resolved client domain")
	listCmd.Flags().Bool("all", false, "Include pushed and dismissed tasks")
	listCmd.Flags().Bool("filtered", false, "Include noise-filtered tasks")
	rootCmd.AddCommand(listCmd)
}
