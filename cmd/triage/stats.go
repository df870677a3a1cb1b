package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/ui"
	"github.com/rgrier/triage/internal/view"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate counts over the task store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		files := newFiles()
		s := files.ReadStore()
		_, stats := view.Build(s, files.ReadLedger(), time.Now())

		if jsonOutput {
			printJSON(stats)
			return
		}

		fmt.Println(ui.HeaderStyle.Render("Triage stats"))
		fmt.Printf("  Total:      %d\n", stats.Total)
		fmt.Printf("  Pending:    %s\n", ui.PendingStyle.Render(fmt.Sprintf("%d", stats.Pending)))
		fmt.Printf("  Pushed:     %s\n", ui.PushedStyle.Render(fmt.Sprintf("%d", stats.Pushed)))
		fmt.Printf("  Dismissed:  %s\n", ui.MutedStyle.Render(fmt.Sprintf("%d", stats.Dismissed)))
		fmt.Printf("  Overdue:    %s\n", ui.UrgentStyle.Render(fmt.Sprintf("%d", stats.Overdue)))
		fmt.Printf("  Unresolved: %d\n", stats.UnresolvedClient)

		if len(stats.UnresolvedByDomain) > 0 {
			fmt.Println("\n  Unresolved by domain:")
			domains := make([]string, 0, len(stats.UnresolvedByDomain))
			for d := range stats.UnresolvedByDomain {
				domains = append(domains, d)
			}
			sort.Strings(domains)
			for _, d := range domains {
				fmt.Printf("    %-28s %d\n", d, stats.UnresolvedByDomain[d])
			}
		}

		if s.RefreshedAt != nil {
			fmt.Printf("\n  Last refresh: %s\n", s.RefreshedAt.Local().Format(time.RFC1123))
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
