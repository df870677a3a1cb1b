package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/types"
)

type pushReport struct {
	TaskID       string `json:"task_id"`
	RemoteTaskID string `json:"remote_task_id,omitempty"`
	RemoteURL    string `json:"remote_url,omitempty"`
	Error        string `json:"error,omitempty"`
}

var pushCmd = &cobra.Command{
	Use:   "push <id...>",
	Short: "Push action items to the task tracker",
	Long: `Creates a tracker task for each given id and records the mapping in
the sync ledger. Every task must have a destination list, either from
client resolution or a manual 'triage assign'. Failures are reported
per task; one failure does not stop the batch.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files := newFiles()
		s := files.ReadStore()
		ledger := files.ReadLedger()

		var tasks []*types.Task
		for _, id := range args {
			task := s.FindTask(id)
			if task == nil {
				FatalError("no task with id %s", id)
			}
			if _, pushed := ledger[id]; pushed {
				FatalError("task %s was already pushed", id)
			}
			if task.ListID == "" {
				FatalError("task %s has no destination list; run 'triage assign %s' first", id, id)
			}
			tasks = append(tasks, task)
		}

		results := newPusher().PushTasks(context.Background(), tasks)

		var reports []pushReport
		failed := 0
		for _, res := range results {
			report := pushReport{TaskID: res.TaskID}
			if res.Err != nil {
				report.Error = res.Err.Error()
				failed++
				reports = append(reports, report)
				continue
			}
			if err := files.AppendLedgerEntry(res.TaskID, *res.Entry); err != nil {
				FatalError("recording push of %s: %v", res.TaskID, err)
			}
			report.RemoteTaskID = res.Entry.RemoteTaskID
			report.RemoteURL = res.Entry.RemoteURL
			reports = append(reports, report)
		}

		if jsonOutput {
			printJSON(reports)
		} else {
			for _, r := range reports {
				if r.Error != "" {
					fmt.Fprintf(os.Stderr, "Error pushing %s: %s\n", r.TaskID, r.Error)
					continue
				}
				fmt.Printf("Pushed %s -> %s\n", r.TaskID, r.RemoteTaskID)
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
