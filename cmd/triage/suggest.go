package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/fuzzy"
	"github.com/rgrier/triage/internal/types"
	"github.com/rgrier/triage/internal/ui"
)

type folderSuggestion struct {
	types.FolderOption
	Score float64 `json:"score"`
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <task-id | hint>",
	Short: "Suggest tracker folders for a task",
	Long: `Ranks folders against a task by fuzzy name match. Given a task id,
the query is the organization name extracted from the task, falling
back to its title; any other argument is used as a literal hint.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		files := newFiles()

		query := args[0]
		if task := files.ReadStore().FindTask(args[0]); task != nil {
			query = fuzzy.ExtractOrgName(task.Title, task.Description)
			if query == "" {
				query = task.Title
			}
		}

		options, err := files.FolderOptions()
		if err != nil {
			FatalError("loading folder options: %v", err)
		}
		labels := make([]string, len(options))
		for i, opt := range options {
			labels[i] = opt.DisplayLabel
		}

		matches := fuzzy.Rank(query, labels, fuzzy.DefaultThreshold)
		suggestions := make([]folderSuggestion, 0, len(matches))
		for _, m := range matches {
			suggestions = append(suggestions, folderSuggestion{
				FolderOption: options[m.Index],
				Score:        m.Score,
			})
		}

		if jsonOutput {
			printJSON(suggestions)
			return
		}

		if len(suggestions) == 0 {
			fmt.Printf("No folder matches %q.\n", query)
			return
		}
		fmt.Println(ui.HeaderStyle.Render("Suggestions for " + strings.TrimSpace(query)))
		for _, s := range suggestions {
			fmt.Printf("  %.2f  %-14s %s\n", s.Score, s.FolderID, s.DisplayLabel)
		}
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
