package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgrier/triage/internal/refresh"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch new action items from upstream",
	Long: `Fetches recent action items and meetings, filters noise, resolves
clients against the local directory, and persists the merged store.
Refreshes are rate limited; inside the cool-down window the last known
state is returned without contacting upstream.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		files := newFiles()
		orch := newOrchestrator(files)

		result, err := orch.Refresh(context.Background())
		var rateLimited *refresh.RateLimitedError
		if errors.As(err, &rateLimited) {
			if jsonOutput {
				printJSON(map[string]interface{}{
					"rate_limited":        true,
					"retry_after_seconds": rateLimited.RetryAfterSeconds(),
					"total":               rateLimited.Last.Total,
					"refreshed_at":        rateLimited.Last.RefreshedAt,
				})
				return
			}
			fmt.Printf("Rate limited; retry in %ds (%d tasks as of last refresh)\n",
				rateLimited.RetryAfterSeconds(), rateLimited.Last.Total)
			return
		}
		if err != nil {
			FatalError("refresh failed: %v", err)
		}

		if jsonOutput {
			printJSON(result)
			return
		}
		fmt.Printf("Refreshed: %d new, %d total\n", result.Added, result.Total)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
