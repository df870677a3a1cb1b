// Package view merges the persisted task store with the sync ledger and
// dismissed set into the externally visible task list and its stats.
// Build is a deterministic projection recomputed on every read; nothing
// here touches disk.
package view

import (
	"time"

	"github.com/rgrier/triage/internal/types"
)

// OverdueAfter is the pending-task age at which a task counts as overdue.
const OverdueAfter = 7 * 24 * time.Hour

// Build computes the enriched task list and aggregate stats. Status
// precedence: a ledger entry always wins, then the dismissed set, then
// pending.
func Build(s *types.Store, ledger types.SyncLedger, now time.Time) ([]types.EnrichedTask, types.Stats) {
	dismissed := make(map[string]struct{}, len(s.Dismissed))
	for _, id := range s.Dismissed {
		dismissed[id] = struct{}{}
	}

	enriched := make([]types.EnrichedTask, 0, len(s.Tasks))
	stats := types.Stats{UnresolvedByDomain: map[string]int{}}

	for _, task := range s.Tasks {
		et := types.EnrichedTask{Task: *task, SyncStatus: types.StatusPending}

		if entry, pushed := ledger[task.ID]; pushed {
			et.SyncStatus = types.StatusPushed
			et.RemoteTaskID = entry.RemoteTaskID
			et.RemoteURL = entry.RemoteURL
			syncedAt := entry.SyncedAt
			et.SyncedAt = &syncedAt
		} else if _, ok := dismissed[task.ID]; ok {
			et.SyncStatus = types.StatusDismissed
		}

		enriched = append(enriched, et)
		tally(&stats, &et, now)
	}

	stats.Total = len(enriched)
	return enriched, stats
}

func tally(stats *types.Stats, et *types.EnrichedTask, now time.Time) {
	switch et.SyncStatus {
	case types.StatusPushed:
		stats.Pushed++
	case types.StatusDismissed:
		stats.Dismissed++
	default:
		stats.Pending++
		if ref, ok := et.ReferenceDate(); ok && now.Sub(ref) >= OverdueAfter {
			stats.Overdue++
		}
	}

	if et.ClientDomain == "" {
		stats.UnresolvedClient++
		bucket := types.UnknownDomainBucket
		if len(et.Domains) > 0 {
			bucket = et.Domains[0]
		}
		stats.UnresolvedByDomain[bucket]++
	}
}
