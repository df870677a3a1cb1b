// Package refresh coordinates a full refresh cycle: rate-limit gate,
// upstream fetch, dedup against the store, transform, client
// resolution, meeting linking, pruning, and atomic persistence.
//
// Exactly one cycle runs at a time. The gate is an in-process
// last-success timestamp owned by the Orchestrator; that is enough
// because the store is file-based and single-instance.
package refresh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rgrier/triage/internal/dayai"
	"github.com/rgrier/triage/internal/noise"
	"github.com/rgrier/triage/internal/store"
	"github.com/rgrier/triage/internal/transform"
	"github.com/rgrier/triage/internal/types"
)

const (
	// DefaultCooldown is the minimum gap between refresh cycles. A request
	// inside the window is rejected outright, never queued.
	DefaultCooldown = time.Minute

	// DefaultLookbackDays bounds the upstream fetch window.
	DefaultLookbackDays = 14

	// DefaultRetention is how long dismissed tasks are kept before the
	// pruning pass drops them.
	DefaultRetention = 30 * 24 * time.Hour
)

// Source is the upstream action source boundary.
type Source interface {
	FetchActions(ctx context.Context, lookbackDays int) ([]dayai.RawAction, error)
	FetchMeetings(ctx context.Context, lookbackDays int) ([]dayai.Meeting, error)
}

// RateLimitedError is the normal rejected-state response for a refresh
// request inside the cool-down window. It is not a failure: Last holds
// the unchanged prior state.
type RateLimitedError struct {
	RetryAfter time.Duration
	Last       types.RefreshResult
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("refresh rate limited, retry in %ds", e.RetryAfterSeconds())
}

// RetryAfterSeconds returns the remaining cool-down, rounded up.
func (e *RateLimitedError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// Config configures an Orchestrator. Zero-value fields take defaults.
type Config struct {
	Cooldown     time.Duration
	LookbackDays int
	Retention    time.Duration
	Clock        func() time.Time
	Logger       *slog.Logger
}

// Orchestrator runs refresh cycles against one data directory.
type Orchestrator struct {
	files      *store.Files
	source     Source
	classifier *noise.Classifier
	logger     *slog.Logger

	cooldown     time.Duration
	lookbackDays int
	retention    time.Duration
	now          func() time.Time

	mu          sync.Mutex
	lastRefresh time.Time
}

// New returns an orchestrator over the given files and source.
func New(files *store.Files, source Source, classifier *noise.Classifier, cfg Config) *Orchestrator {
	o := &Orchestrator{
		files:        files,
		source:       source,
		classifier:   classifier,
		logger:       cfg.Logger,
		cooldown:     cfg.Cooldown,
		lookbackDays: cfg.LookbackDays,
		retention:    cfg.Retention,
		now:          cfg.Clock,
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.cooldown == 0 {
		o.cooldown = DefaultCooldown
	}
	if o.lookbackDays == 0 {
		o.lookbackDays = DefaultLookbackDays
	}
	if o.retention == 0 {
		o.retention = DefaultRetention
	}
	if o.now == nil {
		o.now = time.Now
	}
	// The cool-down window spans process restarts: the persisted
	// refresh stamp is the authoritative start of the window.
	if s := files.ReadStore(); s.RefreshedAt != nil {
		o.lastRefresh = *s.RefreshedAt
	}
	return o
}

// Refresh runs one cycle. Inside the cool-down window it returns the
// last known state wrapped in a *RateLimitedError without fetching. On
// any unrecoverable error nothing is persisted and the prior store
// remains authoritative.
func (o *Orchestrator) Refresh(ctx context.Context) (types.RefreshResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	if elapsed := now.Sub(o.lastRefresh); !o.lastRefresh.IsZero() && elapsed < o.cooldown {
		last := o.lastKnown(now)
		return last, &RateLimitedError{RetryAfter: o.cooldown - elapsed, Last: last}
	}

	cm, err := o.files.ReadClientMap()
	if err != nil {
		return types.RefreshResult{}, err
	}

	actions, meetings, err := o.fetch(ctx)
	if err != nil {
		return types.RefreshResult{}, err
	}

	s := o.files.ReadStore()
	existing := dedupeStore(s)

	meetingByDay := indexMeetingsByDay(meetings)

	added := 0
	for _, raw := range actions {
		if _, known := existing[raw.ID]; known {
			continue
		}

		task := transform.Transform(raw, cm.OwnDomain, o.classifier)
		o.resolveClient(task, cm)
		linkMeeting(task, meetingByDay)

		s.Tasks = append(s.Tasks, task)
		existing[raw.ID] = struct{}{}
		added++
	}

	pruned := o.prune(s, now)

	completed := o.now()
	s.RefreshedAt = &completed
	if err := o.files.WriteStore(s); err != nil {
		return types.RefreshResult{}, fmt.Errorf("persisting store: %w", err)
	}
	o.lastRefresh = now

	o.logger.Info("refresh complete",
		"fetched", len(actions),
		"added", added,
		"pruned", pruned,
		"total", len(s.Tasks))

	return types.RefreshResult{Added: added, Total: len(s.Tasks), RefreshedAt: completed}, nil
}

// fetch retrieves actions and meetings concurrently. A meetings failure
// is degraded to "no linking this cycle"; an actions failure aborts.
func (o *Orchestrator) fetch(ctx context.Context) ([]dayai.RawAction, []dayai.Meeting, error) {
	var (
		actions  []dayai.RawAction
		meetings []dayai.Meeting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actions, err = o.source.FetchActions(gctx, o.lookbackDays)
		if err != nil {
			return fmt.Errorf("fetching actions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ms, err := o.source.FetchMeetings(gctx, o.lookbackDays)
		if err != nil {
			o.logger.Warn("meeting fetch failed, skipping meeting linking", "error", err)
			return nil
		}
		meetings = ms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return actions, meetings, nil
}

// lastKnown builds a result from the persisted store without fetching.
func (o *Orchestrator) lastKnown(now time.Time) types.RefreshResult {
	s := o.files.ReadStore()
	result := types.RefreshResult{Total: len(s.Tasks), RefreshedAt: now}
	if s.RefreshedAt != nil {
		result.RefreshedAt = *s.RefreshedAt
	}
	return result
}

// dedupeStore collapses duplicate ids already present in the store
// (self-healing for stores written before dedup existed) and returns
// the id set.
func dedupeStore(s *types.Store) map[string]struct{} {
	existing := make(map[string]struct{}, len(s.Tasks))
	deduped := s.Tasks[:0]
	for _, t := range s.Tasks {
		if _, dup := existing[t.ID]; dup {
			continue
		}
		existing[t.ID] = struct{}{}
		deduped = append(deduped, t)
	}
	s.Tasks = deduped
	return existing
}

// resolveClient overwrites the transformer's provisional client guess
// with the directory's authoritative identity and routing when the
// domain is known. The directory always wins over the heuristic.
func (o *Orchestrator) resolveClient(task *types.Task, cm *types.ClientMap) {
	if task.ClientDomain == "" {
		return
	}
	client, ok := cm.Clients[task.ClientDomain]
	if !ok {
		return
	}
	task.ClientName = client.Name
	task.ListID = client.ListID
	task.FolderName = client.Name
	task.SpaceName = client.Space
}

// indexMeetingsByDay keys meetings by UTC calendar day. The first
// meeting seen for a day wins; there is deliberately no tie-break for
// multiple meetings on one day, which makes same-day linking imprecise
// when several meetings occurred.
func indexMeetingsByDay(meetings []dayai.Meeting) map[string]dayai.Meeting {
	byDay := make(map[string]dayai.Meeting, len(meetings))
	for _, m := range meetings {
		if m.CreatedAt == nil {
			continue
		}
		key := dayKey(*m.CreatedAt)
		if _, taken := byDay[key]; !taken {
			byDay[key] = m
		}
	}
	return byDay
}

// linkMeeting attaches a same-day meeting to tasks the transformer could
// not link structurally.
func linkMeeting(task *types.Task, byDay map[string]dayai.Meeting) {
	if task.MeetingID != "" || len(byDay) == 0 {
		return
	}
	ref, ok := task.ReferenceDate()
	if !ok {
		return
	}
	m, found := byDay[dayKey(ref)]
	if !found {
		return
	}
	task.MeetingID = m.ID
	task.MeetingTitle = m.Title
	task.MeetingAttendees = m.Attendees
	if task.MeetingDate == nil {
		task.MeetingDate = m.CreatedAt
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// prune drops dismissed tasks whose reference date is older than the
// retention window, then drops dismissed ids whose task no longer
// exists. Tasks with no reference date are kept indefinitely: the
// policy fails open rather than deleting what it cannot evaluate.
func (o *Orchestrator) prune(s *types.Store, now time.Time) int {
	cutoff := now.Add(-o.retention)
	dismissed := make(map[string]struct{}, len(s.Dismissed))
	for _, id := range s.Dismissed {
		dismissed[id] = struct{}{}
	}

	kept := s.Tasks[:0]
	pruned := 0
	for _, t := range s.Tasks {
		if _, isDismissed := dismissed[t.ID]; !isDismissed {
			kept = append(kept, t)
			continue
		}
		ref, ok := t.ReferenceDate()
		if !ok || ref.After(cutoff) {
			kept = append(kept, t)
			continue
		}
		pruned++
	}
	s.Tasks = kept

	remaining := make(map[string]struct{}, len(s.Tasks))
	for _, t := range s.Tasks {
		remaining[t.ID] = struct{}{}
	}
	keptIDs := s.Dismissed[:0]
	for _, id := range s.Dismissed {
		if _, ok := remaining[id]; ok {
			keptIDs = append(keptIDs, id)
		}
	}
	s.Dismissed = keptIDs

	return pruned
}
