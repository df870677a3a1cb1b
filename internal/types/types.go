// Package types defines core data structures for the triage pipeline.
package types

import (
	"strings"
	"time"
)

// Priority is the normalized 4-level task priority.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// NormalizePriority maps free-form priority input to the fixed enum.
// Unknown or empty input defaults to MEDIUM.
func NormalizePriority(s string) Priority {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityUrgent:
		return PriorityUrgent
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Valid reports whether p is one of the four enum values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a triaged action item. The ID is the upstream object id and is
// the natural key for deduplication; it never changes across refreshes.
type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	DescriptionPoints []string   `json:"description_points,omitempty"`
	Priority          Priority   `json:"priority"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	SourceType        string     `json:"source_type,omitempty"`
	SourceID          string     `json:"source_id,omitempty"`
	SourceLabel       string     `json:"source_label,omitempty"`
	People            []string   `json:"people,omitempty"`
	Domains           []string   `json:"domains,omitempty"`
	ClientDomain      string     `json:"client_domain,omitempty"`
	ClientName        string     `json:"client_name,omitempty"`

	// Downstream routing, empty until resolved or assigned.
	ListID     string `json:"list_id,omitempty"`
	FolderName string `json:"folder_name,omitempty"`
	SpaceName  string `json:"space_name,omitempty"`

	// Meeting linkage, empty when the action did not come from a meeting
	// and no same-day meeting was found.
	MeetingID        string     `json:"meeting_id,omitempty"`
	MeetingTitle     string     `json:"meeting_title,omitempty"`
	MeetingAttendees []string   `json:"meeting_attendees,omitempty"`
	MeetingDate      *time.Time `json:"meeting_date,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`

	// IsFiltered is the noise flag, computed once at transform time.
	IsFiltered bool `json:"is_filtered,omitempty"`
}

// ReferenceDate returns the task's aging reference: CreatedAt, falling
// back to MeetingDate. The second return is false when neither is set.
func (t *Task) ReferenceDate() (time.Time, bool) {
	if t.CreatedAt != nil {
		return *t.CreatedAt, true
	}
	if t.MeetingDate != nil {
		return *t.MeetingDate, true
	}
	return time.Time{}, false
}

// AgeDays returns whole days elapsed since the reference date, clamped
// at zero. Tasks with no reference date report zero.
func (t *Task) AgeDays(now time.Time) int {
	ref, ok := t.ReferenceDate()
	if !ok {
		return 0
	}
	days := int(now.Sub(ref).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// StoreVersion is the current tasks file schema version.
const StoreVersion = 1

// Store is the persisted task store (tasks.json).
type Store struct {
	Version     int        `json:"version"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
	Tasks       []*Task    `json:"tasks"`
	Dismissed   []string   `json:"dismissed"`
}

// DefaultStore returns an empty store. Used when the file is absent or
// unreadable so first run never fails.
func DefaultStore() *Store {
	return &Store{
		Version:   StoreVersion,
		Tasks:     []*Task{},
		Dismissed: []string{},
	}
}

// FindTask returns the task with the given id, or nil.
func (s *Store) FindTask(id string) *Task {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// IsDismissed reports whether the id is in the dismissed set.
func (s *Store) IsDismissed(id string) bool {
	for _, d := range s.Dismissed {
		if d == id {
			return true
		}
	}
	return false
}

// SyncEntry records one successful push into the downstream tracker.
// Entries are append-only; presence in the ledger is the sole source of
// truth for "pushed" status.
type SyncEntry struct {
	RemoteTaskID string    `json:"remote_task_id"`
	RemoteURL    string    `json:"remote_url,omitempty"`
	ListID       string    `json:"list_id,omitempty"`
	ClientDomain string    `json:"client_domain,omitempty"`
	ClientName   string    `json:"client_name,omitempty"`
	SyncedAt     time.Time `json:"synced_at"`
	Title        string    `json:"title,omitempty"`
}

// SyncLedger maps task id to its push record.
type SyncLedger map[string]SyncEntry

// SyncStatus is the computed triage state of a task.
type SyncStatus string

const (
	StatusPending   SyncStatus = "pending"
	StatusPushed    SyncStatus = "pushed"
	StatusDismissed SyncStatus = "dismissed"
)

// EnrichedTask is a task merged with its computed status and, when
// pushed, the ledger fields.
type EnrichedTask struct {
	Task
	SyncStatus   SyncStatus `json:"sync_status"`
	RemoteTaskID string     `json:"remote_task_id,omitempty"`
	RemoteURL    string     `json:"remote_url,omitempty"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"`
}

// Stats are pure aggregates over an enriched task list.
type Stats struct {
	Total              int            `json:"total"`
	Pending            int            `json:"pending"`
	Pushed             int            `json:"pushed"`
	Dismissed          int            `json:"dismissed"`
	UnresolvedClient   int            `json:"unresolved_client"`
	Overdue            int            `json:"overdue"`
	UnresolvedByDomain map[string]int `json:"unresolved_by_domain,omitempty"`
}

// UnknownDomainBucket groups unresolved tasks that carried no external
// domain at all.
const UnknownDomainBucket = "unknown"

// ClientEntry is one resolved client in the directory.
type ClientEntry struct {
	Name     string `json:"name"`
	FolderID string `json:"folder_id"`
	ListID   string `json:"list_id"`
	ListName string `json:"list_name,omitempty"`
	Space    string `json:"space,omitempty"`
}

// SpaceEntry maps folder display names to folder ids within one space.
type SpaceEntry struct {
	ID      string            `json:"id"`
	Folders map[string]string `json:"folders"`
}

// ListInfo is the list behind a folder.
type ListInfo struct {
	ListID   string `json:"list_id"`
	ListName string `json:"list_name"`
}

// ClientMap is the persisted client directory (client-map.json). It maps
// external email domains to known clients and their downstream routing.
type ClientMap struct {
	WorkspaceID  string                  `json:"workspace_id,omitempty"`
	OwnDomain    string                  `json:"own_domain"`
	DefaultSpace string                  `json:"default_space,omitempty"`
	Clients      map[string]*ClientEntry `json:"clients"`
	Spaces       map[string]*SpaceEntry  `json:"spaces,omitempty"`
	FolderLists  map[string]ListInfo     `json:"folder_lists,omitempty"`
}

// FolderOption is one assignable routing target, flattened from the
// directory's spaces and folders.
type FolderOption struct {
	ListID       string `json:"list_id,omitempty"`
	FolderID     string `json:"folder_id"`
	FolderName   string `json:"folder_name"`
	SpaceName    string `json:"space_name"`
	ListName     string `json:"list_name,omitempty"`
	DisplayLabel string `json:"display_label"`
}

// RefreshResult summarizes one completed refresh cycle.
type RefreshResult struct {
	Added       int       `json:"added"`
	Total       int       `json:"total"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
