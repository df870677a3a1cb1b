// Package store persists the triage data files: the task store, the
// append-only sync ledger, and the client directory. The task store is
// only ever replaced through a temp-file write followed by an atomic
// rename, so concurrent readers never observe a partial write.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rgrier/triage/internal/debug"
	"github.com/rgrier/triage/internal/types"
)

const (
	tasksFile     = "tasks.json"
	ledgerFile    = "sync-ledger.json"
	clientMapFile = "client-map.json"
	noiseFile     = "noise.yaml"
)

// ErrTaskNotFound is returned by task mutations for unknown ids.
var ErrTaskNotFound = errors.New("task not found")

// Files provides access to the data files in one directory.
type Files struct {
	dir string
}

// New returns a Files rooted at dir.
func New(dir string) *Files {
	return &Files{dir: dir}
}

// Dir returns the data directory.
func (f *Files) Dir() string {
	return f.dir
}

// NoiseRulesPath returns the path of the optional noise pattern file.
func (f *Files) NoiseRulesPath() string {
	return filepath.Join(f.dir, noiseFile)
}

// ReadStore loads the task store. An absent or corrupt file yields an
// empty default store; first run never fails.
func (f *Files) ReadStore() *types.Store {
	data, err := os.ReadFile(filepath.Join(f.dir, tasksFile))
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Logf("store: reading %s: %v\n", tasksFile, err)
		}
		return types.DefaultStore()
	}

	var s types.Store
	if err := json.Unmarshal(data, &s); err != nil {
		debug.Logf("store: corrupt %s, starting empty: %v\n", tasksFile, err)
		return types.DefaultStore()
	}
	if s.Tasks == nil {
		s.Tasks = []*types.Task{}
	}
	if s.Dismissed == nil {
		s.Dismissed = []string{}
	}
	return &s
}

// WriteStore atomically replaces the task store.
func (f *Files) WriteStore(s *types.Store) error {
	return f.writeJSON(tasksFile, s)
}

// ReadLedger loads the sync ledger. Absent or corrupt files yield an
// empty ledger.
func (f *Files) ReadLedger() types.SyncLedger {
	data, err := os.ReadFile(filepath.Join(f.dir, ledgerFile))
	if err != nil {
		return types.SyncLedger{}
	}
	var ledger types.SyncLedger
	if err := json.Unmarshal(data, &ledger); err != nil {
		debug.Logf("store: corrupt %s, starting empty: %v\n", ledgerFile, err)
		return types.SyncLedger{}
	}
	return ledger
}

// AppendLedgerEntry records one pushed task. Existing entries are never
// removed; re-pushing the same id overwrites its entry.
func (f *Files) AppendLedgerEntry(id string, entry types.SyncEntry) error {
	ledger := f.ReadLedger()
	ledger[id] = entry
	return f.writeJSON(ledgerFile, ledger)
}

// AddDismissed unions ids into the store's dismissed set. Unknown ids
// are accepted; pruning will drop them once their task is gone.
func (f *Files) AddDismissed(ids []string) error {
	s := f.ReadStore()
	present := make(map[string]struct{}, len(s.Dismissed))
	for _, d := range s.Dismissed {
		present[d] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			present[id] = struct{}{}
			s.Dismissed = append(s.Dismissed, id)
		}
	}
	return f.WriteStore(s)
}

// TaskEdits are the user-editable task fields. Nil means unchanged.
type TaskEdits struct {
	Title        *string
	Priority     *types.Priority
	DueDate      *time.Time
	ClearDueDate bool
}

// EditTask applies edits to one task and persists the store.
func (f *Files) EditTask(taskID string, edits TaskEdits) (*types.Task, error) {
	s := f.ReadStore()
	task := s.FindTask(taskID)
	if task == nil {
		return nil, fmt.Errorf("editing %s: %w", taskID, ErrTaskNotFound)
	}

	if edits.Title != nil {
		task.Title = *edits.Title
	}
	if edits.Priority != nil {
		if !edits.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority %q", *edits.Priority)
		}
		task.Priority = *edits.Priority
	}
	if edits.ClearDueDate {
		task.DueDate = nil
	} else if edits.DueDate != nil {
		task.DueDate = edits.DueDate
	}

	if err := f.WriteStore(s); err != nil {
		return nil, err
	}
	return task, nil
}

// writeJSON writes v to a temp file in the data dir and renames it over
// name. The data dir is created on first write.
func (f *Files) writeJSON(name string, v any) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	final := filepath.Join(f.dir, name)
	tmp, err := os.CreateTemp(f.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}

	if err := defaultRenameRetry(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
