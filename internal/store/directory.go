package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rgrier/triage/internal/types"
)

// ReadClientMap loads the client directory. Unlike the task store this
// file is required configuration; its absence is an error.
func (f *Files) ReadClientMap() (*types.ClientMap, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, clientMapFile))
	if err != nil {
		return nil, fmt.Errorf("reading client directory: %w", err)
	}

	var cm types.ClientMap
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, fmt.Errorf("parsing client directory: %w", err)
	}
	if cm.Clients == nil {
		cm.Clients = map[string]*types.ClientEntry{}
	}
	return &cm, nil
}

// WriteClientMap atomically replaces the client directory.
func (f *Files) WriteClientMap(cm *types.ClientMap) error {
	return f.writeJSON(clientMapFile, cm)
}

// FolderOptions flattens the directory's spaces and folders into
// assignable routing targets, sorted by display label. List lookup
// prefers the folder-lists table, with client entries overriding where
// they carry more specific data.
func (f *Files) FolderOptions() ([]types.FolderOption, error) {
	cm, err := f.ReadClientMap()
	if err != nil {
		return nil, err
	}

	folderToList := make(map[string]types.ListInfo)
	for folderID, info := range cm.FolderLists {
		folderToList[folderID] = info
	}
	for _, client := range cm.Clients {
		if client.FolderID != "" && client.ListID != "" {
			folderToList[client.FolderID] = types.ListInfo{ListID: client.ListID, ListName: client.ListName}
		}
	}

	var options []types.FolderOption
	for spaceName, space := range cm.Spaces {
		for folderName, folderID := range space.Folders {
			info := folderToList[folderID]
			options = append(options, types.FolderOption{
				ListID:       info.ListID,
				FolderID:     folderID,
				FolderName:   folderName,
				SpaceName:    spaceName,
				ListName:     info.ListName,
				DisplayLabel: spaceName + " > " + folderName,
			})
		}
	}

	sort.Slice(options, func(i, j int) bool {
		return options[i].DisplayLabel < options[j].DisplayLabel
	})
	return options, nil
}

// AssignFolder routes a task to a folder and persists the store. When
// the task has a resolved client domain that is not yet in the
// directory, the assignment is written back as a new directory entry so
// future refreshes auto-resolve that domain. Write-back is write-once:
// an existing entry is never overwritten here, only by manual directory
// edits.
func (f *Files) AssignFolder(taskID, listID, folderID, folderName, spaceName string) (*types.Task, error) {
	s := f.ReadStore()
	task := s.FindTask(taskID)
	if task == nil {
		return nil, fmt.Errorf("assigning %s: %w", taskID, ErrTaskNotFound)
	}

	task.ListID = listID
	task.FolderName = folderName
	task.SpaceName = spaceName

	if err := f.WriteStore(s); err != nil {
		return nil, err
	}

	if task.ClientDomain != "" {
		cm, err := f.ReadClientMap()
		if err != nil {
			return nil, err
		}
		if _, exists := cm.Clients[task.ClientDomain]; !exists {
			name := task.ClientName
			if name == "" {
				name = folderName
			}
			cm.Clients[task.ClientDomain] = &types.ClientEntry{
				Name:     name,
				FolderID: folderID,
				ListID:   listID,
				ListName: "Projects",
				Space:    spaceName,
			}
			if err := f.WriteClientMap(cm); err != nil {
				return nil, err
			}
		}
	}

	return task, nil
}
