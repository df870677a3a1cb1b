// Package clickup pushes triaged tasks into ClickUp. Creation is a
// single authenticated POST per task; batches pace themselves with a
// small inter-item delay to stay under the API's rate limits.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rgrier/triage/internal/types"
)

const (
	DefaultBaseURL = "https://api.clickup.com/api/v2"

	// DefaultItemDelay paces batch pushes.
	DefaultItemDelay = 350 * time.Millisecond
)

// Client is a minimal ClickUp API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	itemDelay  time.Duration
	now        func() time.Time
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	ItemDelay  time.Duration
}

// New returns a client. BaseURL and ItemDelay default when unset.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: cfg.HTTPClient,
		itemDelay:  cfg.ItemDelay,
		now:        time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.itemDelay == 0 {
		c.itemDelay = DefaultItemDelay
	}
	return c
}

// clickupPriority maps the triage priority enum to ClickUp's 1-4 scale.
var clickupPriority = map[types.Priority]int{
	types.PriorityUrgent: 1,
	types.PriorityHigh:   2,
	types.PriorityMedium: 3,
	types.PriorityLow:    4,
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	DueDate     int64  `json:"due_date,omitempty"` // Unix millis
}

type createTaskResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateTask creates one task in the given list and returns the ledger
// entry to record. Transient failures (5xx, network) are retried with
// exponential backoff; 4xx responses fail immediately.
func (c *Client) CreateTask(ctx context.Context, listID string, task *types.Task) (types.SyncEntry, error) {
	if listID == "" {
		return types.SyncEntry{}, fmt.Errorf("task %s has no routing list", task.ID)
	}

	body := createTaskRequest{
		Name:        task.Title,
		Description: pushDescription(task),
		Priority:    clickupPriority[task.Priority],
	}
	if task.DueDate != nil {
		body.DueDate = task.DueDate.UnixMilli()
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return types.SyncEntry{}, fmt.Errorf("encoding task %s: %w", task.ID, err)
	}

	var created createTaskResponse
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	err = backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/list/%s/task", c.baseURL, listID), bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("create task failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&created)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return types.SyncEntry{}, fmt.Errorf("clickup: %w", err)
	}

	return types.SyncEntry{
		RemoteTaskID: created.ID,
		RemoteURL:    created.URL,
		ListID:       listID,
		ClientDomain: task.ClientDomain,
		ClientName:   task.ClientName,
		SyncedAt:     c.now().UTC(),
		Title:        task.Title,
	}, nil
}

// PushResult is the per-task outcome of a batch push.
type PushResult struct {
	TaskID string           `json:"task_id"`
	Entry  *types.SyncEntry `json:"entry,omitempty"`
	Err    error            `json:"-"`
}

// PushTasks pushes tasks in order, pausing between items. One failed
// push does not stop the batch; each result carries its own error.
func (c *Client) PushTasks(ctx context.Context, tasks []*types.Task) []PushResult {
	results := make([]PushResult, 0, len(tasks))
	for i, task := range tasks {
		if i > 0 {
			select {
			case <-time.After(c.itemDelay):
			case <-ctx.Done():
				results = append(results, PushResult{TaskID: task.ID, Err: ctx.Err()})
				continue
			}
		}

		entry, err := c.CreateTask(ctx, task.ListID, task)
		if err != nil {
			results = append(results, PushResult{TaskID: task.ID, Err: err})
			continue
		}
		results = append(results, PushResult{TaskID: task.ID, Entry: &entry})
	}
	return results
}

// pushDescription renders the task body plus provenance for the remote
// task's description field.
func pushDescription(task *types.Task) string {
	var b strings.Builder
	b.WriteString(task.Description)

	if len(task.DescriptionPoints) > 0 && task.Description == "" {
		for _, p := range task.DescriptionPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	if task.MeetingTitle != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "From meeting: %s", task.MeetingTitle)
	}
	return b.String()
}
