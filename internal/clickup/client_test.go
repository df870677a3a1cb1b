package clickup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgrier/triage/internal/types"
)

func TestCreateTask(t *testing.T) {
	var gotAuth string
	var gotBody createTaskRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/lst-1/task", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(createTaskResponse{ID: "cu-1", URL: "https://app.clickup.com/t/cu-1"})
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Token: "tok-123"})
	task := &types.Task{
		ID:           "A1",
		Title:        "Send contract",
		Description:  "Final version",
		Priority:     types.PriorityUrgent,
		ListID:       "lst-1",
		ClientDomain: "globex.io",
		ClientName:   "Globex",
	}

	entry, err := c.CreateTask(context.Background(), task.ListID, task)
	require.NoError(t, err)

	assert.Equal(t, "tok-123", gotAuth)
	assert.Equal(t, "Send contract", gotBody.Name)
	assert.Equal(t, 1, gotBody.Priority)
	assert.Equal(t, "cu-1", entry.RemoteTaskID)
	assert.Equal(t, "https://app.clickup.com/t/cu-1", entry.RemoteURL)
	assert.Equal(t, "globex.io", entry.ClientDomain)
	assert.Equal(t, "Send contract", entry.Title)
}

func TestCreateTaskClientErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "bad list", http.StatusBadRequest)
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Token: "tok"})
	_, err := c.CreateTask(context.Background(), "lst-1", &types.Task{ID: "A1", Title: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestCreateTaskRetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "try later", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(createTaskResponse{ID: "cu-2", URL: "u"})
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Token: "tok"})
	entry, err := c.CreateTask(context.Background(), "lst-1", &types.Task{ID: "A1", Title: "x"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3, "server errors should be retried")
	assert.Equal(t, "cu-2", entry.RemoteTaskID)
}

func TestCreateTaskNoList(t *testing.T) {
	c := New(Config{Token: "tok"})
	_, err := c.CreateTask(context.Background(), "", &types.Task{ID: "A1"})
	assert.Error(t, err, "missing routing list must fail")
}

func TestPushTasksContinuesPastFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body createTaskRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.Name == "bad" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(createTaskResponse{ID: "cu-" + body.Name, URL: "u"})
	}))
	defer server.Close()

	c := New(Config{BaseURL: server.URL, Token: "tok", ItemDelay: time.Millisecond})
	tasks := []*types.Task{
		{ID: "A1", Title: "ok", ListID: "lst-1"},
		{ID: "A2", Title: "bad", ListID: "lst-1"},
		{ID: "A3", Title: "fine", ListID: "lst-1"},
	}

	results := c.PushTasks(context.Background(), tasks)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Entry)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err, "A3 should push despite A2 failing")
}

func TestPushDescriptionBulletsFallback(t *testing.T) {
	task := &types.Task{
		DescriptionPoints: []string{"one", "two"},
		MeetingTitle:      "Q3 Kickoff",
	}
	got := pushDescription(task)
	assert.Equal(t, "- one\n- two\n\n\nFrom meeting: Q3 Kickoff", got)
}
