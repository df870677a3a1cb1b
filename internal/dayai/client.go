// Package dayai is a client for the Day.ai workspace-intelligence API.
// The API is exposed as JSON-RPC tool calls behind an OAuth refresh
// token flow. Fetches are best effort: a failed sub-query is logged and
// skipped rather than failing the whole call.
package dayai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/rgrier/triage/internal/debug"
)

const (
	DefaultBaseURL = "https://day.ai"

	mcpPath   = "/api/mcp"
	tokenPath = "/api/oauth"

	// Access tokens are refreshed this long before their expiry.
	tokenExpiryBuffer = 60 * time.Second

	// Fallback token lifetime when the token response omits expires_in.
	defaultTokenLifetime = 3300 * time.Second

	actionFetchLimit  = 100
	meetingFetchLimit = 50
)

// Statuses fetched by FetchActions, each as its own sub-query.
var actionStatuses = []string{"UNREAD", "READ", "IN_PROGRESS"}

// Config configures a Client.
type Config struct {
	BaseURL      string
	ClientID     string
	RefreshToken string
	HTTPClient   *http.Client
}

// Client talks to the upstream API. Safe for concurrent use.
type Client struct {
	baseURL      string
	clientID     string
	refreshToken string
	httpClient   *http.Client
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// New returns a client for the given config. BaseURL defaults to the
// production endpoint, HTTPClient to a 30s-timeout client.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		refreshToken: cfg.RefreshToken,
		httpClient:   cfg.HTTPClient,
		now:          time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// token returns a valid access token, exchanging the refresh token when
// the cached one is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.tokenExpiry.After(c.now().Add(tokenExpiryBuffer)) {
		return c.accessToken, nil
	}

	if c.clientID == "" || c.refreshToken == "" {
		return "", fmt.Errorf("dayai: client id and refresh token are required")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"refresh_token": {c.refreshToken},
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}

	// Token exchange is retried on transient failures; 4xx responses are
	// permanent (a bad refresh token will not get better).
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	err := backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("token refresh failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&tokenResp)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return "", fmt.Errorf("dayai: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("dayai: token response had no access_token")
	}

	lifetime := defaultTokenLifetime
	if tokenResp.ExpiresIn > 0 {
		lifetime = time.Duration(tokenResp.ExpiresIn) * time.Second
	}
	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = c.now().Add(lifetime)
	return c.accessToken, nil
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments"`
}

type rpcResponse struct {
	Result *struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// call invokes one upstream tool and unmarshals its text payload into out.
func (c *Client) call(ctx context.Context, tool string, args any, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "tools/call",
		Params:  rpcParams{Name: tool, Arguments: args},
	})
	if err != nil {
		return fmt.Errorf("dayai: encoding %s request: %w", tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+mcpPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dayai: %s call: %w", tool, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dayai: %s call failed (%d)", tool, resp.StatusCode)
	}

	var rpc rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		return fmt.Errorf("dayai: decoding %s response: %w", tool, err)
	}
	if rpc.Error != nil {
		return fmt.Errorf("dayai: %s error: %s", tool, rpc.Error.Message)
	}
	if rpc.Result == nil || len(rpc.Result.Content) == 0 || rpc.Result.Content[0].Text == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(rpc.Result.Content[0].Text), out); err != nil {
		return fmt.Errorf("dayai: decoding %s payload: %w", tool, err)
	}
	return nil
}

// Upstream wire shapes. Converted to the package's exported types once,
// at decode time.
type wireObject struct {
	ObjectID      string             `json:"objectId"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Type          string             `json:"type"`
	CreatedAt     string             `json:"createdAt"`
	UpdatedAt     string             `json:"updatedAt"`
	Properties    map[string]any     `json:"properties"`
	Relationships []wireRelationship `json:"relationships"`
}

type wireRelationship struct {
	TargetObjectID         string         `json:"targetObjectId"`
	TargetObjectType       string         `json:"targetObjectType"`
	RelationshipType       string         `json:"relationshipType"`
	TargetObjectProperties map[string]any `json:"targetObjectProperties"`
}

type wireResults struct {
	Results []wireObject `json:"results"`
}

type searchQuery struct {
	ObjectType           string      `json:"objectType"`
	Filter               *wireFilter `json:"filter,omitempty"`
	TimeframeStart       string      `json:"timeframeStart,omitempty"`
	IncludeRelationships bool        `json:"includeRelationships"`
	Limit                int         `json:"limit"`
}

type wireFilter struct {
	PropertyFilters []propertyFilter `json:"propertyFilters"`
}

type propertyFilter struct {
	Property string `json:"property"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// FetchActions retrieves candidate action records for the lookback
// window, one sub-query per triage status. A failed sub-query is logged
// and skipped; the remaining statuses are still returned.
func (c *Client) FetchActions(ctx context.Context, lookbackDays int) ([]RawAction, error) {
	since := c.now().AddDate(0, 0, -lookbackDays).UTC().Format(time.RFC3339)

	var actions []RawAction
	for _, status := range actionStatuses {
		var payload map[string]wireResults
		err := c.call(ctx, "search_objects", map[string]any{
			"queries": []searchQuery{{
				ObjectType: "native_action",
				Filter: &wireFilter{PropertyFilters: []propertyFilter{
					{Property: "status", Operator: "eq", Value: status},
				}},
				TimeframeStart:       since,
				IncludeRelationships: true,
				Limit:                actionFetchLimit,
			}},
		}, &payload)
		if err != nil {
			debug.Logf("dayai: action fetch for status %s: %v\n", status, err)
			continue
		}

		for _, obj := range payload["native_action"].Results {
			actions = append(actions, decodeAction(obj, status))
		}
	}
	return actions, nil
}

func decodeAction(obj wireObject, status string) RawAction {
	a := RawAction{
		ID:        obj.ObjectID,
		Title:     obj.Title,
		Body:      obj.Description,
		Type:      obj.Type,
		Status:    status,
		CreatedAt: parseTime(obj.CreatedAt),
		UpdatedAt: parseTime(obj.UpdatedAt),
		Properties: ActionProperties{
			SourceLabel: stringProp(obj.Properties, "sourceLabel"),
			Priority:    stringProp(obj.Properties, "priority"),
			MeetingDate: parseTime(stringProp(obj.Properties, "meetingDate")),
			Bullets:     listProp(obj.Properties, "descriptionPoints"),
		},
	}
	for _, rel := range obj.Relationships {
		a.Relationships = append(a.Relationships, Relationship{
			TargetID:   rel.TargetObjectID,
			TargetType: rel.TargetObjectType,
			Type:       rel.RelationshipType,
			TargetName: stringProp(rel.TargetObjectProperties, "name"),
		})
	}
	return a
}

// FetchMeetings retrieves meeting recordings for the lookback window.
// Attendees are the contact emails related to the recording.
func (c *Client) FetchMeetings(ctx context.Context, lookbackDays int) ([]Meeting, error) {
	since := c.now().AddDate(0, 0, -lookbackDays).UTC().Format(time.RFC3339)

	var payload map[string]wireResults
	err := c.call(ctx, "search_objects", map[string]any{
		"queries": []searchQuery{{
			ObjectType:           TargetMeetingRecording,
			TimeframeStart:       since,
			IncludeRelationships: true,
			Limit:                meetingFetchLimit,
		}},
	}, &payload)
	if err != nil {
		return nil, err
	}

	var meetings []Meeting
	for _, obj := range payload[TargetMeetingRecording].Results {
		m := Meeting{
			ID:        obj.ObjectID,
			Title:     obj.Title,
			CreatedAt: parseTime(obj.CreatedAt),
		}
		for _, rel := range obj.Relationships {
			if rel.TargetObjectType == TargetContact && rel.TargetObjectID != "" {
				m.Attendees = append(m.Attendees, rel.TargetObjectID)
			}
		}
		meetings = append(meetings, m)
	}
	return meetings, nil
}

// FetchMeetingContext retrieves and parses the free-text context blob
// for one meeting. Returns nil (not an error) when the upstream has no
// context for the id.
func (c *Client) FetchMeetingContext(ctx context.Context, meetingID string) (*MeetingContext, error) {
	var payload struct {
		ContextString string `json:"contextString"`
	}
	err := c.call(ctx, "get_meeting_recording_context", map[string]any{
		"meetingRecordingId": meetingID,
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.ContextString == "" {
		return nil, nil
	}

	mc := parseMeetingContext(meetingID, payload.ContextString)
	mc.FetchedAt = c.now().UTC()
	return mc, nil
}

// parseMeetingContext splits the upstream context blob on its labeled
// lines (Title:, Participants:, Stored At:) with everything before the
// Transcript: marker serving as the summary.
func parseMeetingContext(meetingID, contextString string) *MeetingContext {
	mc := &MeetingContext{
		MeetingID: meetingID,
		Notes:     contextString,
	}

	for _, line := range strings.Split(contextString, "\n") {
		switch {
		case strings.HasPrefix(line, "Title:"):
			mc.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		case strings.HasPrefix(line, "Participants:"):
			for _, p := range strings.Split(strings.TrimPrefix(line, "Participants:"), ",") {
				if p = strings.TrimSpace(p); p != "" {
					mc.Attendees = append(mc.Attendees, p)
				}
			}
		case strings.HasPrefix(line, "Stored At:"):
			mc.CreatedAt = strings.TrimSpace(strings.TrimPrefix(line, "Stored At:"))
		}
	}

	if idx := strings.Index(contextString, "Transcript:"); idx > 0 {
		mc.Summary = strings.TrimSpace(contextString[:idx])
	} else if len(contextString) > 500 {
		mc.Summary = contextString[:500]
	} else {
		mc.Summary = contextString
	}
	return mc
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func stringProp(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	s, _ := props[key].(string)
	return s
}

// listProp extracts a string list property. Upstream sometimes encodes
// lists as JSON-in-a-string; both shapes decode here, and malformed
// input yields an empty list.
func listProp(props map[string]any, key string) []string {
	if props == nil {
		return nil
	}
	switch v := props[key].(type) {
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil
		}
		return out
	default:
		return nil
	}
}
