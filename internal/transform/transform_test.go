package transform

import (
	"reflect"
	"testing"
	"time"

	"github.com/rgrier/triage/internal/dayai"
	"github.com/rgrier/triage/internal/noise"
	"github.com/rgrier/triage/internal/types"
)

const ownDomain = "acme.com"

func classifier(t *testing.T) *noise.Classifier {
	t.Helper()
	c, err := noise.New(noise.DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestTransformBasics(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	raw := dayai.RawAction{
		ID:        "act-1",
		Title:     "Follow up on pricing",
		Body:      "Need numbers\n- confirm discount\n* send contract",
		Type:      "followup",
		CreatedAt: &created,
		Properties: dayai.ActionProperties{
			SourceLabel: "Pricing thread",
			Priority:    "high",
		},
	}

	task := Transform(raw, ownDomain, classifier(t))

	if task.ID != "act-1" || task.SourceID != "act-1" {
		t.Errorf("id = %q, source id = %q, want act-1", task.ID, task.SourceID)
	}
	if task.SourceType != "FOLLOWUP" {
		t.Errorf("source type = %q, want FOLLOWUP", task.SourceType)
	}
	if task.SourceLabel != "Pricing thread" {
		t.Errorf("source label = %q", task.SourceLabel)
	}
	if task.Priority != types.PriorityHigh {
		t.Errorf("priority = %q, want HIGH", task.Priority)
	}
	wantPoints := []string{"confirm discount", "send contract"}
	if !reflect.DeepEqual(task.DescriptionPoints, wantPoints) {
		t.Errorf("description points = %v, want %v", task.DescriptionPoints, wantPoints)
	}
	if task.CreatedAt == nil || !task.CreatedAt.Equal(created) {
		t.Errorf("created at = %v, want %v", task.CreatedAt, created)
	}
	if task.IsFiltered {
		t.Error("real follow-up should not be filtered")
	}
}

func TestTransformStructuredBulletsWin(t *testing.T) {
	raw := dayai.RawAction{
		ID:   "act-2",
		Body: "- parsed from body",
		Properties: dayai.ActionProperties{
			Bullets: []string{"structured one", "structured two"},
		},
	}

	task := Transform(raw, ownDomain, classifier(t))
	want := []string{"structured one", "structured two"}
	if !reflect.DeepEqual(task.DescriptionPoints, want) {
		t.Errorf("description points = %v, want structured bullets", task.DescriptionPoints)
	}
}

func TestTransformPriorityDefaults(t *testing.T) {
	tests := []struct {
		input string
		want  types.Priority
	}{
		{"", types.PriorityMedium},
		{"URGENT", types.PriorityUrgent},
		{"low", types.PriorityLow},
		{"whenever", types.PriorityMedium},
	}

	for _, tt := range tests {
		raw := dayai.RawAction{ID: "p", Properties: dayai.ActionProperties{Priority: tt.input}}
		if got := Transform(raw, ownDomain, classifier(t)).Priority; got != tt.want {
			t.Errorf("priority %q normalized to %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTransformParties(t *testing.T) {
	raw := dayai.RawAction{
		ID: "act-3",
		Relationships: []dayai.Relationship{
			{TargetType: dayai.TargetContact, TargetID: "pat@globex.io", TargetName: "Pat Doe"},
			{TargetType: dayai.TargetContact, TargetID: "sam@acme.com", TargetName: "Sam Roe"},
			{TargetType: dayai.TargetContact, TargetID: "lee@globex.io", TargetName: "Lee Poe"},
			{TargetType: dayai.TargetContact, TargetID: "kim@initech.dev"},
		},
	}

	task := Transform(raw, ownDomain, classifier(t))

	wantPeople := []string{"Pat Doe", "Sam Roe", "Lee Poe"}
	if !reflect.DeepEqual(task.People, wantPeople) {
		t.Errorf("people = %v, want %v", task.People, wantPeople)
	}
	// globex.io deduplicated, own domain excluded, order preserved.
	wantDomains := []string{"globex.io", "initech.dev"}
	if !reflect.DeepEqual(task.Domains, wantDomains) {
		t.Errorf("domains = %v, want %v", task.Domains, wantDomains)
	}
	// Fallback client: first external domain, title-cased local part.
	if task.ClientDomain != "globex.io" || task.ClientName != "Globex" {
		t.Errorf("client = %q/%q, want globex.io/Globex", task.ClientDomain, task.ClientName)
	}
}

func TestTransformOrgRelationshipWins(t *testing.T) {
	raw := dayai.RawAction{
		ID: "act-4",
		Relationships: []dayai.Relationship{
			{TargetType: dayai.TargetContact, TargetID: "pat@globex.io"},
			{TargetType: dayai.TargetOrganization, TargetID: "initech.dev", TargetName: "Initech"},
		},
	}

	task := Transform(raw, ownDomain, classifier(t))
	if task.ClientDomain != "initech.dev" || task.ClientName != "Initech" {
		t.Errorf("client = %q/%q, want initech.dev/Initech", task.ClientDomain, task.ClientName)
	}
}

func TestTransformOwnOrgIgnored(t *testing.T) {
	raw := dayai.RawAction{
		ID: "act-5",
		Relationships: []dayai.Relationship{
			{TargetType: dayai.TargetOrganization, TargetID: "acme.com", TargetName: "Acme"},
		},
	}

	task := Transform(raw, ownDomain, classifier(t))
	if task.ClientDomain != "" {
		t.Errorf("own org should not resolve as client, got %q", task.ClientDomain)
	}
}

func TestTransformMeetingPointer(t *testing.T) {
	raw := dayai.RawAction{
		ID:   "act-6",
		Type: "meeting_followup",
		Relationships: []dayai.Relationship{
			{TargetType: dayai.TargetMeetingRecording, TargetID: "mtg-9", TargetName: "Q3 Kickoff"},
		},
	}

	task := Transform(raw, ownDomain, classifier(t))
	if task.SourceType != "MEETING_RECORDING_FOLLOWUP" {
		t.Errorf("source type = %q", task.SourceType)
	}
	if task.MeetingID != "mtg-9" || task.MeetingTitle != "Q3 Kickoff" {
		t.Errorf("meeting linkage = %q/%q, want mtg-9/Q3 Kickoff", task.MeetingID, task.MeetingTitle)
	}
}

func TestTransformNoMeetingPointerLeftForLinker(t *testing.T) {
	raw := dayai.RawAction{ID: "act-7", Type: "email_response"}
	task := Transform(raw, ownDomain, classifier(t))
	if task.MeetingID != "" {
		t.Errorf("meeting id should stay empty for the linker, got %q", task.MeetingID)
	}
}

func TestTransformNoiseFlag(t *testing.T) {
	raw := dayai.RawAction{ID: "act-8", Title: "Recap for Acme Sync"}
	if task := Transform(raw, ownDomain, classifier(t)); !task.IsFiltered {
		t.Error("recap title should be flagged as noise")
	}
}

func TestTransformUntitled(t *testing.T) {
	task := Transform(dayai.RawAction{ID: "act-9"}, ownDomain, classifier(t))
	if task.Title != "Untitled action" {
		t.Errorf("title = %q, want Untitled action", task.Title)
	}
}

func TestTransformDeterministic(t *testing.T) {
	raw := dayai.RawAction{
		ID:    "act-10",
		Title: "Prepare deck for Globex",
		Body:  "- slide one\n- slide two",
		Relationships: []dayai.Relationship{
			{TargetType: dayai.TargetContact, TargetID: "pat@globex.io", TargetName: "Pat"},
		},
	}

	c := classifier(t)
	a := Transform(raw, ownDomain, c)
	b := Transform(raw, ownDomain, c)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("transform not deterministic:\n%+v\n%+v", a, b)
	}
}
