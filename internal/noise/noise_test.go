package noise

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsNoise(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		name        string
		title       string
		description string
		sourceType  string
		want        bool
	}{
		{
			name:  "recap title",
			title: "Recap for Acme Sync",
			want:  true,
		},
		{
			name:  "recap substring anywhere",
			title: "Weekly recap and notes",
			want:  true,
		},
		{
			name:  "send meeting notes",
			title: "Send meeting notes to team",
			want:  true,
		},
		{
			name:  "share summary",
			title: "Share summary with stakeholders",
			want:  true,
		},
		{
			name:  "bucket label title",
			title: "Danielle tasks",
			want:  true,
		},
		{
			name:        "completed prefix in description",
			title:       "Ping vendor",
			description: "Completed - closed out last week",
			want:        true,
		},
		{
			name:        "send recap mentioned in description",
			title:       "Wrap up",
			description: "Remember to send the meeting recap to everyone",
			want:        true,
		},
		{
			name:       "nudge source type",
			title:      "Check in with Pat",
			sourceType: "NUDGE",
			want:       true,
		},
		{
			name:       "schedule-meeting source type case-insensitive",
			title:      "Book time",
			sourceType: "schedule_meeting",
			want:       true,
		},
		{
			name:        "real follow-up is not noise",
			title:       "Follow up on pricing",
			description: "Need to confirm by Friday",
			want:        false,
		},
		{
			name:  "plural tasks mid-title is not a bucket label",
			title: "Review tasks assigned to the team",
			want:  false,
		},
		{
			name: "empty record",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsNoise(tt.title, tt.description, tt.sourceType); got != tt.want {
				t.Errorf("IsNoise(%q, %q, %q) = %v, want %v", tt.title, tt.description, tt.sourceType, got, tt.want)
			}
		})
	}
}

func TestDefaultRulesCompile(t *testing.T) {
	if _, err := New(DefaultRules()); err != nil {
		t.Fatalf("default rules failed to compile: %v", err)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "noise.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsNoise("Recap for Acme Sync", "", "") {
		t.Error("fallback classifier should use default rules")
	}
}

func TestLoadCustomRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.yaml")
	custom := `title_patterns:
  - "^ignore me"
source_types:
  - internal_ping
`
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !c.IsNoise("Ignore me please", "", "") {
		t.Error("custom title pattern should match")
	}
	if !c.IsNoise("anything", "", "INTERNAL_PING") {
		t.Error("custom source type should match")
	}
	// Custom rules replace the defaults entirely.
	if c.IsNoise("Recap for Acme Sync", "", "") {
		t.Error("default patterns should not apply once replaced")
	}
}

func TestLoadBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.yaml")
	if err := os.WriteFile(path, []byte("title_patterns:\n  - \"[\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on an invalid regex")
	}
}
