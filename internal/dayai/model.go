package dayai

import "time"

// RawAction is one upstream action record, validated into a fixed shape
// at the ingestion boundary so later pipeline stages never do dynamic
// property lookups.
type RawAction struct {
	ID            string
	Title         string
	Body          string
	Type          string
	Status        string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	Properties    ActionProperties
	Relationships []Relationship
}

// ActionProperties are the typed fields extracted from the upstream
// property bag. Absent or malformed properties decode to zero values.
type ActionProperties struct {
	SourceLabel string
	Priority    string
	MeetingDate *time.Time
	// Bullets is the structured bullet list, when the upstream record
	// carries one. A string-encoded JSON array is parsed here once;
	// parse failure yields an empty list.
	Bullets []string
}

// Relationship links an action to a contact or organization.
type Relationship struct {
	TargetID   string
	TargetType string
	Type       string
	TargetName string
}

// Relationship target object types as named upstream.
const (
	TargetContact          = "native_contact"
	TargetOrganization     = "native_organization"
	TargetMeetingRecording = "native_meetingrecording"
)

// Meeting is one upstream meeting recording.
type Meeting struct {
	ID        string
	Title     string
	CreatedAt *time.Time
	Attendees []string // email addresses
}

// MeetingContext is the lazily fetched context for one meeting.
type MeetingContext struct {
	MeetingID string     `json:"meeting_id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Notes     string     `json:"notes"`
	Attendees []string   `json:"attendees"`
	CreatedAt string     `json:"created_at,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
}
