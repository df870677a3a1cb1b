// Package transform converts raw upstream action records into the
// normalized task shape. Transform is deterministic and side-effect
// free: the same record and own-domain always produce the same task.
package transform

import (
	"strings"

	"github.com/rgrier/triage/internal/dayai"
	"github.com/rgrier/triage/internal/noise"
	"github.com/rgrier/triage/internal/types"
)

// Canonical source types for known upstream action types. Anything else
// passes through uppercased.
var sourceTypeMap = map[string]string{
	"meeting_followup": "MEETING_RECORDING_FOLLOWUP",
	"email_response":   "EMAIL_RESPONSE",
	"support":          "SUPPORT",
	"followup":         "FOLLOWUP",
	"feature_request":  "FEATURE_REQUEST",
	"schedule_meeting": "SCHEDULE_MEETING",
	"nudge":            "NUDGE",
}

// Transform builds a task from one raw action. ownDomain is excluded
// from the extracted external domains; classifier computes the
// write-once noise flag.
func Transform(raw dayai.RawAction, ownDomain string, classifier *noise.Classifier) *types.Task {
	body := strings.TrimSpace(raw.Body)

	title := raw.Title
	if title == "" {
		title = "Untitled action"
	}

	sourceType := canonicalSourceType(raw.Type)

	task := &types.Task{
		ID:                raw.ID,
		Title:             title,
		Description:       body,
		DescriptionPoints: descriptionPoints(raw.Properties.Bullets, body),
		Priority:          types.NormalizePriority(raw.Properties.Priority),
		SourceType:        sourceType,
		SourceID:          raw.ID,
		SourceLabel:       raw.Properties.SourceLabel,
		MeetingDate:       raw.Properties.MeetingDate,
		CreatedAt:         raw.CreatedAt,
	}

	extractParties(task, raw.Relationships, ownDomain)

	// Fallback client guess: first external domain, local part title-cased.
	// Relationship order is whatever the upstream returned; acceptable as
	// long as the upstream order is stable.
	if task.ClientDomain == "" && len(task.Domains) > 0 {
		task.ClientDomain = task.Domains[0]
		task.ClientName = titleCaseLocalPart(task.ClientDomain)
	}

	// Meeting-sourced actions carry their recording as a relationship; no
	// date-proximity linking needed when the structured pointer exists.
	if sourceType == "MEETING_RECORDING_FOLLOWUP" {
		for _, rel := range raw.Relationships {
			if rel.TargetType == dayai.TargetMeetingRecording {
				task.MeetingID = rel.TargetID
				task.MeetingTitle = rel.TargetName
				break
			}
		}
	}

	task.IsFiltered = classifier.IsNoise(title, body, sourceType)
	return task
}

// descriptionPoints prefers the structured bullet list; otherwise it
// parses lines starting with "-" or "*" out of the free-text body.
func descriptionPoints(bullets []string, body string) []string {
	if len(bullets) > 0 {
		return bullets
	}

	var points []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			point := strings.TrimSpace(strings.TrimLeft(line, "-* "))
			if point != "" {
				points = append(points, point)
			}
		}
	}
	return points
}

// extractParties fills People, Domains, and the organization-derived
// client identity from the record's relationships. Domains are
// deduplicated and never include ownDomain; People keeps duplicates and
// order as delivered.
func extractParties(task *types.Task, rels []dayai.Relationship, ownDomain string) {
	seen := make(map[string]struct{})
	for _, rel := range rels {
		switch rel.TargetType {
		case dayai.TargetContact:
			if rel.TargetName != "" {
				task.People = append(task.People, rel.TargetName)
			}
			if domain := emailDomain(rel.TargetID); domain != "" && domain != ownDomain {
				if _, dup := seen[domain]; !dup {
					seen[domain] = struct{}{}
					task.Domains = append(task.Domains, domain)
				}
			}
		case dayai.TargetOrganization:
			// The org relationship's target id is the org's domain.
			if rel.TargetID == "" || rel.TargetID == ownDomain {
				continue
			}
			task.ClientDomain = rel.TargetID
			if rel.TargetName != "" {
				task.ClientName = rel.TargetName
			} else {
				task.ClientName = localPart(rel.TargetID)
			}
		}
	}
}

func canonicalSourceType(rawType string) string {
	if mapped, ok := sourceTypeMap[strings.ToLower(rawType)]; ok {
		return mapped
	}
	if rawType == "" {
		return "OTHER"
	}
	return strings.ToUpper(rawType)
}

func emailDomain(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return ""
	}
	return domain
}

// localPart returns the leading label of a domain ("acme" for "acme.com").
func localPart(domain string) string {
	name, _, _ := strings.Cut(domain, ".")
	return name
}

func titleCaseLocalPart(domain string) string {
	name := localPart(domain)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
