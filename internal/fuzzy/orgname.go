package fuzzy

import (
	"regexp"
	"strings"
)

// Capitalized-noun patterns near trigger words. Used to infer an
// organization name from free text when the record carries no
// structured organization relationship.
var orgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:for|with|at)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
	regexp.MustCompile(`([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})\s+(?:needs?|wants?|requested|asked)`),
	regexp.MustCompile(`(?i)(?:from|re:?\s*)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+){0,2})`),
}

// Stoplist of common words, weekdays, and months that disqualify a
// candidate made up entirely of them.
var orgStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "about": {},
	"after": {}, "before": {}, "send": {}, "follow": {}, "check": {},
	"update": {}, "review": {}, "schedule": {}, "meeting": {}, "email": {},
	"call": {}, "recap": {}, "next": {}, "steps": {}, "action": {},
	"item": {}, "task": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {},
	"june": {}, "july": {}, "august": {}, "september": {}, "october": {},
	"november": {}, "december": {},
}

// ExtractOrgName scans title and description for a probable organization
// name near trigger words ("for/with/at X", "X needs/wants"). Returns ""
// when nothing plausible is found.
func ExtractOrgName(title, description string) string {
	text := title + " " + description

	for _, pattern := range orgPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if len(candidate) < 3 {
			continue
		}
		if allStopwords(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func allStopwords(candidate string) bool {
	for _, w := range strings.Fields(candidate) {
		if _, ok := orgStopwords[strings.ToLower(w)]; !ok {
			return false
		}
	}
	return true
}
