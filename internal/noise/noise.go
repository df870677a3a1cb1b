// Package noise flags administrative, non-actionable action records so
// the UI can hide them by default. The pattern set is configuration: the
// compiled-in defaults can be replaced from a YAML file without code
// changes. The classifier is deliberately permissive; a missed noise
// record is cheaper than a hidden real task.
package noise

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the tunable pattern set, loadable from YAML.
type Rules struct {
	// TitlePatterns are case-insensitive regexes tested against the title.
	TitlePatterns []string `yaml:"title_patterns"`
	// DescriptionPrefixes mark a record as noise when the trimmed
	// description starts with one of them.
	DescriptionPrefixes []string `yaml:"description_prefixes"`
	// DescriptionPatterns are case-insensitive regexes tested against the
	// description body.
	DescriptionPatterns []string `yaml:"description_patterns"`
	// SourceTypes is the fixed set of noise source types.
	SourceTypes []string `yaml:"source_types"`
}

// DefaultRules returns the compiled-in pattern set.
func DefaultRules() Rules {
	return Rules{
		TitlePatterns: []string{
			`recap`,
			`^(?:send|share)\s+(?:meeting\s+)?(?:notes|summary)`,
			`^\S+\s+tasks$`,
		},
		DescriptionPrefixes: []string{
			"Completed -",
		},
		DescriptionPatterns: []string{
			`send(?:ing)?\s+(?:the\s+|a\s+)?(?:meeting\s+)?recap`,
		},
		SourceTypes: []string{
			"NUDGE",
			"SCHEDULE_MEETING",
		},
	}
}

// Classifier answers IsNoise for action records. Construct with New or
// Load; the zero value matches nothing.
type Classifier struct {
	titleRes    []*regexp.Regexp
	descRes     []*regexp.Regexp
	prefixes    []string
	sourceTypes map[string]struct{}
}

// New compiles a classifier from the given rules.
func New(rules Rules) (*Classifier, error) {
	c := &Classifier{
		prefixes:    rules.DescriptionPrefixes,
		sourceTypes: make(map[string]struct{}, len(rules.SourceTypes)),
	}
	for _, p := range rules.TitlePatterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("bad title pattern %q: %w", p, err)
		}
		c.titleRes = append(c.titleRes, re)
	}
	for _, p := range rules.DescriptionPatterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("bad description pattern %q: %w", p, err)
		}
		c.descRes = append(c.descRes, re)
	}
	for _, st := range rules.SourceTypes {
		c.sourceTypes[strings.ToUpper(st)] = struct{}{}
	}
	return c, nil
}

// MustDefault returns a classifier built from DefaultRules.
func MustDefault() *Classifier {
	c, err := New(DefaultRules())
	if err != nil {
		panic(err) // default rules are compile-checked by tests
	}
	return c
}

// Load reads rules from a YAML file at path, falling back to the
// defaults when the file does not exist.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(DefaultRules())
	}
	if err != nil {
		return nil, fmt.Errorf("reading noise rules: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing noise rules: %w", err)
	}
	return New(rules)
}

// IsNoise reports whether the record is administrative noise. Pure
// predicate, no I/O.
func (c *Classifier) IsNoise(title, description, sourceType string) bool {
	for _, re := range c.titleRes {
		if re.MatchString(title) {
			return true
		}
	}

	desc := strings.TrimSpace(description)
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(desc, prefix) {
			return true
		}
	}
	for _, re := range c.descRes {
		if re.MatchString(description) {
			return true
		}
	}

	if sourceType != "" {
		if _, ok := c.sourceTypes[strings.ToUpper(sourceType)]; ok {
			return true
		}
	}
	return false
}
