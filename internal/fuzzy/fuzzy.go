// Package fuzzy implements token-based similarity scoring between
// free-text names and candidate labels. It backs client and folder
// resolution: a client name guessed from an action record is matched
// against the directory's folder labels to rank assignment suggestions.
package fuzzy

import (
	"regexp"
	"sort"
	"strings"
)

var (
	camelRe   = regexp.MustCompile(`([a-z])([A-Z])`)
	acronymRe = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	splitRe   = regexp.MustCompile(`[\s\-_./]+`)
)

// Tokenize lowercases s and splits it on whitespace, hyphens, dots,
// underscores, slashes, and camelCase/ACRONYMWord boundaries. Tokens of
// length <= 1 are dropped.
func Tokenize(s string) []string {
	s = camelRe.ReplaceAllString(s, "$1 $2")
	s = acronymRe.ReplaceAllString(s, "$1 $2")

	var tokens []string
	for _, t := range splitRe.Split(s, -1) {
		t = strings.ToLower(t)
		if len(t) > 1 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

// Similarity scores how well queryTokens match targetTokens, in [0, 1].
//
// Each query token takes its best match across the target tokens: exact
// match scores 1.0, substring containment either direction scores 0.8,
// and near-misses within one edit per 4 characters score by distance.
// The summed score is normalized by the size of the token union, so a
// long target with little overlap is penalized even when every query
// token matches something.
func Similarity(queryTokens, targetTokens []string) float64 {
	if len(queryTokens) == 0 || len(targetTokens) == 0 {
		return 0
	}

	var matchScore float64
	for _, qt := range queryTokens {
		var best float64
		for _, tt := range targetTokens {
			if qt == tt {
				best = 1
				break
			}
			if strings.Contains(tt, qt) || strings.Contains(qt, tt) {
				if best < 0.8 {
					best = 0.8
				}
				continue
			}
			longest := max(len(qt), len(tt))
			maxDist := max(1, longest/4)
			if dist := levenshtein(qt, tt); dist <= maxDist {
				if s := 1 - float64(dist)/float64(longest); s > best {
					best = s
				}
			}
		}
		matchScore += best
	}

	union := make(map[string]struct{}, len(queryTokens)+len(targetTokens))
	for _, t := range queryTokens {
		union[t] = struct{}{}
	}
	for _, t := range targetTokens {
		union[t] = struct{}{}
	}
	return matchScore / float64(len(union))
}

// DefaultThreshold is the minimum score for Match to report a candidate.
const DefaultThreshold = 0.25

// Match is one ranked candidate from a fuzzy match.
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rank scores query against every candidate and returns the candidates
// at or above threshold, sorted by descending score. Index refers to
// the candidates slice.
func Rank(query string, candidates []string, threshold float64) []Match {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var results []Match
	for i, c := range candidates {
		score := Similarity(queryTokens, Tokenize(c))
		if score >= threshold {
			results = append(results, Match{Index: i, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}
