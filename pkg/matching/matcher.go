package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/campusops/rostersync/pkg/entities"
)

// Matcher proposes candidate existing people for an ambiguous person
// reference. The scoring function is a replaceable strategy; callers
// must only rely on candidates being ranked best first with a
// human-readable reason each.
type Matcher interface {
	Candidates(proposed entities.Person, existing []entities.Person) []Candidate
}

// ExactMatch deterministically resolves a name when exactly one
// existing person carries it. More than one match is ambiguous and
// returns ok=false, routing the reference through an Issue instead.
func ExactMatch(first, last string, existing []entities.Person) (entities.Person, bool) {
	var found []entities.Person
	for _, p := range existing {
		if strings.EqualFold(p.FirstName, first) && strings.EqualFold(p.LastName, last) {
			found = append(found, p)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return entities.Person{}, false
}

// FuzzyMatcher is the default Matcher: name-token overlap with
// Levenshtein-ranked fallback for near misses.
type FuzzyMatcher struct {
	// Limit caps the number of candidates returned. Zero means the
	// default of 5.
	Limit int

	// MinScore drops candidates scoring below the threshold.
	MinScore float64
}

// NewFuzzyMatcher creates a FuzzyMatcher with default settings.
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{Limit: 5, MinScore: 0.3}
}

// Candidates implements Matcher.
func (m *FuzzyMatcher) Candidates(proposed entities.Person, existing []entities.Person) []Candidate {
	limit := m.Limit
	if limit <= 0 {
		limit = 5
	}
	minScore := m.MinScore

	var out []Candidate
	for _, p := range existing {
		score, reason := m.score(proposed, p)
		if score < minScore {
			continue
		}
		out = append(out, Candidate{Person: p, Score: score, Reason: reason})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Person.FullName() < out[j].Person.FullName()
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// score rates one existing person against the proposed reference.
func (m *FuzzyMatcher) score(proposed, candidate entities.Person) (float64, string) {
	firstA := strings.ToLower(strings.TrimSpace(proposed.FirstName))
	lastA := strings.ToLower(strings.TrimSpace(proposed.LastName))
	firstB := strings.ToLower(strings.TrimSpace(candidate.FirstName))
	lastB := strings.ToLower(strings.TrimSpace(candidate.LastName))

	switch {
	case lastA == "" && firstA == "":
		return 0, ""

	case lastA == lastB && firstA == firstB:
		return 1.0, "exact name match"

	case lastA == lastB && firstA != "" && firstB != "" && firstA[0] == firstB[0]:
		return 0.9, fmt.Sprintf("same last name, first initial %q matches", string(firstA[0]))

	case lastA == lastB:
		return 0.7, "same last name"
	}

	// Near-miss last names: rank by normalized Levenshtein distance.
	if rank := fuzzy.RankMatchNormalizedFold(lastA, lastB); rank >= 0 {
		score := 0.6 - float64(rank)*0.1
		if score < 0 {
			score = 0
		}
		if firstA != "" && firstA == firstB {
			score += 0.15
		}
		return score, fmt.Sprintf("last name %q is close to %q", proposed.LastName, candidate.LastName)
	}

	// Token overlap catches swapped or compound names.
	if overlap := tokenOverlap(firstA+" "+lastA, firstB+" "+lastB); overlap > 0 {
		return 0.3 + 0.2*overlap, "name tokens overlap"
	}

	return 0, ""
}

// tokenOverlap returns the fraction of a's name tokens present in b.
func tokenOverlap(a, b string) float64 {
	aTokens := strings.Fields(a)
	if len(aTokens) == 0 {
		return 0
	}
	bTokens := make(map[string]bool)
	for _, tok := range strings.Fields(b) {
		bTokens[tok] = true
	}
	hits := 0
	for _, tok := range aTokens {
		if bTokens[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(aTokens))
}
