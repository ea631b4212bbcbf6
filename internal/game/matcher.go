package game

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultMatchThreshold is the minimum 0-100 similarity score a guess must
// reach against its best answer to count as correct.
const DefaultMatchThreshold = 80

// Matcher fuzzy-matches free-text guesses against a question's answer board.
//
// Scoring uses the weighted composite ratio (WRatio): case-insensitive,
// token-order-insensitive, with partial/substring containment scoring high.
// Tie-break rule: when several answers share the maximal score, the first one
// in answer order wins. Matching is read-only and safe for concurrent use.
type Matcher struct {
	threshold int
}

// NewMatcher builds a matcher. A non-positive threshold falls back to the
// default.
func NewMatcher(threshold int) *Matcher {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &Matcher{threshold: threshold}
}

// FindMatch returns the best-scoring answer for the guess, or nil when the
// guess is blank, the board is empty, or nothing reaches the threshold.
func (m *Matcher) FindMatch(guess string, answers []Answer) *Answer {
	guess = strings.TrimSpace(guess)
	if guess == "" || len(answers) == 0 {
		return nil
	}

	best := -1
	bestScore := 0
	for i, a := range answers {
		score := fuzzy.WRatio(guess, a.Text)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < m.threshold {
		return nil
	}
	matched := answers[best]
	return &matched
}
