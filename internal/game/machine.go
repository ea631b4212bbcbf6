package game

import (
	"fmt"
	"strings"
)

// Outcome describes the effect of one processed guess.
type Outcome struct {
	Correct         bool    `json:"correct"`
	MatchedAnswer   *Answer `json:"matched_answer,omitempty"`
	Message         string  `json:"message,omitempty"`
	PointsEarned    int     `json:"points_earned"`
	StrikesAdded    int     `json:"strikes_added"`
	ShouldAdvance   bool    `json:"should_advance"`
	GameCompleted   bool    `json:"game_completed"`
	AlreadyRevealed bool    `json:"already_revealed"`
}

// Machine owns the guess-processing rules: reveal de-duplication, scoring,
// strike accounting and mode-dependent auto-advance. All transitions are
// pure; the input session is never mutated.
type Machine struct {
	matcher *Matcher
}

// NewMachine builds a state machine using the given similarity threshold.
func NewMachine(threshold int) *Machine {
	return &Machine{matcher: NewMatcher(threshold)}
}

// ProcessGuess matches the guess against the current question and returns the
// outcome plus the next session value. A failed guess is a game event, not an
// error: this path never fails.
func (m *Machine) ProcessGuess(s Session, guessText string) (Outcome, Session) {
	next := s.Clone()

	// Completed sessions are terminal; a stray guess changes nothing.
	if next.Status == StatusCompleted {
		return Outcome{Message: "Game over", GameCompleted: true}, next
	}

	question := next.CurrentQuestion()
	if question == nil {
		return Outcome{Message: "No active question"}, next
	}

	matched := m.matcher.FindMatch(strings.TrimSpace(guessText), question.Answers)
	if matched != nil {
		return m.correctGuess(next, *matched, question)
	}
	return m.wrongGuess(next)
}

func (m *Machine) correctGuess(s Session, matched Answer, question *Question) (Outcome, Session) {
	if s.IsRevealed(matched.Text) {
		// A repeat guess is free, not penalized.
		return Outcome{Message: "Already revealed!", AlreadyRevealed: true}, s
	}

	s.RevealedAnswers = append(s.RevealedAnswers, matched.Text)
	s.Score += matched.Weight

	allRevealed := len(s.RevealedAnswers) == len(question.Answers)
	shouldAdvance := allRevealed && s.Mode == ModeAutoAdvance
	if shouldAdvance {
		s = Advance(s)
	}

	return Outcome{
		Correct:       true,
		MatchedAnswer: &matched,
		PointsEarned:  matched.Weight,
		ShouldAdvance: shouldAdvance,
		GameCompleted: s.Status == StatusCompleted,
	}, s
}

func (m *Machine) wrongGuess(s Session) (Outcome, Session) {
	s.Strikes++
	if s.Strikes > s.MaxStrikes {
		// Host-controlled games saturate rather than overflow while waiting
		// for an explicit advance.
		s.Strikes = s.MaxStrikes
	}

	maxReached := s.Strikes >= s.MaxStrikes
	shouldAdvance := maxReached && s.Mode == ModeAutoAdvance

	message := "Strike!"
	if shouldAdvance {
		message = fmt.Sprintf("%d strikes! Moving on...", s.MaxStrikes)
		s = Advance(s)
	}

	return Outcome{
		Message:       message,
		StrikesAdded:  1,
		ShouldAdvance: shouldAdvance,
		GameCompleted: s.Status == StatusCompleted,
	}, s
}

// Advance is the shared advance transition: move to the next question and
// reset per-question state. Calling it on a completed session is a no-op.
func Advance(s Session) Session {
	if s.Status == StatusCompleted {
		return s
	}

	s.CurrentIndex++
	s.RevealedAnswers = nil
	s.Strikes = 0

	if s.CurrentIndex >= len(s.Questions) {
		s.Status = StatusCompleted
	}
	return s
}
