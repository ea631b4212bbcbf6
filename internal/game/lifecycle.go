package game

import "strings"

// Lifecycle transitions complementary to guess processing. Like the state
// machine, each takes a session value and returns a new one; persistence is
// the caller's job.

// AddQuestion appends a question while the session is still waiting. The
// question id is assigned sequentially (1-based). Answers with blank text are
// dropped; at least one must survive.
func AddQuestion(s Session, text string, answers []Answer) (Session, error) {
	if s.Status != StatusWaiting {
		return s, validationError("status", "questions can only be added before the game starts")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return s, validationError("text", "question text is required")
	}

	kept := make([]Answer, 0, len(answers))
	for _, a := range answers {
		a.Text = strings.TrimSpace(a.Text)
		if a.Text == "" {
			continue
		}
		if a.Weight < 0 {
			return s, validationError("answers", "answer weight cannot be negative")
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return s, validationError("answers", "at least one answer is required")
	}

	next := s.Clone()
	next.Questions = append(next.Questions, Question{
		ID:      len(next.Questions) + 1,
		Text:    text,
		Answers: kept,
	})
	return next, nil
}

// Start moves a waiting session into play on its first question. Only the
// host may start, and at least one question must exist.
func Start(s Session, requesterID string) (Session, error) {
	if requesterID != s.HostID {
		return s, permissionError("only the host can start the game")
	}
	if s.Status != StatusWaiting {
		return s, validationError("status", "game has already started")
	}
	if len(s.Questions) == 0 {
		return s, validationError("questions", "cannot start a game with no questions")
	}

	next := s.Clone()
	next.Status = StatusPlaying
	next.CurrentIndex = 0
	next.RevealedAnswers = nil
	next.Score = 0
	next.Strikes = 0
	return next, nil
}

// RequestAdvance applies an externally triggered advance. In host-controlled
// mode only the host may advance; auto-advance inside guess processing does
// not go through this check. Advancing a completed session is a no-op that
// re-confirms completion.
func RequestAdvance(s Session, requesterID string) (Session, error) {
	if s.Status == StatusCompleted {
		return s.Clone(), nil
	}
	if s.Status == StatusWaiting {
		return s, validationError("status", "game has not started")
	}
	if s.Mode == ModeHostControlled && requesterID != s.HostID {
		return s, permissionError("only the host can advance questions")
	}
	return Advance(s.Clone()), nil
}
