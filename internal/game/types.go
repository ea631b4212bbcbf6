package game

import (
	"time"
)

// GameMode constants.
const (
	ModeAutoAdvance    = "auto"
	ModeHostControlled = "host"
)

// Session lifecycle states.
const (
	StatusWaiting   = "waiting"
	StatusPlaying   = "playing"
	StatusCompleted = "completed"
)

// Answer is one survey answer with its point value.
type Answer struct {
	Text   string `json:"text"`
	Weight int    `json:"weight"`
}

// Question holds an ordered answer board. Answers are immutable once the
// question is added to a session.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Session is the aggregate root for one play-through, addressed by its
// 4-character code. It is treated as an immutable value: every transition
// returns a new Session and the storage layer persists the returned value.
type Session struct {
	Code            string     `json:"code"`
	Mode            string     `json:"mode"`
	HostID          string     `json:"host_id"`
	Questions       []Question `json:"questions"`
	CurrentIndex    int        `json:"current_index"` // -1 before start
	Score           int        `json:"score"`
	Strikes         int        `json:"strikes"`
	MaxStrikes      int        `json:"max_strikes"`
	Status          string     `json:"status"`
	RevealedAnswers []string   `json:"revealed_answers"`
	CreatedAt       time.Time  `json:"created_at"`
	ExpiresAt       time.Time  `json:"expires_at"`

	// Version is the store's optimistic-concurrency token. Zero means the
	// session has never been persisted.
	Version int64 `json:"-"`
}

// CurrentQuestion returns the question in play, or nil outside the playing
// state.
func (s *Session) CurrentQuestion() *Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// IsRevealed reports whether an answer text is already on the board for the
// current question. Comparison is exact; fuzzy matching happens before this.
func (s *Session) IsRevealed(text string) bool {
	for _, revealed := range s.RevealedAnswers {
		if revealed == text {
			return true
		}
	}
	return false
}

// Expired reports whether the session is past its TTL. Expiry is advisory
// cleanup: reads of an expired-but-unswept session still succeed.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// Clone returns a deep copy so transitions never alias the caller's value.
func (s Session) Clone() Session {
	out := s
	if s.Questions != nil {
		out.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			q.Answers = append([]Answer(nil), q.Answers...)
			out.Questions[i] = q
		}
	}
	out.RevealedAnswers = append([]string(nil), s.RevealedAnswers...)
	return out
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
