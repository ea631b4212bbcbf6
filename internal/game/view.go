package game

// Host/player view filtering. The host screen needs the full answer board for
// the current question; players only ever see question text plus what has
// been revealed so far.

// AnswerView is an answer as shown to clients.
type AnswerView struct {
	Text   string `json:"text"`
	Weight int    `json:"weight"`
}

// QuestionView is the current question scoped to the caller.
type QuestionView struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Answers []AnswerView `json:"answers,omitempty"`
}

// StateView is the polled game state payload.
type StateView struct {
	Code            string        `json:"code"`
	Mode            string        `json:"mode"`
	Status          string        `json:"status"`
	Question        *QuestionView `json:"question"`
	RevealedAnswers []AnswerView  `json:"revealed_answers"`
	Score           int           `json:"score"`
	Strikes         int           `json:"strikes"`
	MaxStrikes      int           `json:"max_strikes"`
	Completed       bool          `json:"completed"`
	CurrentIndex    *int          `json:"current_index"`
	TotalQuestions  int           `json:"total_questions"`
}

// HostView includes every answer of the current question.
func HostView(s *Session) StateView {
	return buildView(s, true)
}

// PlayerView hides unrevealed answers.
func PlayerView(s *Session) StateView {
	return buildView(s, false)
}

func buildView(s *Session, includeAnswers bool) StateView {
	view := StateView{
		Code:            s.Code,
		Mode:            s.Mode,
		Status:          s.Status,
		RevealedAnswers: []AnswerView{},
		Score:           s.Score,
		Strikes:         s.Strikes,
		MaxStrikes:      s.MaxStrikes,
		Completed:       s.Status == StatusCompleted,
		TotalQuestions:  len(s.Questions),
	}

	if s.CurrentIndex >= 0 {
		idx := s.CurrentIndex
		view.CurrentIndex = &idx
	}

	question := s.CurrentQuestion()
	if question == nil {
		return view
	}

	qv := &QuestionView{ID: question.ID, Text: question.Text}
	if includeAnswers {
		qv.Answers = make([]AnswerView, len(question.Answers))
		for i, a := range question.Answers {
			qv.Answers[i] = AnswerView(a)
		}
	}
	view.Question = qv

	// Revealed answers keep board order regardless of reveal order.
	for _, a := range question.Answers {
		if s.IsRevealed(a.Text) {
			view.RevealedAnswers = append(view.RevealedAnswers, AnswerView(a))
		}
	}
	return view
}
