package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricGamesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feud_games_created_total",
		Help: "Number of game sessions created.",
	})

	metricGamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feud_games_completed_total",
		Help: "Number of game sessions that reached the completed state.",
	})

	metricGuesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feud_guesses_total",
		Help: "Guesses processed, labeled by result.",
	}, []string{"result"})

	metricGamesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feud_games_swept_total",
		Help: "Expired game sessions removed by the sweeper.",
	})
)

const (
	guessResultCorrect = "correct"
	guessResultStrike  = "strike"
	guessResultRepeat  = "repeat"
)

func guessResult(outcome Outcome) string {
	switch {
	case outcome.Correct:
		return guessResultCorrect
	case outcome.AlreadyRevealed:
		return guessResultRepeat
	default:
		return guessResultStrike
	}
}
