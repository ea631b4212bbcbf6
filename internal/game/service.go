package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceOptions carries gameplay defaults.
type ServiceOptions struct {
	TTL            time.Duration // session lifetime, default 24h
	MaxStrikes     int           // default 3
	MatchThreshold int           // default 80
}

const defaultSessionTTL = 24 * time.Hour

// Service orchestrates the session lifecycle over the store: every mutating
// call loads the current session, applies a pure transition, and writes the
// returned value back. Write conflicts are retried once against a fresh read.
type Service struct {
	store   Store
	codes   *CodeGenerator
	machine *Machine
	clock   Clock
	opts    ServiceOptions
	logger  zerolog.Logger
}

// NewService wires the lifecycle service.
func NewService(store Store, codes *CodeGenerator, clock Clock, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = defaultSessionTTL
	}
	if opts.MaxStrikes <= 0 {
		opts.MaxStrikes = 3
	}
	return &Service{
		store:   store,
		codes:   codes,
		machine: NewMachine(opts.MatchThreshold),
		clock:   clock,
		opts:    opts,
		logger:  logger.With().Str("component", "game_service").Logger(),
	}
}

// Create makes a new waiting session with a fresh code and a server-generated
// host identity. An empty mode defaults to auto-advance.
func (s *Service) Create(ctx context.Context, mode string) (*Session, error) {
	if mode == "" {
		mode = ModeAutoAdvance
	}
	if mode != ModeAutoAdvance && mode != ModeHostControlled {
		return nil, validationError("mode", "mode must be \"auto\" or \"host\"")
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sess := &Session{
		Code:         code,
		Mode:         mode,
		HostID:       uuid.NewString(),
		CurrentIndex: -1,
		MaxStrikes:   s.opts.MaxStrikes,
		Status:       StatusWaiting,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.opts.TTL),
	}

	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	metricGamesCreated.Inc()
	s.logger.Info().Str("code", code).Str("mode", mode).Msg("game created")
	return sess, nil
}

// Get loads a session by code.
func (s *Service) Get(ctx context.Context, code string) (*Session, error) {
	return s.store.Get(ctx, code)
}

// AddQuestion appends a question to a waiting session.
func (s *Service) AddQuestion(ctx context.Context, code, text string, answers []Answer) (*Session, error) {
	return s.update(ctx, code, func(cur Session) (Session, error) {
		return AddQuestion(cur, text, answers)
	})
}

// Start begins play on the first question.
func (s *Service) Start(ctx context.Context, code, requesterID string) (*Session, error) {
	sess, err := s.update(ctx, code, func(cur Session) (Session, error) {
		return Start(cur, requesterID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("code", sess.Code).Int("questions", len(sess.Questions)).Msg("game started")
	return sess, nil
}

// Advance moves to the next question on behalf of an external caller.
func (s *Service) Advance(ctx context.Context, code, requesterID string) (*Session, error) {
	var wasCompleted bool
	sess, err := s.update(ctx, code, func(cur Session) (Session, error) {
		wasCompleted = cur.Status == StatusCompleted
		return RequestAdvance(cur, requesterID)
	})
	if err != nil {
		return nil, err
	}
	if !wasCompleted && sess.Status == StatusCompleted {
		metricGamesCompleted.Inc()
	}
	return sess, nil
}

// Guess processes one guess against the playing session and persists the
// resulting state.
func (s *Service) Guess(ctx context.Context, code, guessText string) (*Outcome, *Session, error) {
	var outcome Outcome
	sess, err := s.update(ctx, code, func(cur Session) (Session, error) {
		switch cur.Status {
		case StatusWaiting:
			return cur, validationError("status", "game has not started")
		case StatusCompleted:
			return cur, validationError("status", "game is already completed")
		}

		var next Session
		outcome, next = s.machine.ProcessGuess(cur, guessText)
		return next, nil
	})
	if err != nil {
		return nil, nil, err
	}

	metricGuesses.WithLabelValues(guessResult(outcome)).Inc()
	if outcome.ShouldAdvance && outcome.GameCompleted {
		metricGamesCompleted.Inc()
	}
	return &outcome, sess, nil
}

// Delete removes a session. Only the host may delete before expiry.
func (s *Service) Delete(ctx context.Context, code, requesterID string) error {
	sess, err := s.store.Get(ctx, code)
	if err != nil {
		return err
	}
	if requesterID != sess.HostID {
		return permissionError("only the host can delete the game")
	}
	return s.store.Delete(ctx, sess.Code)
}

// CleanupExpired deletes sessions past their TTL and returns how many were
// removed.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()
	expired, err := s.store.ListExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, sess := range expired {
		if err := s.store.Delete(ctx, sess.Code); err != nil {
			s.logger.Warn().Err(err).Str("code", sess.Code).Msg("failed to delete expired game")
			continue
		}
		count++
	}
	if count > 0 {
		metricGamesSwept.Add(float64(count))
	}
	return count, nil
}

// update runs a pure transition inside a read-compute-write cycle, retrying
// once when a concurrent writer got in between.
func (s *Service) update(ctx context.Context, code string, fn func(Session) (Session, error)) (*Session, error) {
	for attempt := 0; ; attempt++ {
		cur, err := s.store.Get(ctx, code)
		if err != nil {
			return nil, err
		}

		next, err := fn(*cur)
		if err != nil {
			return nil, err
		}
		next.Version = cur.Version

		if err := s.store.Put(ctx, &next); err != nil {
			if errors.Is(err, ErrVersionConflict) && attempt == 0 {
				continue
			}
			return nil, err
		}
		return &next, nil
	}
}
