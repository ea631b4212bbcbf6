package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	httperrors "github.com/feudhq/feud/pkg/http/errors"
)

// HostIDHeader carries the opaque host identity returned at create time. It
// is compared by equality only; no further trust semantics are attached.
const HostIDHeader = "X-Host-Id"

// HTTPHandlers provides the REST shell around the game service. The shell
// owns request validation, permission-header checks and host-vs-player view
// filtering; game rules live in the service and state machine.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for game endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "game_http").Logger(),
	}
}

// CreateGameRequest is the POST /api/games payload.
type CreateGameRequest struct {
	Mode string `json:"mode"`
}

// CreateGameResponse returns the code players join with and the host identity
// the creator must present on host-only calls. The host id is only ever sent
// here.
type CreateGameResponse struct {
	Code   string `json:"code"`
	HostID string `json:"host_id"`
	Mode   string `json:"mode"`
	Status string `json:"status"`
}

// AddQuestionRequest is the POST /api/games/{code}/questions payload. Weight
// is optional; null counts as zero.
type AddQuestionRequest struct {
	Text    string `json:"text"`
	Answers []struct {
		Text   string `json:"text"`
		Weight *int   `json:"weight"`
	} `json:"answers"`
}

// GuessRequest is the POST /api/games/{code}/guess payload.
type GuessRequest struct {
	Text string `json:"text"`
}

// GuessResponse mirrors the outcome plus the player-scoped state after the
// guess, so clients do not need a follow-up poll.
type GuessResponse struct {
	Correct  bool        `json:"correct"`
	Answer   *AnswerView `json:"answer,omitempty"`
	Message  string      `json:"message,omitempty"`
	Strikes  int         `json:"strikes"`
	Score    int         `json:"score"`
	Advanced bool        `json:"advanced"`
	Status   StateView   `json:"status"`
}

// CreateGame handles POST /api/games.
func (h *HTTPHandlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	sess, err := h.service.Create(r.Context(), req.Mode)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateGameResponse{
		Code:   sess.Code,
		HostID: sess.HostID,
		Mode:   sess.Mode,
		Status: sess.Status,
	})
}

// GetGame handles GET /api/games/{code}. Callers presenting the host identity
// get the full answer board; everyone else gets the player view.
func (h *HTTPHandlers) GetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	hostID := r.Header.Get(HostIDHeader)
	if hostID != "" && hostID == sess.HostID {
		h.respondJSON(w, http.StatusOK, HostView(sess))
		return
	}
	h.respondJSON(w, http.StatusOK, PlayerView(sess))
}

// AddQuestion handles POST /api/games/{code}/questions (host only).
func (h *HTTPHandlers) AddQuestion(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if !h.requireHost(w, r, code) {
		return
	}

	var req AddQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	answers := make([]Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		weight := 0
		if a.Weight != nil {
			weight = *a.Weight
		}
		answers = append(answers, Answer{Text: a.Text, Weight: weight})
	}

	sess, err := h.service.AddQuestion(r.Context(), code, req.Text, answers)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, HostView(sess))
}

// StartGame handles POST /api/games/{code}/start.
func (h *HTTPHandlers) StartGame(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Start(r.Context(), r.PathValue("code"), r.Header.Get(HostIDHeader))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, HostView(sess))
}

// NextQuestion handles POST /api/games/{code}/next.
func (h *HTTPHandlers) NextQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Advance(r.Context(), r.PathValue("code"), r.Header.Get(HostIDHeader))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, HostView(sess))
}

// Guess handles POST /api/games/{code}/guess. Empty guesses are rejected here
// and never reach the state machine.
func (h *HTTPHandlers) Guess(w http.ResponseWriter, r *http.Request) {
	var req GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	guess := strings.TrimSpace(req.Text)
	if guess == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "guess text is required", "text")
		return
	}

	outcome, sess, err := h.service.Guess(r.Context(), r.PathValue("code"), guess)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	resp := GuessResponse{
		Correct:  outcome.Correct,
		Message:  outcome.Message,
		Strikes:  sess.Strikes,
		Score:    sess.Score,
		Advanced: outcome.ShouldAdvance,
		Status:   PlayerView(sess),
	}
	if outcome.MatchedAnswer != nil {
		view := AnswerView(*outcome.MatchedAnswer)
		resp.Answer = &view
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// DeleteGame handles DELETE /api/games/{code} (host only).
func (h *HTTPHandlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("code"), r.Header.Get(HostIDHeader)); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireHost loads the session and checks the host header before host-only
// shell operations. Writes the error response itself on failure.
func (h *HTTPHandlers) requireHost(w http.ResponseWriter, r *http.Request, code string) bool {
	sess, err := h.service.Get(r.Context(), code)
	if err != nil {
		h.respondServiceError(w, err)
		return false
	}
	if r.Header.Get(HostIDHeader) != sess.HostID {
		httperrors.RespondForbidden(w, httperrors.ErrCodeNotHost, "Only the host can do that")
		return false
	}
	return true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	var pe *PermissionError
	switch {
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeGameNotFound, "Game not found")
	case errors.As(err, &ve):
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, ve.Message, ve.Field)
	case errors.As(err, &pe):
		httperrors.RespondForbidden(w, httperrors.ErrCodeNotHost, pe.Message)
	case errors.Is(err, ErrVersionConflict):
		httperrors.RespondConflict(w, httperrors.ErrCodeConflict, "Game was updated concurrently, try again")
	default:
		h.logger.Error().Err(err).Msg("unhandled service error")
		httperrors.RespondInternalError(w, "Internal error")
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
