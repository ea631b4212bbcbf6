package game

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T) (*HTTPHandlers, *Service) {
	t.Helper()
	svc, _ := newTestService(newMemStore())
	return NewHTTPHandlers(svc, zerolog.New(io.Discard)), svc
}

func jsonRequest(method, target, code string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if code != "" {
		req.SetPathValue("code", code)
	}
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func setupGame(t *testing.T, svc *Service, mode string) *Session {
	t.Helper()
	ctx := context.Background()
	sess, err := svc.Create(ctx, mode)
	require.NoError(t, err)
	_, err = svc.AddQuestion(ctx, sess.Code, "Name a red fruit", []Answer{
		{Text: "Apple", Weight: 50},
		{Text: "Strawberry", Weight: 30},
	})
	require.NoError(t, err)
	return sess
}

func TestCreateGameHandler(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.CreateGame(rec, jsonRequest(http.MethodPost, "/api/games", "", map[string]string{"mode": "host"}))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[CreateGameResponse](t, rec)
	assert.Len(t, resp.Code, 4)
	assert.NotEmpty(t, resp.HostID)
	assert.Equal(t, ModeHostControlled, resp.Mode)
	assert.Equal(t, StatusWaiting, resp.Status)
}

func TestCreateGameHandlerRejectsUnknownMode(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.CreateGame(rec, jsonRequest(http.MethodPost, "/api/games", "", map[string]string{"mode": "tournament"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGameNotFound(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.GetGame(rec, jsonRequest(http.MethodGet, "/api/games/ZZZZ", "ZZZZ", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// The host sees the full board; players only see what has been revealed.
func TestGetGameViewFiltering(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeHostControlled)
	_, err := svc.Start(context.Background(), sess.Code, sess.HostID)
	require.NoError(t, err)
	_, _, err = svc.Guess(context.Background(), sess.Code, "apple")
	require.NoError(t, err)

	hostReq := jsonRequest(http.MethodGet, "/api/games/"+sess.Code, sess.Code, nil)
	hostReq.Header.Set(HostIDHeader, sess.HostID)
	rec := httptest.NewRecorder()
	h.GetGame(rec, hostReq)

	require.Equal(t, http.StatusOK, rec.Code)
	hostView := decodeBody[StateView](t, rec)
	require.NotNil(t, hostView.Question)
	assert.Len(t, hostView.Question.Answers, 2)

	rec = httptest.NewRecorder()
	h.GetGame(rec, jsonRequest(http.MethodGet, "/api/games/"+sess.Code, sess.Code, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	playerView := decodeBody[StateView](t, rec)
	require.NotNil(t, playerView.Question)
	assert.Equal(t, "Name a red fruit", playerView.Question.Text)
	assert.Empty(t, playerView.Question.Answers)
	require.Len(t, playerView.RevealedAnswers, 1)
	assert.Equal(t, "Apple", playerView.RevealedAnswers[0].Text)
	assert.Equal(t, 50, playerView.Score)
}

func TestAddQuestionRequiresHostHeader(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeAutoAdvance)

	body := map[string]any{"text": "Another question", "answers": []map[string]any{{"text": "A", "weight": 10}}}
	rec := httptest.NewRecorder()
	h.AddQuestion(rec, jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/questions", sess.Code, body))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/questions", sess.Code, body)
	req.Header.Set(HostIDHeader, sess.HostID)
	rec = httptest.NewRecorder()
	h.AddQuestion(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	view := decodeBody[StateView](t, rec)
	assert.Equal(t, 2, view.TotalQuestions)
}

func TestAddQuestionNullWeightCountsAsZero(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeAutoAdvance)

	body := map[string]any{"text": "Weightless", "answers": []map[string]any{{"text": "A"}}}
	req := jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/questions", sess.Code, body)
	req.Header.Set(HostIDHeader, sess.HostID)
	rec := httptest.NewRecorder()
	h.AddQuestion(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	stored, err := svc.Get(context.Background(), sess.Code)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Questions[1].Answers[0].Weight)
}

func TestStartGameHandlerPermissions(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeHostControlled)

	rec := httptest.NewRecorder()
	h.StartGame(rec, jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/start", sess.Code, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/start", sess.Code, nil)
	req.Header.Set(HostIDHeader, sess.HostID)
	rec = httptest.NewRecorder()
	h.StartGame(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[StateView](t, rec)
	assert.Equal(t, StatusPlaying, view.Status)
	require.NotNil(t, view.CurrentIndex)
	assert.Equal(t, 0, *view.CurrentIndex)
}

func TestGuessHandlerRejectsEmptyText(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeAutoAdvance)
	_, err := svc.Start(context.Background(), sess.Code, sess.HostID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Guess(rec, jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/guess", sess.Code, map[string]string{"text": "   "}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuessHandlerResponse(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeAutoAdvance)
	_, err := svc.Start(context.Background(), sess.Code, sess.HostID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Guess(rec, jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/guess", sess.Code, map[string]string{"text": "appl"}))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[GuessResponse](t, rec)
	assert.True(t, resp.Correct)
	require.NotNil(t, resp.Answer)
	assert.Equal(t, "Apple", resp.Answer.Text)
	assert.Equal(t, 50, resp.Score)
	assert.Equal(t, 0, resp.Strikes)
	assert.False(t, resp.Advanced)
	assert.Empty(t, resp.Status.Question.Answers)
}

func TestGuessHandlerBeforeStart(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeAutoAdvance)

	rec := httptest.NewRecorder()
	h.Guess(rec, jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/guess", sess.Code, map[string]string{"text": "apple"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNextQuestionHandler(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeHostControlled)
	_, err := svc.Start(context.Background(), sess.Code, sess.HostID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.NextQuestion(rec, jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/next", sess.Code, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := jsonRequest(http.MethodPost, "/api/games/"+sess.Code+"/next", sess.Code, nil)
	req.Header.Set(HostIDHeader, sess.HostID)
	rec = httptest.NewRecorder()
	h.NextQuestion(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeBody[StateView](t, rec)
	assert.True(t, view.Completed)
}

func TestDeleteGameHandler(t *testing.T) {
	h, svc := newTestHandlers(t)
	sess := setupGame(t, svc, ModeAutoAdvance)

	rec := httptest.NewRecorder()
	h.DeleteGame(rec, jsonRequest(http.MethodDelete, "/api/games/"+sess.Code, sess.Code, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := jsonRequest(http.MethodDelete, "/api/games/"+sess.Code, sess.Code, nil)
	req.Header.Set(HostIDHeader, sess.HostID)
	rec = httptest.NewRecorder()
	h.DeleteGame(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := svc.Get(context.Background(), sess.Code)
	assert.ErrorIs(t, err, ErrNotFound)
}
