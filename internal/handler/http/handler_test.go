package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debate-arena/internal/detector"
	"debate-arena/internal/domain"
	"debate-arena/internal/dto"
	httphandler "debate-arena/internal/handler/http"
	"debate-arena/internal/infra/persistence/memory"
	"debate-arena/internal/middleware"
	"debate-arena/internal/oracle"
	"debate-arena/internal/service"
)

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, dto.Event) {}
func (nopBroadcaster) SendToUser(string, string, dto.Event) {}

type humanDetector struct{}

func (humanDetector) Detect(context.Context, string) (detector.Result, error) {
	return detector.Result{Reasons: []string{}}, nil
}

type switchScorer struct{ fail bool }

func (s *switchScorer) Score(context.Context, oracle.Request) (oracle.Assessment, error) {
	if s.fail {
		return oracle.Assessment{}, errors.New("oracle timeout")
	}
	c := domain.Criteria{Clarity: 7, Relevance: 7, Logic: 7, Evidence: 7, Persuasiveness: 7, Rebuttal: 7}
	return oracle.Assessment{Criteria: c, Feedback: "solid"}, nil
}

type fixture struct {
	router *gin.Engine
	scorer *switchScorer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	store.PutRoom(domain.Room{ID: "r1", Topic: "Homework should be abolished", CreatorID: "host", IsActive: true})
	var b nopBroadcaster
	scorer := &switchScorer{}

	registry := service.NewRoomRegistry(store.RoomRepository(), store.EvaluationRepository(), store.ResultRepository())
	lifecycle := service.NewLifecycleService(registry, store.RoomRepository(), store.EvaluationRepository(), store.ResultRepository(), b, nil)
	stances := service.NewStanceService(registry, store.StanceRepository(), b)
	arguments := service.NewArgumentService(registry, store.StanceRepository(), store.EvaluationRepository(),
		store.StrikeRepository(), humanDetector{}, scorer, b, lifecycle, time.Second)
	messages := service.NewMessageService(registry, store.MessageRepository(), b, []string{"mod"})

	router := gin.New()
	fakeAuth := func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set("user_id", id)
			c.Set("username", "name-"+id)
		}
		c.Next()
	}
	httphandler.RegisterRoutes(router, httphandler.Handlers{
		Stance:   httphandler.NewStanceHandler(stances),
		Argument: httphandler.NewArgumentHandler(arguments, detector.NewHeuristic(detector.QueryThreshold), time.Second),
		Debate:   httphandler.NewDebateHandler(lifecycle, service.NewStandingsService(registry, b)),
		Message:  httphandler.NewMessageHandler(messages),
	}, fakeAuth, nil, middleware.RequireModerator(messages.IsModerator))

	return &fixture{router: router, scorer: scorer}
}

func (f *fixture) do(t *testing.T, method, path, user string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (f *fixture) argue(t *testing.T, user, team string, n int) {
	t.Helper()
	w, _ := f.do(t, http.MethodPost, "/api/save_user_stance", user, gin.H{"roomId": "r1", "stance": team})
	require.Contains(t, []int{http.StatusOK, http.StatusConflict}, w.Code)
	for i := 0; i < n; i++ {
		w, _ = f.do(t, http.MethodPost, "/evaluate", user, gin.H{"roomId": "r1", "team": team, "argument": "Kids need unstructured time to rest and play."})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestPing(t *testing.T) {
	w, body := newFixture(t).do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", body["message"])
}

func TestStanceEndpoints(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, http.MethodPost, "/api/get_user_stance", "u1", gin.H{"roomId": "r1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["stance"])

	w, _ = f.do(t, http.MethodPost, "/api/save_user_stance", "u1", gin.H{"roomId": "r1", "stance": "favor"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = f.do(t, http.MethodPost, "/api/save_user_stance", "u1", gin.H{"roomId": "r1", "stance": "against"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", body["code"])

	w, _ = f.do(t, http.MethodPost, "/api/save_user_stance", "u2", gin.H{"roomId": "r1", "stance": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/save_user_stance", "u2", gin.H{"roomId": "r1", "userId": "u1", "stance": "favor"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/save_user_stance", "", gin.H{"roomId": "r1", "stance": "favor"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = f.do(t, http.MethodPost, "/api/get_user_stance", "u2", gin.H{"roomId": "r1", "userId": "u1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "favor", body["stance"].(map[string]interface{})["stance"])
}

func TestEvaluateEndpoint(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodPost, "/evaluate", "u1", gin.H{"roomId": "r1", "team": "favor", "argument": "No stance yet, so this fails."})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.argue(t, "u1", "favor", 1)

	f.scorer.fail = true
	w, body := f.do(t, http.MethodPost, "/evaluate", "u1", gin.H{"roomId": "r1", "team": "favor", "argument": "Another point about free time."})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, true, body["retryable"])
	f.scorer.fail = false

	w, body = f.do(t, http.MethodGet, "/api/debate/r1/scoreboard", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	favor := body["standings"].(map[string]interface{})["favor"].(map[string]interface{})
	assert.Equal(t, float64(1), favor["argumentCount"], "a failed evaluation is not counted")
	assert.Equal(t, float64(42), favor["totalPoints"])

	w, body = f.do(t, http.MethodGet, "/api/debate/r1/standings", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	favor = body["standings"].(map[string]interface{})["favor"].(map[string]interface{})
	assert.Equal(t, []interface{}{"u1"}, favor["participants"])
}

func TestDebateLifecycleEndpoints(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodGet, "/api/debate/r1/results", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.argue(t, "f1", "favor", 3)
	f.argue(t, "a1", "against", 2)

	w, body := f.do(t, http.MethodPost, "/api/debate/r1/can-end", "f1", gin.H{"userId": "f1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["canEnd"])
	assert.Contains(t, body["reason"], "against")

	w, body = f.do(t, http.MethodPost, "/api/debate/r1/end", "f1", gin.H{"reason": "bored"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "not_eligible", body["code"])

	f.argue(t, "a1", "against", 1)
	w, body = f.do(t, http.MethodPost, "/api/debate/r1/end", "f1", gin.H{"reason": "done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "tie", body["winner"])

	w, again := f.do(t, http.MethodPost, "/api/debate/r1/end", "a1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body["stats"].(map[string]interface{})["calculatedAt"], again["stats"].(map[string]interface{})["calculatedAt"])

	w, body = f.do(t, http.MethodGet, "/api/debate/r1/status", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ended", body["status"])

	w, body = f.do(t, http.MethodGet, "/api/debate/r1/results", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tie", body["winner"])
	assert.NotNil(t, body["awards"].(map[string]interface{})["bestArgument"])

	w, _ = f.do(t, http.MethodPut, "/api/debate/r1/settings", "host", gin.H{"settings": gin.H{"minArgumentsPerTeam": 2, "winMarginThreshold": 5}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/debate/nope/status", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSettingsEndpoint(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodPut, "/api/debate/r1/settings", "host", gin.H{"settings": gin.H{"minArgumentsPerTeam": 0, "winMarginThreshold": 5}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPut, "/api/debate/r1/settings", "guest", gin.H{"settings": gin.H{"minArgumentsPerTeam": 1, "winMarginThreshold": 5}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := f.do(t, http.MethodPut, "/api/debate/r1/settings", "host", gin.H{"userId": "host", "settings": gin.H{"minArgumentsPerTeam": 1, "winMarginThreshold": 5}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestDetectAIEndpoint(t *testing.T) {
	f := newFixture(t)
	w, body := f.do(t, http.MethodPost, "/api/detect_ai", "u1", gin.H{"text": "short one"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["isAI"])
	assert.Equal(t, float64(0), body["confidence"])

	w, _ = f.do(t, http.MethodPost, "/api/detect_ai", "u1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessageEndpoints(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, http.MethodGet, "/api/rooms/r1/messages", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["messages"])

	w, _ = f.do(t, http.MethodPost, "/api/report_message", "u1", gin.H{"roomId": "r1", "messageId": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/moderation/rooms/r1/messages/ghost/delete", "u1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = f.do(t, http.MethodPost, "/api/moderation/rooms/r1/messages/ghost/delete", "mod", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["code"])
}
