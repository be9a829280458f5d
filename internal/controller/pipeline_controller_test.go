package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-permit-planner-be/internal/dto"
	"ai-permit-planner-be/internal/entity"
	"ai-permit-planner-be/internal/pkg/logger"
	"ai-permit-planner-be/internal/pkg/serverutils"
	"ai-permit-planner-be/internal/repository/contract"
	"ai-permit-planner-be/internal/repository/memory"
	"ai-permit-planner-be/internal/service"
	"ai-permit-planner-be/pkg/pipeline"
	"ai-permit-planner-be/pkg/stage"
	"ai-permit-planner-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

type discardPublisher struct{}

func (discardPublisher) Publish(ctx context.Context, payload []byte) error { return nil }

func newTestApp(t *testing.T, exec pipeline.Executor, repo contract.RunRepository) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	catalog := stage.MustDefault()
	sessions := memory.NewSessionRepository()
	runner := pipeline.NewRunner(exec, catalog, pipeline.WithSessionRegistry(sessions))
	svc := service.NewPipelineService(runner, repo, discardPublisher{}, logger.NewNopLogger())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewPipelineController(svc, logger.NewNopLogger()).RegisterRoutes(api)
	NewHealthController(sessions, stage.PipelineFull).RegisterRoutes(api)
	return app
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func newPost(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRunEndpoint(t *testing.T) {
	catalog := stage.MustDefault()
	app := newTestApp(t, pipeline.NewOfflineExecutor(catalog, 0), memory.NewRunRepository(time.Hour))

	req := newPost("/api/pipeline/v1/run", `{"text":"I want to open a coffee shop in Austin","requester_id":"body-user"}`)
	req.Header.Set("Authorization", bearer(t, "token-user"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body serverutils.BaseResponse[dto.RunPipelineResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "token-user", body.Data.RequesterId)
	assert.Equal(t, "offline", body.Data.Result["source"])
	assert.NotEmpty(t, body.Data.Debate)
}

func TestRunEndpointRejectsBadInput(t *testing.T) {
	app := newTestApp(t, pipeline.NewScriptedExecutor(), memory.NewRunRepository(time.Hour))

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing text", `{}`, fiber.StatusBadRequest},
		{"blank text", `{"text":"   "}`, fiber.StatusBadRequest},
		{"too long", `{"text":"` + strings.Repeat("a", 4001) + `"}`, fiber.StatusBadRequest},
		{"not json", `text=hello`, fiber.StatusBadRequest},
	}

	for _, path := range []string{"/api/pipeline/v1/run", "/api/pipeline/v1/stream"} {
		for _, tt := range tests {
			t.Run(path+" "+tt.name, func(t *testing.T) {
				resp, err := app.Test(newPost(path, tt.body), -1)
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
				assert.NotEqual(t, "text/event-stream", resp.Header.Get("Content-Type"))

				var body serverutils.BaseResponse[any]
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.False(t, body.Success)
			})
		}
	}
}

func TestRunEndpointSessionOfAnotherRequester(t *testing.T) {
	catalog := stage.MustDefault()
	repo := memory.NewRunRepository(time.Hour)
	require.NoError(t, repo.Save(context.Background(), &entity.RunRecord{
		SessionId:   "owned",
		RequesterId: "user-1",
		Result:      map[string]any{"summary": "mine"},
		CompletedAt: time.Now(),
	}))
	app := newTestApp(t, pipeline.NewOfflineExecutor(catalog, 0), repo)

	tests := []struct {
		name       string
		path       string
		auth       string
		wantStatus int
	}{
		{"other user run", "/api/pipeline/v1/run", bearer(t, "user-2"), fiber.StatusConflict},
		{"other user stream", "/api/pipeline/v1/stream", bearer(t, "user-2"), fiber.StatusConflict},
		{"anonymous run", "/api/pipeline/v1/run", "", fiber.StatusConflict},
		{"owner run", "/api/pipeline/v1/run", bearer(t, "user-1"), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newPost(tt.path, `{"text":"open a gym","session_id":"owned","persist":true}`)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	run, err := repo.FindBySessionId(context.Background(), "owned")
	require.NoError(t, err)
	assert.Equal(t, "user-1", run.RequesterId)
}

func TestRunEndpointAnonymousIgnoresBodyRequester(t *testing.T) {
	catalog := stage.MustDefault()
	app := newTestApp(t, pipeline.NewOfflineExecutor(catalog, 0), memory.NewRunRepository(time.Hour))

	resp, err := app.Test(newPost("/api/pipeline/v1/run", `{"text":"open a gym","requester_id":"user-1"}`), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body serverutils.BaseResponse[dto.RunPipelineResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Data.RequesterId)
}

func TestRunEndpointInvalidToken(t *testing.T) {
	app := newTestApp(t, pipeline.NewScriptedExecutor(), memory.NewRunRepository(time.Hour))

	req := newPost("/api/pipeline/v1/run", `{"text":"open a gym"}`)
	req.Header.Set("Authorization", "Bearer nonsense")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRunEndpointNoCompletion(t *testing.T) {
	exec := pipeline.NewScriptedExecutor(pipeline.Say("intake_classifier", "Reading the request."))
	app := newTestApp(t, exec, memory.NewRunRepository(time.Hour))

	resp, err := app.Test(newPost("/api/pipeline/v1/run", `{"text":"open a gym"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestStreamEndpoint(t *testing.T) {
	catalog := stage.MustDefault()
	app := newTestApp(t, pipeline.NewOfflineExecutor(catalog, 0), memory.NewRunRepository(time.Hour))

	resp, err := app.Test(newPost("/api/pipeline/v1/stream", `{"text":"open a bakery in Seattle","session_id":"sse-1"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames, err := stream.ReadFrames(resp.Body)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(frames), 3)

	assert.Equal(t, stream.EventMeta, frames[0].Event)
	var meta stream.Meta
	require.NoError(t, json.Unmarshal(frames[0].Data, &meta))
	assert.Equal(t, "sse-1", meta.SessionID)

	last := frames[len(frames)-1]
	assert.Equal(t, stream.EventComplete, last.Event)
	var complete pipeline.Complete
	require.NoError(t, json.Unmarshal(last.Data, &complete))
	assert.Equal(t, "sse-1", complete.SessionID)
	assert.NotEmpty(t, complete.Result)

	seen := map[string]bool{}
	for _, f := range frames {
		seen[f.Event] = true
		assert.NotEqual(t, stream.EventError, f.Event)
	}
	assert.True(t, seen[stream.EventProgress])
	assert.True(t, seen[stream.EventTyping])
	assert.True(t, seen[stream.EventDebate])
}

func TestStreamEndpointWithoutCompletion(t *testing.T) {
	exec := pipeline.NewScriptedExecutor(pipeline.Say("intake_classifier", "Reading the request."))
	app := newTestApp(t, exec, memory.NewRunRepository(time.Hour))

	resp, err := app.Test(newPost("/api/pipeline/v1/stream", `{"text":"open a gym"}`), -1)
	require.NoError(t, err)

	frames, err := stream.ReadFrames(resp.Body)
	require.NoError(t, err)
	for _, f := range frames {
		assert.NotEqual(t, stream.EventComplete, f.Event)
		assert.NotEqual(t, stream.EventError, f.Event)
	}
	assert.Equal(t, stream.EventMeta, frames[0].Event)
}

func TestGetRunEndpoint(t *testing.T) {
	repo := memory.NewRunRepository(time.Hour)
	require.NoError(t, repo.Save(context.Background(), &entity.RunRecord{
		SessionId:   "run-1",
		RequesterId: "user-1",
		Request:     "open a gym",
		Pipeline:    stage.PipelineFull,
		Result:      map[string]any{"summary": "done"},
		CompletedAt: time.Now(),
	}))
	require.NoError(t, repo.Save(context.Background(), &entity.RunRecord{
		SessionId:   "anon-1",
		Result:      map[string]any{"summary": "nobody's"},
		CompletedAt: time.Now(),
	}))
	app := newTestApp(t, pipeline.NewScriptedExecutor(), repo)

	tests := []struct {
		name       string
		path       string
		auth       string
		wantStatus int
	}{
		{"owner", "/api/pipeline/v1/runs/run-1", bearer(t, "user-1"), fiber.StatusOK},
		{"other requester", "/api/pipeline/v1/runs/run-1", bearer(t, "user-2"), fiber.StatusNotFound},
		{"unknown session", "/api/pipeline/v1/runs/nope", bearer(t, "user-1"), fiber.StatusNotFound},
		{"anonymous run", "/api/pipeline/v1/runs/anon-1", bearer(t, "user-1"), fiber.StatusNotFound},
		{"no token", "/api/pipeline/v1/runs/run-1", "", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusOK {
				var body serverutils.BaseResponse[dto.RunRecordResponse]
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "done", body.Data.Result["summary"])
			}
		})
	}
}

func TestListRunsEndpoint(t *testing.T) {
	repo := memory.NewRunRepository(time.Hour)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, repo.Save(context.Background(), &entity.RunRecord{SessionId: id, RequesterId: "user-1", CompletedAt: time.Now()}))
	}
	app := newTestApp(t, pipeline.NewScriptedExecutor(), repo)

	req := httptest.NewRequest("GET", "/api/pipeline/v1/runs?limit=1", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body serverutils.BaseResponse[[]dto.RunRecordResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)

	req = httptest.NewRequest("GET", "/api/pipeline/v1/runs?limit=500", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	app := newTestApp(t, pipeline.NewScriptedExecutor(), memory.NewRunRepository(time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/pipeline/v1/ws", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t, pipeline.NewScriptedExecutor(), memory.NewRunRepository(time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body serverutils.BaseResponse[map[string]any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, stage.PipelineFull, body.Data["pipeline"])
	assert.Equal(t, float64(0), body.Data["active_sessions"])
}
