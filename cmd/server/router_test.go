package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

// newTestApplication wires the router against mocks so routing and
// middleware can be exercised without a database.
func newTestApplication(userID uuid.UUID) *application {
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
			Auth: config.AuthConfig{
				RateLimitWindow: time.Minute,
				RateLimitMax:    100,
			},
		},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		userStore:        mocks.NewMockUserStore(),
		taskStore:        mocks.NewMockTaskStore(),
		jwtService:       &mocks.MockJWTService{Token: "test-token", Claims: &auth.Claims{UserID: userID}},
		passwordHasher:   &mocks.MockPasswordHasher{ShouldSucceed: true},
		passwordVerifier: &mocks.MockPasswordVerifier{ShouldSucceed: true},
	}
}

func TestRouterHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestApplication(uuid.New()).setupRouter()

	req := httptest.NewRequest("GET", "/", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"message":"Task Management API is running"}`, recorder.Body.String())
}

func TestRouterTasksRequireAuth(t *testing.T) {
	t.Parallel()

	router := newTestApplication(uuid.New()).setupRouter()

	routes := []struct {
		method string
		target string
	}{
		{"GET", "/api/tasks"},
		{"POST", "/api/tasks"},
		{"PUT", "/api/tasks/" + uuid.New().String()},
		{"DELETE", "/api/tasks/" + uuid.New().String()},
		{"PATCH", "/api/tasks/" + uuid.New().String() + "/status"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.target, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.target, nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

func TestRouterRegisterAndCreateTaskFlow(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	app := newTestApplication(userID)
	router := app.setupRouter()

	// Register
	registerBody, err := json.Marshal(map[string]string{
		"name":     "Grace Hopper",
		"email":    "grace@example.com",
		"password": "secret123",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(registerBody))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "test-token")

	// Create a task with the issued token
	taskBody, err := json.Marshal(map[string]string{"title": "first task"})
	require.NoError(t, err)

	req = httptest.NewRequest("POST", "/api/tasks", bytes.NewBuffer(taskBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Task created")

	// And list it back
	req = httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "first task")
	assert.Contains(t, recorder.Body.String(), `"total":1`)
}

func TestRouterAuthRateLimit(t *testing.T) {
	t.Parallel()

	app := newTestApplication(uuid.New())
	app.config.Auth.RateLimitMax = 2
	router := app.setupRouter()

	loginBody := []byte(`{"email":"grace@example.com","password":"secret123"}`)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(loginBody))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.1.1.1:4000"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Contains(t, last.Body.String(), "Too many requests, please try again later")
}
