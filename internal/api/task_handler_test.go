package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/mocks"
)

func newTaskHandlerForTest(taskStore *mocks.MockTaskStore) *TaskHandler {
	return NewTaskHandler(taskStore, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTaskRequest builds a request carrying the authenticated user ID and,
// when pathID is non-empty, a chi route context with the id parameter.
func newTaskRequest(
	t *testing.T,
	method, target string,
	userID uuid.UUID,
	pathID string,
	payload interface{},
) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(payloadBytes)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	if pathID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", pathID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if userID != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
	}

	return req
}

func seedTask(store *mocks.MockTaskStore, owner uuid.UUID, title string) *domain.Task {
	task, err := domain.NewTask(owner, title, "", "", "", nil)
	if err != nil {
		panic(err)
	}
	store.Tasks[task.ID] = task
	return task
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name        string
		payload     map[string]interface{}
		wantStatus  int
		wantMessage string
	}{
		{
			name: "valid task with defaults",
			payload: map[string]interface{}{
				"title": "Write report",
			},
			wantStatus:  http.StatusCreated,
			wantMessage: "Task created",
		},
		{
			name: "explicit status and priority",
			payload: map[string]interface{}{
				"title":    "Review PR",
				"status":   "in-progress",
				"priority": "high",
			},
			wantStatus:  http.StatusCreated,
			wantMessage: "Task created",
		},
		{
			name: "missing title",
			payload: map[string]interface{}{
				"description": "no title here",
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Title is required",
		},
		{
			name: "invalid status",
			payload: map[string]interface{}{
				"title":  "Bad status",
				"status": "done",
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid task status",
		},
		{
			name: "invalid priority",
			payload: map[string]interface{}{
				"title":    "Bad priority",
				"priority": "urgent",
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid task priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskStore := mocks.NewMockTaskStore()
			handler := newTaskHandlerForTest(taskStore)

			req := newTaskRequest(t, "POST", "/api/tasks", userID, "", tt.payload)
			recorder := httptest.NewRecorder()
			handler.Create(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
			assert.Equal(t, tt.wantMessage, body["message"])

			if tt.wantStatus == http.StatusCreated {
				data, ok := body["data"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, tt.payload["title"], data["title"])
				assert.Equal(t, userID.String(), data["createdBy"])

				wantStatus, present := tt.payload["status"]
				if !present {
					wantStatus = "pending"
				}
				assert.Equal(t, wantStatus, data["status"])

				wantPriority, present := tt.payload["priority"]
				if !present {
					wantPriority = "medium"
				}
				assert.Equal(t, wantPriority, data["priority"])

				assert.Len(t, taskStore.Tasks, 1)
			} else {
				assert.Empty(t, taskStore.Tasks)
			}
		})
	}
}

func TestCreateTaskUnauthenticated(t *testing.T) {
	t.Parallel()

	handler := newTaskHandlerForTest(mocks.NewMockTaskStore())

	req := newTaskRequest(t, "POST", "/api/tasks", uuid.Nil, "", map[string]interface{}{
		"title": "Write report",
	})
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	otherUser := uuid.New()

	taskStore := mocks.NewMockTaskStore()
	for i := 0; i < 3; i++ {
		seedTask(taskStore, userID, fmt.Sprintf("mine %d", i))
	}
	seedTask(taskStore, otherUser, "not mine")

	handler := newTaskHandlerForTest(taskStore)

	req := newTaskRequest(t, "GET", "/api/tasks", userID, "", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp TaskListResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 3)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.Limit)
	assert.Equal(t, 1, resp.Pagination.TotalPages)

	for _, task := range resp.Data {
		assert.Equal(t, userID, task.CreatedBy)
	}
}

func TestListTasksPagination(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()
	for i := 0; i < 25; i++ {
		seedTask(taskStore, userID, fmt.Sprintf("task %02d", i))
	}

	handler := newTaskHandlerForTest(taskStore)

	req := newTaskRequest(t, "GET", "/api/tasks?page=3&limit=10", userID, "", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp TaskListResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Len(t, resp.Data, 5)
	assert.Equal(t, 25, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.Page)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestListTasksFilters(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskStore := mocks.NewMockTaskStore()

	pending := seedTask(taskStore, userID, "pending task")
	done := seedTask(taskStore, userID, "done task")
	done.Status = domain.TaskStatusCompleted

	handler := newTaskHandlerForTest(taskStore)

	req := newTaskRequest(t, "GET", "/api/tasks?status=completed", userID, "", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp TaskListResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, done.ID, resp.Data[0].ID)
	assert.NotEqual(t, pending.ID, resp.Data[0].ID)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestListTasksEmptyIsArray(t *testing.T) {
	t.Parallel()

	handler := newTaskHandlerForTest(mocks.NewMockTaskStore())

	req := newTaskRequest(t, "GET", "/api/tasks", uuid.New(), "", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"data":[]`)
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		taskStore := mocks.NewMockTaskStore()
		task := seedTask(taskStore, userID, "original title")
		task.Description = "original description"
		task.Priority = domain.TaskPriorityHigh

		handler := newTaskHandlerForTest(taskStore)

		req := newTaskRequest(t, "PUT", "/api/tasks/"+task.ID.String(), userID,
			task.ID.String(), map[string]interface{}{
				"title": "updated title",
			})
		recorder := httptest.NewRecorder()
		handler.Update(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		var body struct {
			Success bool         `json:"success"`
			Message string       `json:"message"`
			Data    *domain.Task `json:"data"`
		}
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
		assert.Equal(t, "Task updated", body.Message)
		assert.Equal(t, "updated title", body.Data.Title)
		assert.Equal(t, "original description", body.Data.Description)
		assert.Equal(t, domain.TaskPriorityHigh, body.Data.Priority)
	})

	t.Run("explicit empty description clears it", func(t *testing.T) {
		taskStore := mocks.NewMockTaskStore()
		task := seedTask(taskStore, userID, "title")
		task.Description = "to be cleared"

		handler := newTaskHandlerForTest(taskStore)

		req := newTaskRequest(t, "PUT", "/api/tasks/"+task.ID.String(), userID,
			task.ID.String(), map[string]interface{}{
				"description": "",
			})
		recorder := httptest.NewRecorder()
		handler.Update(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, taskStore.Tasks[task.ID].Description)
		assert.Equal(t, "title", taskStore.Tasks[task.ID].Title)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		taskStore := mocks.NewMockTaskStore()
		task := seedTask(taskStore, userID, "title")

		handler := newTaskHandlerForTest(taskStore)

		req := newTaskRequest(t, "PUT", "/api/tasks/"+task.ID.String(), userID,
			task.ID.String(), map[string]interface{}{
				"title": "",
			})
		recorder := httptest.NewRecorder()
		handler.Update(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "title", taskStore.Tasks[task.ID].Title)
	})

	t.Run("not owned task reads as not found", func(t *testing.T) {
		taskStore := mocks.NewMockTaskStore()
		task := seedTask(taskStore, uuid.New(), "someone else's task")

		handler := newTaskHandlerForTest(taskStore)

		req := newTaskRequest(t, "PUT", "/api/tasks/"+task.ID.String(), userID,
			task.ID.String(), map[string]interface{}{
				"title": "hijack attempt",
			})
		recorder := httptest.NewRecorder()
		handler.Update(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Task not found")
		assert.Equal(t, "someone else's task", taskStore.Tasks[task.ID].Title)
	})

	t.Run("malformed id", func(t *testing.T) {
		handler := newTaskHandlerForTest(mocks.NewMockTaskStore())

		req := newTaskRequest(t, "PUT", "/api/tasks/not-a-uuid", userID,
			"not-a-uuid", map[string]interface{}{
				"title": "whatever",
			})
		recorder := httptest.NewRecorder()
		handler.Update(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestUpdateTaskStatus(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name        string
		status      string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "valid transition",
			status:      "completed",
			wantStatus:  http.StatusOK,
			wantMessage: "Task status updated",
		},
		{
			name:        "missing status",
			status:      "",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Status is required",
		},
		{
			name:        "invalid status",
			status:      "done",
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid task status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskStore := mocks.NewMockTaskStore()
			task := seedTask(taskStore, userID, "task")

			handler := newTaskHandlerForTest(taskStore)

			req := newTaskRequest(t, "PATCH", "/api/tasks/"+task.ID.String()+"/status",
				userID, task.ID.String(), map[string]interface{}{
					"status": tt.status,
				})
			recorder := httptest.NewRecorder()
			handler.UpdateStatus(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.wantMessage)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, domain.TaskStatusCompleted, taskStore.Tasks[task.ID].Status)
			} else {
				assert.Equal(t, domain.TaskStatusPending, taskStore.Tasks[task.ID].Status)
			}
		})
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("owner can delete", func(t *testing.T) {
		taskStore := mocks.NewMockTaskStore()
		task := seedTask(taskStore, userID, "to delete")

		handler := newTaskHandlerForTest(taskStore)

		req := newTaskRequest(t, "DELETE", "/api/tasks/"+task.ID.String(), userID,
			task.ID.String(), nil)
		recorder := httptest.NewRecorder()
		handler.Delete(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Task deleted")
		assert.Empty(t, taskStore.Tasks)
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		taskStore := mocks.NewMockTaskStore()
		task := seedTask(taskStore, uuid.New(), "not mine")

		handler := newTaskHandlerForTest(taskStore)

		req := newTaskRequest(t, "DELETE", "/api/tasks/"+task.ID.String(), userID,
			task.ID.String(), nil)
		recorder := httptest.NewRecorder()
		handler.Delete(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Len(t, taskStore.Tasks, 1)
	})

	t.Run("absent task gets not found", func(t *testing.T) {
		handler := newTaskHandlerForTest(mocks.NewMockTaskStore())

		missing := uuid.New().String()
		req := newTaskRequest(t, "DELETE", "/api/tasks/"+missing, userID, missing, nil)
		recorder := httptest.NewRecorder()
		handler.Delete(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestParseTaskListOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		wantSort  string
		wantDesc  bool
		wantPage  int
		wantLimit int
	}{
		{
			name:      "defaults",
			query:     "",
			wantSort:  "",
			wantDesc:  false,
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "due date ascending",
			query:     "sort=dueDate",
			wantSort:  "dueDate",
			wantDesc:  false,
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "due date descending",
			query:     "sort=dueDate&order=desc",
			wantSort:  "dueDate",
			wantDesc:  true,
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "unknown sort ignored",
			query:     "sort=title",
			wantSort:  "",
			wantDesc:  false,
			wantPage:  1,
			wantLimit: 10,
		},
		{
			name:      "explicit pagination",
			query:     "page=4&limit=25",
			wantSort:  "",
			wantDesc:  false,
			wantPage:  4,
			wantLimit: 25,
		},
		{
			name:      "invalid pagination falls back",
			query:     "page=0&limit=-5",
			wantSort:  "",
			wantDesc:  false,
			wantPage:  1,
			wantLimit: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/tasks?"+tt.query, nil)
			opts := parseTaskListOptions(req)

			assert.Equal(t, tt.wantSort, opts.SortField)
			assert.Equal(t, tt.wantDesc, opts.SortDesc)
			assert.Equal(t, tt.wantPage, opts.Page)
			assert.Equal(t, tt.wantLimit, opts.Limit)
		})
	}
}

func TestTaskJSONShape(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task, err := domain.NewTask(uuid.New(), "shape check", "desc",
		domain.TaskStatusPending, domain.TaskPriorityLow, &due)
	require.NoError(t, err)

	encoded, err := json.Marshal(task)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &fields))

	for _, key := range []string{"id", "title", "status", "priority", "dueDate", "createdBy", "createdAt", "updatedAt"} {
		assert.Contains(t, fields, key)
	}
}
