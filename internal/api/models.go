package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// Common request/response structures

// Response is the standard success envelope. Message and Data are omitted
// when empty so DELETE responses stay as {success, message}.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// TaskListResponse is the envelope for GET /api/tasks. Data is always a
// JSON array, never null.
type TaskListResponse struct {
	Success    bool           `json:"success"`
	Data       []*domain.Task `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthData is the data object returned by both authentication endpoints.
type AuthData struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Token string    `json:"token"`
}

// CreateTaskRequest defines the payload for creating a task. Status and
// priority default server-side when omitted.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest defines the payload for partially updating a task.
// Pointer fields distinguish "not provided" from "provided as empty".
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskStatusRequest defines the payload for the status endpoint.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}
