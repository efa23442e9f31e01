package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// Task sort fields accepted by ListTasks. Anything else falls back to
// TaskSortCreatedAt.
const (
	TaskSortDueDate   = "dueDate"
	TaskSortCreatedAt = "createdAt"
)

// TaskListOptions describes filtering, sorting and pagination for ListTasks.
// Zero values mean "unset": empty filters match everything, Page and Limit
// default to 1 and 10.
type TaskListOptions struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority

	// SortField is one of the TaskSort constants. When empty the listing
	// orders by creation time, newest first. An explicit sort orders
	// ascending unless SortDesc is set.
	SortField string
	SortDesc  bool

	Page  int
	Limit int
}

// TaskStore defines the interface for task data persistence. Every
// operation that touches an existing task takes the owner's ID and scopes
// the underlying statement by it, so filter and mutation always execute
// as one atomic database call.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the given owner.
	// Returns ErrTaskNotFound if no task with that ID is owned by owner.
	GetByID(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching opts plus the total number
	// of matches before pagination.
	List(ctx context.Context, owner uuid.UUID, opts TaskListOptions) ([]*domain.Task, int, error)

	// Update applies the non-nil fields of patch to the task identified by
	// id and owner in a single statement, and returns the updated task.
	// Returns ErrTaskNotFound if no task with that ID is owned by owner.
	Update(ctx context.Context, id, owner uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// UpdateStatus atomically sets the task's status and returns the
	// updated task.
	// Returns ErrTaskNotFound if no task with that ID is owned by owner.
	UpdateStatus(ctx context.Context, id, owner uuid.UUID, status domain.TaskStatus) (*domain.Task, error)

	// Delete removes the task identified by id and owner.
	// Returns ErrTaskNotFound if no task with that ID is owned by owner.
	Delete(ctx context.Context, id, owner uuid.UUID) error
}
