package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetByIDFn      func(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error)
	ListFn         func(ctx context.Context, owner uuid.UUID, opts store.TaskListOptions) ([]*domain.Task, int, error)
	UpdateFn       func(ctx context.Context, id, owner uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	UpdateStatusFn func(ctx context.Context, id, owner uuid.UUID, status domain.TaskStatus) (*domain.Task, error)
	DeleteFn       func(ctx context.Context, id, owner uuid.UUID) error

	// Data for default implementation, keyed by task ID
	Tasks map[uuid.UUID]*domain.Task

	// Forced error for default implementations
	Error error
}

// Ensure MockTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.Error != nil {
		return m.Error
	}

	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, owner)
	}

	if m.Error != nil {
		return nil, m.Error
	}

	task, exists := m.Tasks[id]
	if !exists || task.CreatedBy != owner {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, owner uuid.UUID, opts store.TaskListOptions) ([]*domain.Task, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, owner, opts)
	}

	if m.Error != nil {
		return nil, 0, m.Error
	}

	var matched []*domain.Task
	for _, task := range m.Tasks {
		if task.CreatedBy != owner {
			continue
		}
		if opts.Status != "" && task.Status != opts.Status {
			continue
		}
		if opts.Priority != "" && task.Priority != opts.Priority {
			continue
		}
		matched = append(matched, task)
	}

	sort.Slice(matched, func(i, j int) bool {
		if opts.SortField == store.TaskSortDueDate {
			a, b := dueOrZero(matched[i]), dueOrZero(matched[j])
			if opts.SortDesc {
				return a.After(b)
			}
			return a.Before(b)
		}
		if opts.SortField == store.TaskSortCreatedAt && !opts.SortDesc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 10
	}

	start := (page - 1) * limit
	if start >= total {
		return []*domain.Task{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func dueOrZero(t *domain.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, id, owner uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, owner, patch)
	}

	task, err := m.GetByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	task.UpdatedAt = time.Now().UTC()

	return task, nil
}

// UpdateStatus implements the TaskStore interface
func (m *MockTaskStore) UpdateStatus(ctx context.Context, id, owner uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, owner, status)
	}

	task, err := m.GetByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	task.Status = status
	task.UpdatedAt = time.Now().UTC()

	return task, nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id, owner uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, owner)
	}

	if m.Error != nil {
		return m.Error
	}

	task, exists := m.Tasks[id]
	if !exists || task.CreatedBy != owner {
		return store.ErrTaskNotFound
	}

	delete(m.Tasks, id)
	return nil
}
