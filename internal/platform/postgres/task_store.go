package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// Default pagination applied when the caller leaves Page or Limit unset.
const (
	defaultTaskPage  = 1
	defaultTaskLimit = 10
)

// taskColumns is the column list shared by every SELECT and RETURNING
// clause in this file, in scanTask order.
const taskColumns = "id, title, description, status, priority, due_date, created_by, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// scanTask scans a single task row in taskColumns order.
func scanTask(row interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.Priority,
		&dueDate,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}

	return &task, nil
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owning user does not exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, status, priority, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		nullString(task.Description),
		task.Status,
		task.Priority,
		nullTime(task.DueDate),
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("created_by", task.CreatedBy.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.CreatedBy)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", task.CreatedBy.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its ID, scoped to the given owner.
// Returns store.ErrTaskNotFound if no task with that ID is owned by owner.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE id = $1 AND created_by = $2
	`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", id.String()),
				slog.String("owner", owner.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// List implements store.TaskStore.List
// It returns the owner's tasks matching the given options plus the total
// number of matches before pagination. Tasks of other owners are never
// visible: the owner filter is part of every query.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	owner uuid.UUID,
	opts store.TaskListOptions,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := []string{"created_by = $1"}
	args := []any{owner}

	if opts.Status != "" {
		args = append(args, opts.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if opts.Priority != "" {
		args = append(args, opts.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	countQuery := "SELECT COUNT(*) FROM tasks WHERE " + whereClause

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("owner", owner.String()))
		return nil, 0, MapError(err)
	}

	page := opts.Page
	if page < 1 {
		page = defaultTaskPage
	}
	limit := opts.Limit
	if limit < 1 {
		limit = defaultTaskLimit
	}
	offset := (page - 1) * limit

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, taskColumns, whereClause, taskOrderClause(opts), len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("owner", owner.String()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	log.Debug("listed tasks",
		slog.String("owner", owner.String()),
		slog.Int("count", len(tasks)),
		slog.Int("total", total))
	return tasks, total, nil
}

// taskOrderClause translates the sort options into an ORDER BY expression.
// Only whitelisted columns ever reach the SQL text; anything unrecognized
// falls back to the default of newest first.
func taskOrderClause(opts store.TaskListOptions) string {
	var column string
	switch opts.SortField {
	case store.TaskSortDueDate:
		column = "due_date"
	case store.TaskSortCreatedAt:
		column = "created_at"
	default:
		return "created_at DESC"
	}

	if opts.SortDesc {
		return column + " DESC"
	}
	return column + " ASC"
}

// Update implements store.TaskStore.Update
// It applies the non-nil fields of patch to the task identified by id and
// owner in a single UPDATE ... RETURNING statement, so the ownership check
// and the mutation cannot race.
// Returns store.ErrTaskNotFound if no task with that ID is owned by owner.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id, owner uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Validate(); err != nil {
		log.Warn("task patch validation failed",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	// Nothing to change: an ownership-scoped read gives the same answer
	// (the current task, or not found) without a no-op write.
	if patch.IsEmpty() {
		return s.GetByID(ctx, id, owner)
	}

	set := []string{}
	args := []any{}

	addSet := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		addSet("title", *patch.Title)
	}
	if patch.Description != nil {
		addSet("description", nullString(*patch.Description))
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}
	if patch.Priority != nil {
		addSet("priority", *patch.Priority)
	}
	if patch.DueDate != nil {
		addSet("due_date", *patch.DueDate)
	}
	addSet("updated_at", time.Now().UTC())

	args = append(args, id, owner)
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND created_by = $%d
		RETURNING %s
	`, strings.Join(set, ", "), len(args)-1, len(args), taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update",
				slog.String("task_id", id.String()),
				slog.String("owner", owner.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("task updated successfully",
		slog.String("task_id", id.String()))
	return task, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
// It atomically sets the task's status and returns the updated task.
// Returns store.ErrTaskNotFound if no task with that ID is owned by owner.
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id, owner uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidTaskStatus(status) {
		return nil, domain.ErrInvalidTaskStatus
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET status = $1, updated_at = $2
		WHERE id = $3 AND created_by = $4
		RETURNING %s
	`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, status, time.Now().UTC(), id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for status update",
				slog.String("task_id", id.String()),
				slog.String("owner", owner.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("task status updated successfully",
		slog.String("task_id", id.String()),
		slog.String("status", string(status)))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// It removes the task identified by id and owner in a single statement.
// Returns store.ErrTaskNotFound if no task with that ID is owned by owner.
func (s *PostgresTaskStore) Delete(ctx context.Context, id, owner uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND created_by = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete",
				slog.String("task_id", id.String()),
				slog.String("owner", owner.String()))
		}
		return err
	}

	log.Info("task deleted successfully",
		slog.String("task_id", id.String()))
	return nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime maps a nil time pointer to SQL NULL.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
