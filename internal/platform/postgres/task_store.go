package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/platform/logger"
	"github.com/planora/planora-api/internal/store"
)

// taskColumns is the column list shared by every task query.
const taskColumns = `id, owner_id, name, description, priority, deadline, duration,
		category, dependencies, completed, tags, reminder_at, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, the
// default logger is used.
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

// ListByOwner implements store.TaskStore.ListByOwner
// Returns the owner's tasks newest-created first. Query failures are
// reported as store.ErrUnavailable so read paths can degrade to an empty
// result instead of failing the page.
func (s *PostgresTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query tasks by owner",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return s.collectTasks(rows, log)
}

// ListByIDs implements store.TaskStore.ListByIDs
// Unknown or foreign ids are silently omitted from the result.
func (s *PostgresTaskStore) ListByIDs(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return []*domain.Task{}, nil
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1 AND id = ANY($2)
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, ids)
	if err != nil {
		log.Error("failed to query tasks by ids",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.Int("id_count", len(ids)))
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return s.collectTasks(rows, log)
}

// Create implements store.TaskStore.Create
// It validates the task and inserts the row. The owner must already be
// stamped by the caller. Returns store.ErrInvalidEntity if the owner does
// not exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	deps, err := marshalIDList(task.Dependencies)
	if err != nil {
		return err
	}
	tags, err := marshalStringList(task.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.OwnerID,
		task.Name,
		task.Description,
		task.Priority,
		task.Deadline,
		task.Duration,
		task.Category,
		deps,
		task.Completed,
		tags,
		task.ReminderAt,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: owner with ID %s not found",
				store.ErrInvalidEntity, task.OwnerID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// Update implements store.TaskStore.Update
// Performs a full field replace scoped to both id and owner; identity,
// owner, completion flag and creation timestamp are preserved.
// Returns store.ErrTaskNotFound if no task matches both id and owner.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	draft domain.TaskDraft,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := draft.Validate(); err != nil {
		log.Warn("draft validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	// Apply the draft to a scratch task to reuse the domain's replace
	// semantics (priority defaulting, trimming, updated_at refresh).
	scratch := domain.Task{ID: taskID, OwnerID: ownerID}
	if err := scratch.ApplyDraft(draft); err != nil {
		return nil, err
	}

	deps, err := marshalIDList(scratch.Dependencies)
	if err != nil {
		return nil, err
	}
	tags, err := marshalStringList(scratch.Tags)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE tasks
		SET name = $1, description = $2, priority = $3, deadline = $4,
			duration = $5, category = $6, dependencies = $7, tags = $8,
			reminder_at = $9, updated_at = $10
		WHERE id = $11 AND owner_id = $12
		RETURNING ` + taskColumns

	task, err := s.scanTask(s.db.QueryRowContext(
		ctx,
		query,
		scratch.Name,
		scratch.Description,
		scratch.Priority,
		scratch.Deadline,
		scratch.Duration,
		scratch.Category,
		deps,
		tags,
		scratch.ReminderAt,
		scratch.UpdatedAt,
		taskID,
		ownerID,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update",
				slog.String("task_id", taskID.String()),
				slog.String("owner_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	log.Info("task updated successfully",
		slog.String("task_id", taskID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// SetCompleted implements store.TaskStore.SetCompleted
// Mutates only the completion flag and update timestamp.
// Returns store.ErrTaskNotFound if no task matches both id and owner.
func (s *PostgresTaskStore) SetCompleted(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	completed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET completed = $1, updated_at = now()
		WHERE id = $2 AND owner_id = $3
		RETURNING ` + taskColumns

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, completed, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for status update",
				slog.String("task_id", taskID.String()),
				slog.String("owner_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	log.Info("task status updated successfully",
		slog.String("task_id", taskID.String()),
		slog.Bool("completed", completed))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if no task matches both id and owner.
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete",
			slog.String("task_id", taskID.String()),
			slog.String("owner_id", ownerID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully",
		slog.String("task_id", taskID.String()),
		slog.String("owner_id", ownerID.String()))
	return nil
}

// DistinctCategories implements store.TaskStore.DistinctCategories
func (s *PostgresTaskStore) DistinctCategories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT category
		FROM tasks
		WHERE owner_id = $1 AND category <> ''
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query distinct categories",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer closeRows(rows, log)

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			log.Error("failed to scan category row",
				slog.String("error", err.Error()))
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return categories, nil
}

// DistinctTags implements store.TaskStore.DistinctTags
// Tags live in a JSONB column, so the union is computed in memory from the
// owner's rows; no behavioral difference from a store-native distinct is
// observable.
func (s *PostgresTaskStore) DistinctTags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT tags
		FROM tasks
		WHERE owner_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query tags",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer closeRows(rows, log)

	seen := make(map[string]struct{})
	tags := []string{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			log.Error("failed to scan tags row",
				slog.String("error", err.Error()))
			return nil, err
		}

		rowTags, err := unmarshalStringList(raw)
		if err != nil {
			return nil, err
		}

		for _, tag := range rowTags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return tags, nil
}

// collectTasks drains rows into domain tasks, closing rows on return.
func (s *PostgresTaskStore) collectTasks(rows *sql.Rows, log *slog.Logger) ([]*domain.Task, error) {
	defer closeRows(rows, log)

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTaskRow(rows.Scan)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// scanTask reads one task row from a QueryRow result.
func (s *PostgresTaskStore) scanTask(row *sql.Row) (*domain.Task, error) {
	return scanTaskRow(row.Scan)
}

// scanTaskRow reads a task from any row-shaped scan function.
func scanTaskRow(scan func(dest ...any) error) (*domain.Task, error) {
	var task domain.Task
	var description, category sql.NullString
	var deps, tags []byte
	var reminderAt sql.NullTime

	err := scan(
		&task.ID,
		&task.OwnerID,
		&task.Name,
		&description,
		&task.Priority,
		&task.Deadline,
		&task.Duration,
		&category,
		&deps,
		&task.Completed,
		&tags,
		&reminderAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Category = category.String
	if reminderAt.Valid {
		t := reminderAt.Time
		task.ReminderAt = &t
	}

	if task.Dependencies, err = unmarshalIDList(deps); err != nil {
		return nil, err
	}

	tagList, err := unmarshalStringList(tags)
	if err != nil {
		return nil, err
	}
	task.Tags = tagList

	return &task, nil
}

// closeRows closes rows and logs a close failure, which would otherwise
// be silently dropped in a defer.
func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}

// marshalIDList encodes a dependency list as JSONB, normalizing nil to [].
func marshalIDList(ids []uuid.UUID) ([]byte, error) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return json.Marshal(ids)
}

// unmarshalIDList decodes a JSONB dependency list, mapping empty to nil.
func unmarshalIDList(raw []byte) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode dependency list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// marshalStringList encodes a tag list as JSONB, normalizing nil to [].
func marshalStringList(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// unmarshalStringList decodes a JSONB tag list, mapping empty to nil.
func unmarshalStringList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tag list: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
