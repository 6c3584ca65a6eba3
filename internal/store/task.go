package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/planora/planora-api/internal/domain"
)

// TaskStore defines the interface for task data persistence. Every
// operation is scoped to an owner: reads only return the owner's tasks,
// and mutations of a task the owner does not hold fail with
// ErrTaskNotFound rather than touching another user's data.
type TaskStore interface {
	// ListByOwner returns all tasks owned by ownerID, newest-created first.
	// An owner with zero tasks gets an empty slice, not an error.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)

	// ListByIDs returns the subset of ids that exist and are owned by
	// ownerID. Unknown or foreign ids are silently omitted; the result
	// order is unspecified. Used to resolve a task's dependency list for
	// display.
	ListByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Task, error)

	// Create persists a new task. The task must already carry its owner,
	// stamped by the caller from the authenticated identity.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// Update performs a full field replace from the draft on the task
	// matching taskID and ownerID, preserving identity, owner, completion
	// flag and creation timestamp. Returns the updated task.
	// Returns ErrTaskNotFound if no task matches both id and owner.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, draft domain.TaskDraft) (*domain.Task, error)

	// SetCompleted mutates only the completion flag and update timestamp
	// of the task matching taskID and ownerID. Returns the updated task.
	// Returns ErrTaskNotFound under the same ownership condition as Update.
	SetCompleted(ctx context.Context, ownerID, taskID uuid.UUID, completed bool) (*domain.Task, error)

	// Delete permanently removes the task matching taskID and ownerID.
	// Dangling dependency references in other tasks are left in place.
	// Returns ErrTaskNotFound under the same ownership condition as Update.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error

	// DistinctCategories returns the distinct, non-empty category values
	// across the owner's tasks. Order is unspecified.
	DistinctCategories(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// DistinctTags returns the union of all tags across the owner's tasks
	// with duplicates removed. Order is unspecified.
	DistinctTags(ctx context.Context, ownerID uuid.UUID) ([]string, error)
}
