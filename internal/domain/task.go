package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Duration bounds, in hours. A task shorter than half an hour or longer
// than a day is rejected at the draft boundary.
const (
	MinTaskDurationHours = 0.5
	MaxTaskDurationHours = 24
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOwnerEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerEmpty = errors.New("task owner ID cannot be empty")

	// ErrTaskNameEmpty is returned when a task's name is empty.
	ErrTaskNameEmpty = errors.New("task name cannot be empty")

	// ErrTaskDeadlineMissing is returned when a task has no deadline.
	ErrTaskDeadlineMissing = errors.New("task deadline is required")

	// ErrTaskDurationOutOfRange is returned when a task's duration is
	// outside the [0.5, 24] hour range.
	ErrTaskDurationOutOfRange = errors.New("task duration must be between 0.5 and 24 hours")

	// ErrInvalidPriority is returned when a priority is not high, medium or low.
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Priority is the urgency level of a task.
type Priority string

// Valid priority values.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsValid reports whether p is one of the known priority values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a single item on a user's task list. Every task belongs
// to exactly one owner, set at creation and never changed. Dependency
// references point at other task IDs; they are not checked for existence,
// ownership or cycles at write time, matching the display-layer filtering
// the product does on read.
type Task struct {
	ID           uuid.UUID   `json:"id"`
	OwnerID      uuid.UUID   `json:"owner_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Priority     Priority    `json:"priority"`
	Deadline     time.Time   `json:"deadline"`
	Duration     float64     `json:"duration"`
	Category     string      `json:"category,omitempty"`
	Dependencies []uuid.UUID `json:"dependencies,omitempty"`
	Completed    bool        `json:"completed"`
	Tags         []string    `json:"tags,omitempty"`
	ReminderAt   *time.Time  `json:"reminder_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TaskDraft is the client-supplied, not-yet-persisted field set for a task.
// A draft never carries an ID, owner, completion flag or timestamps; those
// are stamped by the store.
type TaskDraft struct {
	Name         string
	Description  string
	Priority     Priority
	Deadline     time.Time
	Duration     float64
	Category     string
	Dependencies []uuid.UUID
	Tags         []string
	ReminderAt   *time.Time
}

// Validate checks the draft against the data-model invariants.
// An empty priority is allowed and defaults to medium on apply.
func (d *TaskDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("name", "cannot be empty", ErrTaskNameEmpty)
	}

	if d.Deadline.IsZero() {
		return NewValidationError("deadline", "is required", ErrTaskDeadlineMissing)
	}

	if d.Duration < MinTaskDurationHours || d.Duration > MaxTaskDurationHours {
		return NewValidationError("duration", "must be between 0.5 and 24 hours", ErrTaskDurationOutOfRange)
	}

	if d.Priority != "" && !d.Priority.IsValid() {
		return NewValidationError("priority", "must be high, medium or low", ErrInvalidPriority)
	}

	return nil
}

// priorityOrDefault returns the draft priority, defaulting to medium
// when absent.
func (d *TaskDraft) priorityOrDefault() Priority {
	if d.Priority == "" {
		return PriorityMedium
	}
	return d.Priority
}

// NewTask creates a new Task owned by ownerID from a validated draft.
// It generates a new UUID for the task ID, stamps completed=false and
// sets the creation/update timestamps. Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, draft TaskDraft) (*Task, error) {
	if ownerID == uuid.Nil {
		return nil, ErrTaskOwnerEmpty
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &Task{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(draft.Name),
		Description:  strings.TrimSpace(draft.Description),
		Priority:     draft.priorityOrDefault(),
		Deadline:     draft.Deadline,
		Duration:     draft.Duration,
		Category:     strings.TrimSpace(draft.Category),
		Dependencies: draft.Dependencies,
		Completed:    false,
		Tags:         draft.Tags,
		ReminderAt:   draft.ReminderAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// ApplyDraft performs a full field replace from a validated draft,
// preserving the task's identity, owner, completion flag and creation
// timestamp. The update timestamp is refreshed.
func (t *Task) ApplyDraft(draft TaskDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	t.Name = strings.TrimSpace(draft.Name)
	t.Description = strings.TrimSpace(draft.Description)
	t.Priority = draft.priorityOrDefault()
	t.Deadline = draft.Deadline
	t.Duration = draft.Duration
	t.Category = strings.TrimSpace(draft.Category)
	t.Dependencies = draft.Dependencies
	t.Tags = draft.Tags
	t.ReminderAt = draft.ReminderAt
	t.UpdatedAt = time.Now().UTC()

	return nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerEmpty
	}

	if t.Name == "" {
		return ErrTaskNameEmpty
	}

	if t.Deadline.IsZero() {
		return ErrTaskDeadlineMissing
	}

	if t.Duration < MinTaskDurationHours || t.Duration > MaxTaskDurationHours {
		return ErrTaskDurationOutOfRange
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	return nil
}
