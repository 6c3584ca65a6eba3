// Package service contains application services that orchestrate stores
// and platform clients on behalf of the API layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/platform/logger"
	"github.com/planora/planora-api/internal/stats"
	"github.com/planora/planora-api/internal/store"
	"github.com/planora/planora-api/internal/suggestion"
)

// Analytics is the payload for the analytics dashboard: per-category task
// counts and tasks-created-per-day buckets for the selected window.
type Analytics struct {
	Window     stats.Window      `json:"range"`
	ByCategory map[string]int    `json:"byCategory"`
	ByDay      []stats.DayBucket `json:"byDay"`
}

// TaskService coordinates task persistence, dashboard statistics, and
// AI field suggestions.
//
// Read operations follow a degraded-availability policy: when the store is
// unreachable they return empty results rather than an error, so the UI
// keeps rendering. Write operations always surface store errors.
type TaskService struct {
	taskStore store.TaskStore
	suggester suggestion.Suggester
	logger    *slog.Logger
}

// NewTaskService creates a TaskService. The suggester may be nil, in which
// case Suggest always returns the default suggestion.
func NewTaskService(taskStore store.TaskStore, suggester suggestion.Suggester, logger *slog.Logger) *TaskService {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskStore: taskStore,
		suggester: suggester,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

// List returns the owner's tasks, newest first. Returns an empty slice if
// the store is unavailable.
func (s *TaskService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByOwner(ctx, ownerID)
	if err != nil {
		if degraded := s.degradeRead(ctx, "list tasks", err); degraded {
			return []*domain.Task{}, nil
		}
		return nil, err
	}
	return tasks, nil
}

// ListByIDs returns the owner's tasks matching ids, silently omitting ids
// that don't exist or belong to someone else. Returns an empty slice if
// the store is unavailable.
func (s *TaskService) ListByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListByIDs(ctx, ownerID, ids)
	if err != nil {
		if degraded := s.degradeRead(ctx, "list tasks by id", err); degraded {
			return []*domain.Task{}, nil
		}
		return nil, err
	}
	return tasks, nil
}

// Create validates the draft and persists a new task for the owner.
func (s *TaskService) Create(ctx context.Context, ownerID uuid.UUID, draft domain.TaskDraft) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, draft)
	if err != nil {
		return nil, err
	}
	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update replaces all editable fields of the owner's task with the draft.
// Returns store.ErrTaskNotFound if the task doesn't exist or belongs to a
// different owner.
func (s *TaskService) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	draft domain.TaskDraft,
) (*domain.Task, error) {
	return s.taskStore.Update(ctx, ownerID, taskID, draft)
}

// SetCompleted updates the completion flag of the owner's task.
func (s *TaskService) SetCompleted(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	completed bool,
) (*domain.Task, error) {
	return s.taskStore.SetCompleted(ctx, ownerID, taskID, completed)
}

// Delete removes the owner's task. Returns store.ErrTaskNotFound if the
// task doesn't exist or belongs to a different owner.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	return s.taskStore.Delete(ctx, ownerID, taskID)
}

// Categories returns the distinct non-empty categories of the owner's
// tasks. Returns an empty slice if the store is unavailable.
func (s *TaskService) Categories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	categories, err := s.taskStore.DistinctCategories(ctx, ownerID)
	if err != nil {
		if degraded := s.degradeRead(ctx, "list categories", err); degraded {
			return []string{}, nil
		}
		return nil, err
	}
	return categories, nil
}

// Tags returns the distinct tags across the owner's tasks. Returns an
// empty slice if the store is unavailable.
func (s *TaskService) Tags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	tags, err := s.taskStore.DistinctTags(ctx, ownerID)
	if err != nil {
		if degraded := s.degradeRead(ctx, "list tags", err); degraded {
			return []string{}, nil
		}
		return nil, err
	}
	return tags, nil
}

// Summary computes the dashboard summary over all of the owner's tasks.
// An unavailable store yields the summary of zero tasks.
func (s *TaskService) Summary(ctx context.Context, ownerID uuid.UUID, now time.Time) (stats.Summary, error) {
	tasks, err := s.List(ctx, ownerID)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.ComputeSummary(tasks, now), nil
}

// Analytics computes per-category and per-day task counts for the window.
func (s *TaskService) Analytics(
	ctx context.Context,
	ownerID uuid.UUID,
	window stats.Window,
	now time.Time,
) (Analytics, error) {
	tasks, err := s.List(ctx, ownerID)
	if err != nil {
		return Analytics{}, err
	}

	start, end := window.Bounds(now)
	windowed := stats.FilterByWindow(tasks, start, end)

	return Analytics{
		Window:     window,
		ByCategory: stats.GroupByCategory(windowed),
		ByDay:      stats.BucketByCreationDate(windowed),
	}, nil
}

// Suggest proposes field values for a task being created. It never fails:
// if no suggester is configured, the task name is empty, or generation
// errors out, it returns the default suggestion.
func (s *TaskService) Suggest(ctx context.Context, ownerID uuid.UUID, taskName string) suggestion.Suggestion {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.suggester == nil || taskName == "" {
		return suggestion.DefaultSuggestion()
	}

	// Existing tasks give the model context for dependencies and tags.
	// A degraded read just means less context.
	existing, err := s.List(ctx, ownerID)
	if err != nil {
		existing = nil
	}

	suggested, err := s.suggester.Suggest(ctx, taskName, existing)
	if err != nil {
		log.Warn("suggestion generation failed, using defaults",
			slog.String("error", err.Error()))
		return suggestion.DefaultSuggestion()
	}
	return suggested
}

// degradeRead reports whether err is a store availability failure that a
// read path should absorb. Not-found and validation errors pass through.
func (s *TaskService) degradeRead(ctx context.Context, operation string, err error) bool {
	if !errors.Is(err, store.ErrUnavailable) {
		return false
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Warn("store unavailable, serving empty result",
		slog.String("operation", operation),
		slog.String("error", err.Error()))
	return true
}
