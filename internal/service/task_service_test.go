package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/mocks"
	"github.com/planora/planora-api/internal/stats"
	"github.com/planora/planora-api/internal/store"
	"github.com/planora/planora-api/internal/suggestion"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validDraft(name string) domain.TaskDraft {
	return domain.TaskDraft{
		Name:     name,
		Priority: domain.PriorityMedium,
		Deadline: time.Now().Add(48 * time.Hour),
		Duration: 2,
	}
}

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("creates valid task", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		svc := NewTaskService(taskStore, nil, testLogger())

		task, err := svc.Create(context.Background(), ownerID, validDraft("Write report"))
		require.NoError(t, err)
		assert.Equal(t, ownerID, task.OwnerID)
		assert.Equal(t, "Write report", task.Name)
		assert.False(t, task.Completed)
		assert.Contains(t, taskStore.Tasks, task.ID)
	})

	t.Run("rejects invalid draft", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		svc := NewTaskService(taskStore, nil, testLogger())

		draft := validDraft("")
		_, err := svc.Create(context.Background(), ownerID, draft)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, taskStore.Tasks)
	})

	t.Run("surfaces store errors", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.CreateFn = func(ctx context.Context, task *domain.Task) error {
			return fmt.Errorf("%w: connection refused", store.ErrUnavailable)
		}
		svc := NewTaskService(taskStore, nil, testLogger())

		_, err := svc.Create(context.Background(), ownerID, validDraft("Write report"))
		assert.ErrorIs(t, err, store.ErrUnavailable)
	})
}

func TestTaskServiceDegradedReads(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	unavailable := fmt.Errorf("%w: connection refused", store.ErrUnavailable)

	t.Run("list returns empty when store unavailable", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.ListByOwnerFn = func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
			return nil, unavailable
		}
		svc := NewTaskService(taskStore, nil, testLogger())

		tasks, err := svc.List(context.Background(), ownerID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("categories and tags return empty when store unavailable", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.DistinctCategoriesFn = func(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
			return nil, unavailable
		}
		taskStore.DistinctTagsFn = func(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
			return nil, unavailable
		}
		svc := NewTaskService(taskStore, nil, testLogger())

		categories, err := svc.Categories(context.Background(), ownerID)
		require.NoError(t, err)
		assert.Empty(t, categories)

		tags, err := svc.Tags(context.Background(), ownerID)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("summary of unavailable store is the zero summary", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.ListByOwnerFn = func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
			return nil, unavailable
		}
		svc := NewTaskService(taskStore, nil, testLogger())

		summary, err := svc.Summary(context.Background(), ownerID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalTasks)
		assert.Equal(t, 0, summary.CompletionRate)
	})

	t.Run("other read errors pass through", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		boom := errors.New("boom")
		taskStore.ListByOwnerFn = func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
			return nil, boom
		}
		svc := NewTaskService(taskStore, nil, testLogger())

		_, err := svc.List(context.Background(), ownerID)
		assert.ErrorIs(t, err, boom)
	})
}

func TestTaskServiceOwnershipPassthrough(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()

	taskStore := mocks.NewMockTaskStore()
	svc := NewTaskService(taskStore, nil, testLogger())

	task, err := svc.Create(context.Background(), owner, validDraft("Owned task"))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), stranger, task.ID, validDraft("Hijacked"))
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.SetCompleted(context.Background(), stranger, task.ID, true)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = svc.Delete(context.Background(), stranger, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	// The owner still sees the unmodified task.
	tasks, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Owned task", tasks[0].Name)
	assert.False(t, tasks[0].Completed)
}

func TestTaskServiceAnalytics(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	taskStore := mocks.NewMockTaskStore()
	svc := NewTaskService(taskStore, nil, testLogger())

	recent, err := domain.NewTask(ownerID, validDraft("Recent"))
	require.NoError(t, err)
	recent.CreatedAt = now.Add(-2 * 24 * time.Hour)
	recent.Category = "work"

	old, err := domain.NewTask(ownerID, validDraft("Old"))
	require.NoError(t, err)
	old.CreatedAt = now.Add(-40 * 24 * time.Hour)
	old.Category = "home"

	taskStore.Seed(recent, old)

	t.Run("7d window excludes old tasks", func(t *testing.T) {
		t.Parallel()
		analytics, err := svc.Analytics(context.Background(), ownerID, stats.WindowLast7Days, now)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"work": 1}, analytics.ByCategory)
		require.Len(t, analytics.ByDay, 1)
		assert.Equal(t, 1, analytics.ByDay[0].Created)
	})

	t.Run("all window includes everything", func(t *testing.T) {
		t.Parallel()
		analytics, err := svc.Analytics(context.Background(), ownerID, stats.WindowAllTime, now)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"work": 1, "home": 1}, analytics.ByCategory)
	})
}

func TestTaskServiceSuggest(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("returns suggester result", func(t *testing.T) {
		t.Parallel()
		want := suggestion.Suggestion{
			Priority: domain.PriorityHigh,
			Duration: 4,
			Tags:     []string{"work"},
		}
		suggester := &mocks.MockSuggester{Result: want}
		svc := NewTaskService(mocks.NewMockTaskStore(), suggester, testLogger())

		got := svc.Suggest(context.Background(), ownerID, "Quarterly report")
		assert.Equal(t, want, got)
	})

	t.Run("falls back to defaults on error", func(t *testing.T) {
		t.Parallel()
		suggester := &mocks.MockSuggester{Err: suggestion.ErrGenerationFailed}
		svc := NewTaskService(mocks.NewMockTaskStore(), suggester, testLogger())

		got := svc.Suggest(context.Background(), ownerID, "Quarterly report")
		assert.Equal(t, suggestion.DefaultSuggestion(), got)
	})

	t.Run("falls back when no suggester configured", func(t *testing.T) {
		t.Parallel()
		svc := NewTaskService(mocks.NewMockTaskStore(), nil, testLogger())

		got := svc.Suggest(context.Background(), ownerID, "Quarterly report")
		assert.Equal(t, suggestion.DefaultSuggestion(), got)
	})

	t.Run("falls back on empty task name", func(t *testing.T) {
		t.Parallel()
		suggester := &mocks.MockSuggester{Result: suggestion.Suggestion{Priority: domain.PriorityHigh}}
		svc := NewTaskService(mocks.NewMockTaskStore(), suggester, testLogger())

		got := svc.Suggest(context.Background(), ownerID, "")
		assert.Equal(t, suggestion.DefaultSuggestion(), got)
	})
}
