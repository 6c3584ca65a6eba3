package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora-api/internal/api/shared"
	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/mocks"
	"github.com/planora/planora-api/internal/service"
	"github.com/planora/planora-api/internal/stats"
	"github.com/planora/planora-api/internal/store"
)

func newDashboardRouter(handler *DashboardHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/dashboard/summary", handler.Summary)
	r.Get("/dashboard/analytics", handler.Analytics)
	return r
}

func seedDashboardTasks(t *testing.T, taskStore *mocks.MockTaskStore, ownerID uuid.UUID, now time.Time) {
	t.Helper()

	specs := []struct {
		name      string
		deadline  time.Time
		createdAt time.Time
		priority  domain.Priority
		category  string
		completed bool
	}{
		{"due today", now.Add(2 * time.Hour), now.Add(-24 * time.Hour), domain.PriorityHigh, "work", false},
		{"overdue", now.Add(-36 * time.Hour), now.Add(-48 * time.Hour), domain.PriorityMedium, "work", false},
		{"done", now.Add(24 * time.Hour), now.Add(-24 * time.Hour), domain.PriorityLow, "home", true},
		{"future", now.Add(5 * 24 * time.Hour), now.Add(-40 * 24 * time.Hour), domain.PriorityLow, "", false},
	}

	for _, spec := range specs {
		task, err := domain.NewTask(ownerID, domain.TaskDraft{
			Name:     spec.name,
			Priority: spec.priority,
			Deadline: spec.deadline,
			Duration: 1,
			Category: spec.category,
		})
		require.NoError(t, err)
		task.CreatedAt = spec.createdAt
		task.Completed = spec.completed
		taskStore.Seed(task)
	}
}

func TestDashboardSummary(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("computes summary at request time", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		seedDashboardTasks(t, taskStore, userID, now)

		handler := NewDashboardHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		handler.timeFunc = func() time.Time { return now }
		router := newDashboardRouter(handler, userID)

		rr := doRequest(t, router, http.MethodGet, "/dashboard/summary", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary stats.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, 4, summary.TotalTasks)
		assert.Equal(t, 1, summary.CompletedTasks)
		assert.Equal(t, 3, summary.PendingTasks)
		assert.Equal(t, 1, summary.DueTodayTasks)
		assert.Equal(t, 1, summary.OverdueTasks)
		assert.Equal(t, 1, summary.HighPriorityTasks)
		assert.Equal(t, 25, summary.CompletionRate)
	})

	t.Run("degrades to zero summary when store unavailable", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.ListByOwnerFn = func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
			return nil, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
		}

		handler := NewDashboardHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newDashboardRouter(handler, userID)

		rr := doRequest(t, router, http.MethodGet, "/dashboard/summary", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary stats.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, 0, summary.TotalTasks)
	})
}

func TestDashboardAnalytics(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	newRouter := func(t *testing.T) http.Handler {
		t.Helper()
		taskStore := mocks.NewMockTaskStore()
		seedDashboardTasks(t, taskStore, userID, now)
		handler := NewDashboardHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		handler.timeFunc = func() time.Time { return now }
		return newDashboardRouter(handler, userID)
	}

	t.Run("7d window excludes older tasks", func(t *testing.T) {
		t.Parallel()
		rr := doRequest(t, newRouter(t), http.MethodGet, "/dashboard/analytics?range=7d", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var analytics service.Analytics
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &analytics))
		assert.Equal(t, stats.WindowLast7Days, analytics.Window)
		assert.Equal(t, map[string]int{"work": 2, "home": 1}, analytics.ByCategory)
	})

	t.Run("all window buckets the uncategorized task too", func(t *testing.T) {
		t.Parallel()
		rr := doRequest(t, newRouter(t), http.MethodGet, "/dashboard/analytics?range=all", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var analytics service.Analytics
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &analytics))
		assert.Equal(t, stats.WindowAllTime, analytics.Window)
		assert.Equal(t, 1, analytics.ByCategory[stats.UncategorizedLabel])
	})

	t.Run("unknown range falls back to 7d", func(t *testing.T) {
		t.Parallel()
		rr := doRequest(t, newRouter(t), http.MethodGet, "/dashboard/analytics?range=yesteryear", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var analytics service.Analytics
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &analytics))
		assert.Equal(t, stats.WindowLast7Days, analytics.Window)
	})
}
