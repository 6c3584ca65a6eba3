package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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
	"github.com/planora/planora-api/internal/store"
	"github.com/planora/planora-api/internal/suggestion"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTaskRouter mounts the task handler the way the server router does,
// with the authenticated user injected directly into the context.
func newTaskRouter(handler *TaskHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/categories", handler.Categories)
		r.Get("/tags", handler.Tags)
		r.Post("/suggestions", handler.Suggest)
		r.Put("/{id}", handler.Update)
		r.Patch("/{id}/status", handler.UpdateStatus)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func validTaskRequest(name string) TaskRequest {
	return TaskRequest{
		Name:     name,
		Priority: "high",
		Deadline: time.Now().Add(48 * time.Hour).UTC(),
		Duration: 2,
		Category: "work",
		Tags:     []string{"urgent"},
	}
}

func TestTaskHandlerCreate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("creates task", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPost, "/tasks", validTaskRequest("Write report"))
		require.Equal(t, http.StatusCreated, rr.Code)

		var created domain.Task
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, "Write report", created.Name)
		assert.Equal(t, domain.PriorityHigh, created.Priority)
		assert.Equal(t, userID, created.OwnerID)
		assert.False(t, created.Completed)
	})

	t.Run("missing deadline rejected", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		req := validTaskRequest("No deadline")
		req.Deadline = time.Time{}
		rr := doRequest(t, router, http.MethodPost, "/tasks", req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, taskStore.Tasks)
	})

	t.Run("out of range duration rejected", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		req := validTaskRequest("Marathon")
		req.Duration = 25
		rr := doRequest(t, router, http.MethodPost, "/tasks", req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskHandlerList(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	seed := func(t *testing.T, taskStore *mocks.MockTaskStore, owner uuid.UUID, names ...string) []*domain.Task {
		t.Helper()
		tasks := make([]*domain.Task, 0, len(names))
		for i, name := range names {
			task, err := domain.NewTask(owner, domain.TaskDraft{
				Name:     name,
				Deadline: time.Now().Add(24 * time.Hour),
				Duration: 1,
			})
			require.NoError(t, err)
			task.CreatedAt = task.CreatedAt.Add(time.Duration(i) * time.Minute)
			tasks = append(tasks, task)
		}
		taskStore.Seed(tasks...)
		return tasks
	}

	t.Run("lists own tasks newest first", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		seed(t, taskStore, userID, "first", "second")
		seed(t, taskStore, uuid.New(), "foreign")

		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodGet, "/tasks", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var listed []domain.Task
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
		require.Len(t, listed, 2)
		assert.Equal(t, "second", listed[0].Name)
		assert.Equal(t, "first", listed[1].Name)
	})

	t.Run("filters by ids and omits foreign tasks", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		mine := seed(t, taskStore, userID, "mine")
		theirs := seed(t, taskStore, uuid.New(), "theirs")

		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		path := fmt.Sprintf("/tasks?ids=%s,%s", mine[0].ID, theirs[0].ID)
		rr := doRequest(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var listed []domain.Task
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, mine[0].ID, listed[0].ID)
	})

	t.Run("malformed ids rejected", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodGet, "/tasks?ids=not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty list when store unavailable", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		taskStore.ListByOwnerFn = func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
			return nil, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
		}
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodGet, "/tasks", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})
}

func TestTaskHandlerUpdate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	newTaskFor := func(t *testing.T, owner uuid.UUID) (*mocks.MockTaskStore, *domain.Task) {
		t.Helper()
		taskStore := mocks.NewMockTaskStore()
		task, err := domain.NewTask(owner, domain.TaskDraft{
			Name:     "Original",
			Deadline: time.Now().Add(24 * time.Hour),
			Duration: 1,
		})
		require.NoError(t, err)
		taskStore.Seed(task)
		return taskStore, task
	}

	t.Run("full replace preserves completion", func(t *testing.T) {
		t.Parallel()
		taskStore, task := newTaskFor(t, userID)
		task.Completed = true

		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPut, "/tasks/"+task.ID.String(), validTaskRequest("Renamed"))
		require.Equal(t, http.StatusOK, rr.Code)

		var updated domain.Task
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.Equal(t, "Renamed", updated.Name)
		assert.True(t, updated.Completed)
		assert.Equal(t, task.ID, updated.ID)
	})

	t.Run("foreign task reads as not found", func(t *testing.T) {
		t.Parallel()
		taskStore, task := newTaskFor(t, uuid.New())

		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPut, "/tasks/"+task.ID.String(), validTaskRequest("Hijack"))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id rejected", func(t *testing.T) {
		t.Parallel()
		taskStore, _ := newTaskFor(t, userID)
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPut, "/tasks/not-a-uuid", validTaskRequest("X"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskHandlerStatusAndDelete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	completed := true

	t.Run("toggles completion", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task, err := domain.NewTask(userID, domain.TaskDraft{
			Name:     "Toggle me",
			Deadline: time.Now().Add(24 * time.Hour),
			Duration: 1,
		})
		require.NoError(t, err)
		taskStore.Seed(task)

		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPatch, "/tasks/"+task.ID.String()+"/status",
			TaskStatusRequest{Completed: &completed})
		require.Equal(t, http.StatusOK, rr.Code)

		var updated domain.Task
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
		assert.True(t, updated.Completed)
	})

	t.Run("missing completed field rejected", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPatch, "/tasks/"+uuid.NewString()+"/status",
			map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("deletes own task", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		task, err := domain.NewTask(userID, domain.TaskDraft{
			Name:     "Delete me",
			Deadline: time.Now().Add(24 * time.Hour),
			Duration: 1,
		})
		require.NoError(t, err)
		taskStore.Seed(task)

		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, taskStore.Tasks)
	})

	t.Run("deleting unknown task is not found", func(t *testing.T) {
		t.Parallel()
		taskStore := mocks.NewMockTaskStore()
		handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodDelete, "/tasks/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTaskHandlerCategoriesAndTags(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	taskStore := mocks.NewMockTaskStore()
	for _, spec := range []struct {
		name     string
		category string
		tags     []string
	}{
		{"a", "work", []string{"deep", "urgent"}},
		{"b", "home", []string{"urgent"}},
		{"c", "", nil},
	} {
		task, err := domain.NewTask(userID, domain.TaskDraft{
			Name:     spec.name,
			Deadline: time.Now().Add(24 * time.Hour),
			Duration: 1,
			Category: spec.category,
			Tags:     spec.tags,
		})
		require.NoError(t, err)
		taskStore.Seed(task)
	}

	handler := NewTaskHandler(service.NewTaskService(taskStore, nil, testLogger()), testLogger())
	router := newTaskRouter(handler, userID)

	t.Run("categories skip empty", func(t *testing.T) {
		t.Parallel()
		rr := doRequest(t, router, http.MethodGet, "/tasks/categories", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp CategoriesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"work", "home"}, resp.Categories)
	})

	t.Run("tags are deduplicated", func(t *testing.T) {
		t.Parallel()
		rr := doRequest(t, router, http.MethodGet, "/tasks/tags", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp TagsResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"deep", "urgent"}, resp.Tags)
	})
}

func TestTaskHandlerSuggest(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("returns suggester result", func(t *testing.T) {
		t.Parallel()
		suggester := &mocks.MockSuggester{Result: suggestion.Suggestion{
			Priority:     domain.PriorityHigh,
			Duration:     3,
			Dependencies: []uuid.UUID{},
			Tags:         []string{"report"},
		}}
		svc := service.NewTaskService(mocks.NewMockTaskStore(), suggester, testLogger())
		handler := NewTaskHandler(svc, testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPost, "/tasks/suggestions",
			SuggestionRequest{Name: "Quarterly report"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp suggestion.Suggestion
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, domain.PriorityHigh, resp.Priority)
		assert.Equal(t, 3.0, resp.Duration)
	})

	t.Run("generation failure still answers 200 with defaults", func(t *testing.T) {
		t.Parallel()
		suggester := &mocks.MockSuggester{Err: suggestion.ErrGenerationFailed}
		svc := service.NewTaskService(mocks.NewMockTaskStore(), suggester, testLogger())
		handler := NewTaskHandler(svc, testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPost, "/tasks/suggestions",
			SuggestionRequest{Name: "Quarterly report"})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp suggestion.Suggestion
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, suggestion.DefaultSuggestion(), resp)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()
		svc := service.NewTaskService(mocks.NewMockTaskStore(), nil, testLogger())
		handler := NewTaskHandler(svc, testLogger())
		router := newTaskRouter(handler, userID)

		rr := doRequest(t, router, http.MethodPost, "/tasks/suggestions", SuggestionRequest{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
