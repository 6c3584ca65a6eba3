package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/planora/planora-api/internal/domain"
	"github.com/planora/planora-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation keeps tasks in memory with the same ownership semantics
// as the real store: mutations of another owner's task report
// store.ErrTaskNotFound.
type MockTaskStore struct {
	// Function fields for customizable behavior
	ListByOwnerFn        func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error)
	ListByIDsFn          func(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Task, error)
	CreateFn             func(ctx context.Context, task *domain.Task) error
	UpdateFn             func(ctx context.Context, ownerID, taskID uuid.UUID, draft domain.TaskDraft) (*domain.Task, error)
	SetCompletedFn       func(ctx context.Context, ownerID, taskID uuid.UUID, completed bool) (*domain.Task, error)
	DeleteFn             func(ctx context.Context, ownerID, taskID uuid.UUID) error
	DistinctCategoriesFn func(ctx context.Context, ownerID uuid.UUID) ([]string, error)
	DistinctTagsFn       func(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Seed adds tasks to the in-memory store.
func (m *MockTaskStore) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		m.Tasks[t.ID] = t
	}
}

// ListByOwner implements the TaskStore interface.
func (m *MockTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Task, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Task, 0)
	for _, t := range m.Tasks {
		if t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ListByIDs implements the TaskStore interface.
func (m *MockTaskStore) ListByIDs(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]*domain.Task, error) {
	if m.ListByIDsFn != nil {
		return m.ListByIDsFn(ctx, ownerID, ids)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.Tasks[id]; ok && t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	return result, nil
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task
	return nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	draft domain.TaskDraft,
) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ownerID, taskID, draft)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	if err := t.ApplyDraft(draft); err != nil {
		return nil, err
	}
	return t, nil
}

// SetCompleted implements the TaskStore interface.
func (m *MockTaskStore) SetCompleted(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	completed bool,
) (*domain.Task, error) {
	if m.SetCompletedFn != nil {
		return m.SetCompletedFn(ctx, ownerID, taskID, completed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	t.Completed = completed
	return t, nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.Tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, taskID)
	return nil
}

// DistinctCategories implements the TaskStore interface.
func (m *MockTaskStore) DistinctCategories(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	if m.DistinctCategoriesFn != nil {
		return m.DistinctCategoriesFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, t := range m.Tasks {
		if t.OwnerID != ownerID || t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		result = append(result, t.Category)
	}
	sort.Strings(result)
	return result, nil
}

// DistinctTags implements the TaskStore interface.
func (m *MockTaskStore) DistinctTags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	if m.DistinctTagsFn != nil {
		return m.DistinctTagsFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, t := range m.Tasks {
		if t.OwnerID != ownerID {
			continue
		}
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			result = append(result, tag)
		}
	}
	sort.Strings(result)
	return result, nil
}
