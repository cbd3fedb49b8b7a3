package services_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/acarrillo/tasknest/internal/models"
	"github.com/acarrillo/tasknest/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskRepo implements services.TaskRepository backed by a slice
type mockTaskRepo struct {
	tasks  []*models.Task
	nextID int
}

func (m *mockTaskRepo) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range m.tasks {
		if task.UserID == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	for _, task := range m.tasks {
		if task.ID == taskID && task.UserID == userID {
			return task, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	for _, existing := range m.tasks {
		if existing.UserID == task.UserID && existing.Title == task.Title {
			return nil, models.ErrConflict
		}
	}
	m.nextID++
	created := *task
	created.ID = fmt.Sprintf("task%d", m.nextID)
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	m.tasks = append(m.tasks, &created)
	return &created, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	for _, existing := range m.tasks {
		if existing.ID == task.ID && existing.UserID == task.UserID {
			existing.Title = task.Title
			existing.Description = task.Description
			existing.Done = task.Done
			existing.UpdatedAt = time.Now()
			return existing, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, taskID string) error {
	for i, existing := range m.tasks {
		if existing.ID == taskID && existing.UserID == userID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func newTaskService(repo *mockTaskRepo) *services.TaskService {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return services.NewTaskService(repo, logger)
}

func TestTaskServiceCreateAndList(t *testing.T) {
	repo := &mockTaskRepo{}
	svc := newTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user123", "buy milk", "two liters")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", created.Title)
	assert.False(t, created.Done)

	_, err = svc.Create(ctx, "user456", "other user task", "")
	require.NoError(t, err)

	tasks, err := svc.List(ctx, "user123")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestTaskServiceCreate_DuplicateTitle(t *testing.T) {
	repo := &mockTaskRepo{}
	svc := newTaskService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user123", "buy milk", "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user123", "buy milk", "again")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestTaskServiceCreate_EmptyTitle(t *testing.T) {
	svc := newTaskService(&mockTaskRepo{})

	_, err := svc.Create(context.Background(), "user123", "   ", "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestTaskServiceGet_ScopedToOwner(t *testing.T) {
	repo := &mockTaskRepo{}
	svc := newTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user123", "buy milk", "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user123", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Another user cannot see it
	_, err = svc.Get(ctx, "user456", created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTaskServiceUpdate(t *testing.T) {
	repo := &mockTaskRepo{}
	svc := newTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user123", "buy milk", "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user123", created.ID, "buy oat milk", "barista blend", true)
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", updated.Title)
	assert.True(t, updated.Done)

	_, err = svc.Update(ctx, "user123", "ghost", "title", "", false)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTaskServiceDelete(t *testing.T) {
	repo := &mockTaskRepo{}
	svc := newTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user123", "buy milk", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user123", created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user123", created.ID), models.ErrNotFound)
}
