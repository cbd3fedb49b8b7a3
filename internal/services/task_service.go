package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/acarrillo/tasknest/internal/models"
)

// TaskRepository defines the task-store operations the task service needs.
// Every operation is scoped to the owning user.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
	GetByID(ctx context.Context, userID, taskID string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

// TaskService handles task business logic
type TaskService struct {
	repo   TaskRepository
	logger *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(repo TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// TaskResponse represents a task in the HTTP response
type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// List returns all tasks belonging to the user.
func (s *TaskService) List(ctx context.Context, userID string) ([]*TaskResponse, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskModelToResponse(task))
	}
	return responses, nil
}

// Get returns one of the user's tasks by id.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	task, err := s.repo.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get task", slog.String("task_id", taskID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return taskModelToResponse(task), nil
}

// Create adds a task for the user. Duplicate titles surface as a conflict.
func (s *TaskService) Create(ctx context.Context, userID, title, description string) (*TaskResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.ErrBadRequest
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create task", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("task created", slog.String("task_id", created.ID), slog.String("user_id", userID))
	return taskModelToResponse(created), nil
}

// Update replaces a task's title, description and done flag.
func (s *TaskService) Update(ctx context.Context, userID, taskID, title, description string, done bool) (*TaskResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.ErrBadRequest
	}

	task := &models.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Done:        done,
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to update task", slog.String("task_id", taskID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return taskModelToResponse(updated), nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	err := s.repo.Delete(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete task", slog.String("task_id", taskID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("task deleted", slog.String("task_id", taskID))
	return nil
}

func taskModelToResponse(task *models.Task) *TaskResponse {
	return &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Done:        task.Done,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
}
