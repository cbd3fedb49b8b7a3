package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/acarrillo/tasknest/internal/database"
	"github.com/acarrillo/tasknest/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{pool: db.Pool}
}

func scanTaskRow(scanner rowScanner) (*models.Task, error) {
	var task models.Task

	err := scanner.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Done, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &task, nil
}

func scanTaskRows(rows pgx.Rows) ([]*models.Task, error) {
	defer rows.Close()

	tasks := make([]*models.Task, 0)

	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `
		SELECT id, user_id, title, description, done, created_at, updated_at
		FROM tasks WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	return scanTaskRows(rows)
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	query := `
		SELECT id, user_id, title, description, done, created_at, updated_at
		FROM tasks WHERE id = $1 AND user_id = $2
	`

	return scanTaskRow(r.pool.QueryRow(ctx, query, taskID, userID))
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ID = uuid.New().String()

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO tasks (id, user_id, title, description, done, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, title, description, done, created_at, updated_at
	`

	return scanTaskRow(r.pool.QueryRow(ctx, query,
		task.ID, task.UserID, task.Title, task.Description,
		task.Done, task.CreatedAt, task.UpdatedAt,
	))
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE tasks SET title = $1, description = $2, done = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, title, description, done, created_at, updated_at
	`

	return scanTaskRow(r.pool.QueryRow(ctx, query,
		task.Title, task.Description, task.Done, task.UpdatedAt,
		task.ID, task.UserID,
	))
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, taskID, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
