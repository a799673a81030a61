package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/task"
)

const taskColumns = `id, user_id, title, description, subject, category, priority, status, deadline, created_at, updated_at`

type taskRow struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Subject     string    `db:"subject"`
	Category    string    `db:"category"`
	Priority    string    `db:"priority"`
	Status      string    `db:"status"`
	Deadline    null.Time `db:"deadline"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type taskRepository struct {
	exec core.DBExecutor
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(exec core.DBExecutor) *taskRepository {
	return &taskRepository{exec: exec}
}

func (repo taskRepository) boil(t task.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Subject:     t.Subject,
		Category:    t.Category,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Deadline:    null.TimeFromPtr(utcPtr(t.Deadline)),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (repo taskRepository) unboil(row taskRow) task.Task {
	return task.Task{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Subject:     row.Subject,
		Category:    row.Category,
		Priority:    task.Priority(row.Priority),
		Status:      task.Status(row.Status),
		Deadline:    utcPtr(row.Deadline.Ptr()),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo taskRepository) InsertTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	row := repo.boil(t)
	q := `INSERT INTO tasks (user_id, title, description, subject, category, priority, status, deadline, created_at,
		updated_at)
		VALUES (:user_id, :title, :description, :subject, :category, :priority, :status, :deadline, :created_at,
		:updated_at)
		RETURNING id`

	exe := getExec(repo.exec, exec)
	q, args, err := sqlx.Named(q, row)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "binding task")
	}
	if err = exe.GetContext(ctx, &row.ID, exe.Rebind(q), args...); err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return repo.unboil(row), nil
}

func (repo taskRepository) GetTask(ctx context.Context, id, userID int64, exec ...core.DBExecutor) (task.Task, error) {
	q := "SELECT " + taskColumns + " FROM tasks WHERE id = $1 AND user_id = $2"

	var row taskRow
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "finding task")
	}
	return repo.unboil(row), nil
}

func (repo taskRepository) QueryTasks(ctx context.Context, filter task.QueryFilter, exec ...core.DBExecutor) ([]task.Task, error) {
	q := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ?"
	args := []interface{}{filter.UserID}
	if filter.Status != "" {
		q += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	q += " ORDER BY deadline ASC NULLS LAST, id ASC"

	exe := getExec(repo.exec, exec)
	var rows []taskRow
	if err := exe.SelectContext(ctx, &rows, exe.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, repo.unboil(r))
	}
	return tasks, nil
}

func (repo taskRepository) UpdateTaskStatus(ctx context.Context, t task.Task, exec ...core.DBExecutor) error {
	q := "UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4"
	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, string(t.Status), t.UpdatedAt.UTC(), t.ID, t.UserID)
	if err != nil {
		return errors.Wrap(err, "updating task status")
	}
	return checkAffected(res, task.ErrNotFound)
}

func (repo taskRepository) TaskStats(ctx context.Context, userID int64, exec ...core.DBExecutor) (task.Stats, error) {
	q := `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'not-started') AS not_started,
		COUNT(*) FILTER (WHERE status = 'in-progress') AS in_progress,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'overdue') AS overdue,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM tasks WHERE ($1::bigint = 0 OR user_id = $1)`

	var row struct {
		Total      int `db:"total"`
		NotStarted int `db:"not_started"`
		InProgress int `db:"in_progress"`
		Completed  int `db:"completed"`
		Overdue    int `db:"overdue"`
		Cancelled  int `db:"cancelled"`
	}
	if err := getExec(repo.exec, exec).GetContext(ctx, &row, q, userID); err != nil {
		return task.Stats{}, errors.Wrap(err, "counting tasks")
	}
	return task.Stats(row), nil
}

func (repo taskRepository) MarkOverdue(ctx context.Context, before time.Time, exec ...core.DBExecutor) (int, error) {
	open := make([]string, 0, len(task.OpenStatuses))
	for _, st := range task.OpenStatuses {
		open = append(open, string(st))
	}
	q := `UPDATE tasks SET status = $1, updated_at = $2
		WHERE status = ANY($3) AND deadline IS NOT NULL AND deadline < $2`

	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, string(task.StatusOverdue), before.UTC(), pq.Array(open))
	if err != nil {
		return 0, errors.Wrap(err, "marking overdue tasks")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "checking affected rows")
	}
	return int(n), nil
}
