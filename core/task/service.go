package task

import (
	"context"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"

	"github.com/studash/dashboard/core"
)

var (
	ErrNotFound = errors.New("task not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		InsertTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
		GetTask(ctx context.Context, id, userID int64, exec ...core.DBExecutor) (Task, error)
		// QueryTasks returns matching tasks by deadline, tasks without one last.
		QueryTasks(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Task, error)
		UpdateTaskStatus(ctx context.Context, t Task, exec ...core.DBExecutor) error
		// TaskStats counts tasks per status. userID 0 counts every user's tasks.
		TaskStats(ctx context.Context, userID int64, exec ...core.DBExecutor) (Stats, error)
		// MarkOverdue flips open tasks with a deadline before `before` to overdue and returns how many changed.
		MarkOverdue(ctx context.Context, before time.Time, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a new task for userID. nt is expected to be validated.
func (svc *Service) Create(ctx context.Context, userID int64, nt NewTask) (Task, error) {
	ts := NowFunc().UTC()
	t := Task{
		UserID:      userID,
		Title:       nt.Title,
		Description: nt.Description,
		Subject:     nt.Subject,
		Category:    nt.Category,
		Priority:    Priority(nt.Priority),
		Status:      StatusNotStarted,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if nt.Deadline != "" {
		date, err := core.ParseDate(nt.Deadline)
		if err != nil {
			return Task{}, core.NewValidationError(
				errors.Wrap(err, "parsing deadline"),
				core.FieldError{Field: "deadline", Error: "deadline must be a valid date (" + core.DateLayouts + ")"},
			)
		}
		// due by the end of the day
		deadline := now.With(date).EndOfDay()
		t.Deadline = &deadline
		if t.IsOverdue(ts) {
			t.Status = StatusOverdue
		}
	}

	t, err := svc.repo.InsertTask(ctx, t)
	if err != nil {
		return Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Task, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, core.NewValidationError(
			errors.New("invalid task status"),
			core.FieldError{Field: "status", Error: "invalid task status"},
		)
	}
	return svc.repo.QueryTasks(ctx, filter)
}

// UpdateStatus sets the status of the user's task.
func (svc *Service) UpdateStatus(ctx context.Context, id, userID int64, status Status) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id, userID)
	if err != nil {
		return Task{}, err
	}
	t.Status = status
	t.UpdatedAt = NowFunc().UTC()
	if err = svc.repo.UpdateTaskStatus(ctx, t); err != nil {
		return Task{}, errors.Wrap(err, "updating task status")
	}
	return t, nil
}

// Stats counts the user's tasks per status. userID 0 counts every user's tasks.
func (svc *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	return svc.repo.TaskStats(ctx, userID)
}

func (svc *Service) MarkOverdue(ctx context.Context, at time.Time) (int, error) {
	n, err := svc.repo.MarkOverdue(ctx, at.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "marking overdue tasks")
	}
	return n, nil
}
