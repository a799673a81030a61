package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/studash/dashboard/core"
	"github.com/studash/dashboard/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) InsertTask(_ context.Context, t task.Task, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	t.ID = repo.db.pk
	repo.db.table[t.ID] = t
	return t, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id, userID int64, _ ...core.DBExecutor) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok && t.UserID == userID {
		return t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter task.QueryFilter, _ ...core.DBExecutor) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.table {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tasks = append(tasks, t)
	}
	// by deadline, tasks without one last
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Deadline == nil && b.Deadline == nil:
			return a.ID < b.ID
		case a.Deadline == nil:
			return false
		case b.Deadline == nil:
			return true
		case a.Deadline.Equal(*b.Deadline):
			return a.ID < b.ID
		}
		return a.Deadline.Before(*b.Deadline)
	})
	return tasks, nil
}

func (repo *taskRepository) UpdateTaskStatus(_ context.Context, t task.Task, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok || orig.UserID != t.UserID {
		return task.ErrNotFound
	}
	orig.Status = t.Status
	orig.UpdatedAt = t.UpdatedAt
	repo.db.table[t.ID] = orig
	return nil
}

func (repo *taskRepository) TaskStats(_ context.Context, userID int64, _ ...core.DBExecutor) (task.Stats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stats task.Stats
	for _, t := range repo.db.table {
		if userID != 0 && t.UserID != userID {
			continue
		}
		stats.Total++
		switch t.Status {
		case task.StatusNotStarted:
			stats.NotStarted++
		case task.StatusInProgress:
			stats.InProgress++
		case task.StatusCompleted:
			stats.Completed++
		case task.StatusOverdue:
			stats.Overdue++
		case task.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (repo *taskRepository) MarkOverdue(_ context.Context, before time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for id, t := range repo.db.table {
		if t.Status.IsOpen() && t.Deadline != nil && t.Deadline.Before(before) {
			t.Status = task.StatusOverdue
			t.UpdatedAt = before
			repo.db.table[id] = t
			n++
		}
	}
	return n, nil
}
