package task

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studash/dashboard/core"
)

type (
	Priority string
	Status   string
)

// Priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Statuses
const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
	StatusCancelled  Status = "cancelled"
)

var (
	AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	AllStatuses   = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusOverdue, StatusCancelled}

	// OpenStatuses are the statuses a task can become overdue from.
	OpenStatuses = []Status{StatusNotStarted, StatusInProgress}
)

func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func (s Status) IsOpen() bool {
	return s == StatusNotStarted || s == StatusInProgress
}

type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Subject     string     `json:"subject"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"` // UTC
	CreatedAt   time.Time  `json:"created_at"`         // UTC
	UpdatedAt   time.Time  `json:"updated_at"`         // UTC
}

// IsOverdue reports whether the task is still open past its deadline.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status.IsOpen() && t.Deadline != nil && t.Deadline.Before(now)
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Subject     string `json:"subject" validate:"max=100"`
	Category    string `json:"category" validate:"max=50"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Deadline    string `json:"deadline" validate:"omitempty,datestr"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Category = core.CleanString(nt.Category)
	nt.Priority = core.CleanString(nt.Priority, true /* lower */)
	nt.Deadline = core.CleanString(nt.Deadline)
	return validate.Struct(nt)
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=not-started in-progress completed overdue cancelled"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

type QueryFilter struct {
	UserID int64
	Status Status `query:"status"`
}

// Stats holds task counts per status.
type Stats struct {
	Total      int `json:"total"`
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	Cancelled  int `json:"cancelled"`
}
